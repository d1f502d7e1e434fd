/*
 * Copyright 2020-2024 Open Networking Foundation (ONF) and the ONF Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package report renders tables, frame verdicts and rankings as text
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	me "github.com/opencord/omci-lib-go/v2/generated"

	"github.com/opencord/evtocd-sim/internal/pkg/evtocd"
	"github.com/opencord/evtocd-sim/internal/pkg/sim"
)

// MeTitle names the simulated managed entity from the official G.988
// definitions, e.g. "ExtendedVlanTaggingOperationConfigurationData (ME class 171)".
func MeTitle() string {
	meInstance, omciErr := me.NewExtendedVlanTaggingOperationConfigurationData()
	if omciErr.GetError() != nil {
		return "Extended VLAN tagging operation configuration data"
	}
	return fmt.Sprintf("%s (ME class %d)", meInstance.GetName(), uint16(meInstance.GetClassID()))
}

// RenderOpTable writes the sorted rule table of one source.
func RenderOpTable(w io.Writer, aSource string, aTable *evtocd.VlanTagOpTable) {
	fmt.Fprintf(w, "%s - source %s: %d rule(s)\n", MeTitle(), aSource, aTable.Len())
	if aTable.Len() == 0 {
		return
	}
	writer := tablewriter.NewWriter(w)
	writer.SetHeader([]string{
		"#", "F-OPRIO", "F-OVID", "F-OTPID", "F-IPRIO", "F-IVID", "F-ITPID", "F-CRIT", "F-ETYPE",
		"REM", "T-OPRIO", "T-OVID", "T-OTPID", "T-IPRIO", "T-IVID", "T-ITPID", "CLASS"})
	for index, op := range aTable.Ops() {
		writer.Append([]string{
			strconv.Itoa(index),
			strconv.FormatUint(uint64(op.FilterOuterPrio), 10),
			strconv.FormatUint(uint64(op.FilterOuterVid), 10),
			strconv.FormatUint(uint64(op.FilterOuterTpid), 10),
			strconv.FormatUint(uint64(op.FilterInnerPrio), 10),
			strconv.FormatUint(uint64(op.FilterInnerVid), 10),
			strconv.FormatUint(uint64(op.FilterInnerTpid), 10),
			strconv.FormatUint(uint64(op.FilterExtCrit), 10),
			strconv.FormatUint(uint64(op.FilterEthType), 10),
			strconv.FormatUint(uint64(op.TagsToRemove), 10),
			strconv.FormatUint(uint64(op.TreatOuterPrio), 10),
			strconv.FormatUint(uint64(op.TreatOuterVid), 10),
			strconv.FormatUint(uint64(op.TreatOuterTpid), 10),
			strconv.FormatUint(uint64(op.TreatInnerPrio), 10),
			strconv.FormatUint(uint64(op.TreatInnerVid), 10),
			strconv.FormatUint(uint64(op.TreatInnerTpid), 10),
			opClass(op),
		})
	}
	writer.Render()
}

func opClass(op *evtocd.VlanTagOp) string {
	class := "double-tag"
	if op.IsUntaggedRule() {
		class = "untagged"
	} else if op.IsSingleTagRule() {
		class = "single-tag"
	}
	switch {
	case op.IsDropTreatment():
		class += " drop"
	case op.IsTransparentTreatment():
		class += " transparent"
	}
	if op.IsDefaultRule() {
		class += " default"
	}
	return class
}

// RenderFrameResults writes one row per processed frame.
func RenderFrameResults(w io.Writer, aResults []sim.FrameResult) {
	if len(aResults) == 0 {
		return
	}
	writer := tablewriter.NewWriter(w)
	writer.SetHeader([]string{"SOURCE", "INPUT", "VERDICT", "OUTPUT"})
	for _, result := range aResults {
		output := ""
		if !result.Result.Verdict.Dropped() {
			output = result.Result.Stack.String()
		}
		writer.Append([]string{
			result.Source,
			result.Input.String(),
			result.Result.Verdict.String(),
			output,
		})
	}
	writer.Render()
}

// RenderRanking writes the service-VLAN estimation of one source.
func RenderRanking(w io.Writer, aSource string, aTargetPcp uint8, aScores []evtocd.ServiceVlanScore) {
	fmt.Fprintf(w, "service VLAN candidates for pbit %d - source %s\n", aTargetPcp, aSource)
	if len(aScores) == 0 {
		fmt.Fprintln(w, "no qualifying single-tag rule found")
		return
	}
	writer := tablewriter.NewWriter(w)
	writer.SetHeader([]string{"VID", "LIKELIHOOD", "CONFIDENCE %", "RULE #"})
	for _, score := range aScores {
		writer.Append([]string{
			strconv.FormatUint(uint64(score.Vid), 10),
			strconv.FormatFloat(score.Likelihood, 'f', 6, 64),
			strconv.FormatFloat(score.Confidence, 'f', 2, 64),
			strconv.Itoa(score.TableIndex),
		})
	}
	writer.Render()
}
