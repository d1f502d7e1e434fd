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

package evtocd

import (
	"context"
	"math"
	"sort"

	"github.com/opencord/voltha-lib-go/v7/pkg/log"
)

// ServiceVlanScore is one candidate rule from the service-VLAN estimation:
// the filter VID of a single-tag rule together with its raw likelihood, its
// share of the total likelihood in percent and the rule's position in the
// sorted table.
type ServiceVlanScore struct {
	Vid        uint16
	Likelihood float64
	Confidence float64
	TableIndex int
}

// RankServiceVlans estimates which single-tag rules most likely carry the
// service mapped to the given 802.1p priority. Best-effort diagnostic
// scoring over the rule predicates, not a protocol mechanism: every genuine
// (non-default, non-drop) single-tag rule is weighted multiplicatively and
// the results are normalized against their sum. Output is ordered by
// descending raw likelihood.
func RankServiceVlans(ctx context.Context, aTable *VlanTagOpTable, aTargetPcp uint8) []ServiceVlanScore {
	var scores []ServiceVlanScore
	totalLikelihood := 0.0
	for index, op := range aTable.ops {
		if !op.IsSingleTagRule() || op.IsDefaultRule() || op.IsDropTreatment() {
			continue
		}
		likelihood := scoreSingleTagRule(op, aTargetPcp)
		scores = append(scores, ServiceVlanScore{
			Vid:        uint16(op.FilterInnerVid),
			Likelihood: likelihood,
			TableIndex: index,
		})
		totalLikelihood += likelihood
	}
	if totalLikelihood > 0 {
		for i := range scores {
			scores[i].Confidence = math.Round(scores[i].Likelihood/totalLikelihood*100*100) / 100
		}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Likelihood > scores[j].Likelihood
	})
	logger.Debugw(ctx, "service vlan ranking done", log.Fields{
		"target-pcp": aTargetPcp, "candidates": len(scores), "total-likelihood": totalLikelihood})
	return scores
}

func scoreSingleTagRule(op *VlanTagOp, aTargetPcp uint8) float64 {
	targetPrio := uint32(aTargetPcp)
	likelihood := 0.5

	// filter VID inside the standard tagged range is the strongest hint
	if op.FilterInnerVid >= 1 && op.FilterInnerVid <= uint32(CMaxVid) {
		likelihood *= 0.95
	} else {
		likelihood *= 0.05
	}

	// how much a pbit-wildcard treatment may still be trusted later depends
	// on whether the filter side pinned the target priority
	treatWildcardTrust := 0.40
	switch {
	case op.FilterInnerPrio == targetPrio:
		likelihood *= 0.90
		treatWildcardTrust = 0.70
	case op.FilterInnerPrio == cPrioDoNotFilter:
		if aTargetPcp == 0 {
			likelihood *= 0.50
		} else {
			likelihood *= 0.10
		}
	default:
		likelihood *= 0.05
	}

	switch {
	case op.TreatInnerPrio == targetPrio:
		if aTargetPcp == 0 {
			likelihood *= 0.95
		} else {
			likelihood *= 0.999
		}
	case op.TreatInnerPrio == cCopyPrioFromInner:
		if aTargetPcp == 0 {
			likelihood *= 0.85
		} else {
			likelihood *= treatWildcardTrust
		}
	default:
		likelihood *= 0.0001
	}

	// VID translation is a mild positive signal
	if op.TreatInnerVid != op.FilterInnerVid && op.TreatInnerVid <= uint32(CMaxVid) {
		likelihood *= 0.85
	} else {
		likelihood *= 0.82
	}

	return likelihood
}
