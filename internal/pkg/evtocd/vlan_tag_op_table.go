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
	"sort"
	"strconv"

	"github.com/opencord/voltha-lib-go/v7/pkg/log"
)

// cDeleteMarkerTreatment is the treatment half an OLT writes to clear a table
// entry (last 8 bytes all 1s). 8191 is no legal VID, so the pattern cannot
// collide with a real rule and is checked before field validation.
var cDeleteMarkerTreatment = [7]uint32{3, 15, 8191, 7, 15, 8191, 7}

// VlanTagOpTable is the ordered, validated rule table of one EVTOCD ME
// instance. Immutable after construction, safe for concurrent readers.
type VlanTagOpTable struct {
	ops []*VlanTagOp
}

// ParseVlanTagOpTable builds a table from tokenized input rows. Rows that do
// not carry exactly 15 decimal tokens are skipped as stream noise; cleared
// (delete-marker) entries are discarded; a field outside its domain aborts
// the whole build.
func ParseVlanTagOpTable(ctx context.Context, aRows [][]string) (*VlanTagOpTable, error) {
	var ops []*VlanTagOp
	for _, row := range aRows {
		vals, ok := parseRowFields(row)
		if !ok {
			logger.Debugw(ctx, "skipping malformed table row", log.Fields{"row": row})
			continue
		}
		if isDeleteMarker(vals) {
			logger.Debugw(ctx, "discarding cleared table entry", log.Fields{"row": row})
			continue
		}
		op, err := NewVlanTagOp(ctx, vals)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return NewVlanTagOpTable(ctx, ops), nil
}

// NewVlanTagOpTable sorts already-validated rules into evaluation precedence:
// every non-default rule before every default rule, non-default rules by
// ascending filter tuple. The sort is stable so equal filter tuples keep
// their input order.
func NewVlanTagOpTable(ctx context.Context, aOps []*VlanTagOp) *VlanTagOpTable {
	ops := make([]*VlanTagOp, len(aOps))
	copy(ops, aOps)
	sort.SliceStable(ops, func(i, j int) bool {
		return opPrecedes(ops[i], ops[j])
	})
	logger.Debugw(ctx, "vlan tagging operation table built", log.Fields{"rules": len(ops)})
	return &VlanTagOpTable{ops: ops}
}

func parseRowFields(aRow []string) ([CVlanTagOpFieldCount]uint32, bool) {
	var vals [CVlanTagOpFieldCount]uint32
	if len(aRow) != CVlanTagOpFieldCount {
		return vals, false
	}
	for i, token := range aRow {
		val, err := strconv.ParseUint(token, 10, 32)
		if err != nil {
			return vals, false
		}
		vals[i] = uint32(val)
	}
	return vals, true
}

func isDeleteMarker(aVals [CVlanTagOpFieldCount]uint32) bool {
	for i, v := range cDeleteMarkerTreatment {
		if aVals[8+i] != v {
			return false
		}
	}
	return true
}

func opPrecedes(a *VlanTagOp, b *VlanTagOp) bool {
	aDefault, bDefault := a.IsDefaultRule(), b.IsDefaultRule()
	if aDefault != bDefault {
		return bDefault
	}
	aKey, bKey := a.filterKey(), b.filterKey()
	for i := range aKey {
		if aKey[i] != bKey[i] {
			return aKey[i] < bKey[i]
		}
	}
	return false
}

// Len returns the number of rules in the table.
func (tbl *VlanTagOpTable) Len() int {
	return len(tbl.ops)
}

// Ops returns the rules in evaluation precedence order. The returned slice is
// a copy, the table itself stays immutable.
func (tbl *VlanTagOpTable) Ops() []*VlanTagOp {
	ops := make([]*VlanTagOp, len(tbl.ops))
	copy(ops, tbl.ops)
	return ops
}

// Process runs one frame's tag stack through the table: the first rule whose
// filter matches decides via its treatment, a frame no rule matches is
// dropped.
func (tbl *VlanTagOpTable) Process(ctx context.Context, aStack TagStack, aInputTpid uint16, aOutputTpid uint16) TreatmentResult {
	for index, op := range tbl.ops {
		if op.MatchesFilter(aStack, aInputTpid) {
			result := op.Apply(aStack, aOutputTpid)
			logger.Debugw(ctx, "frame matched vlan tagging operation", log.Fields{
				"rule-index": index, "verdict": result.Verdict.String(), "in": aStack.String()})
			return result
		}
	}
	logger.Debugw(ctx, "frame matched no vlan tagging operation", log.Fields{"in": aStack.String()})
	return TreatmentResult{Verdict: VerdictNoMatch}
}
