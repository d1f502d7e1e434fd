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
	"fmt"

	"github.com/opencord/voltha-lib-go/v7/pkg/log"
)

// CVlanTagOpFieldCount is the number of attribute fields of one table row
const CVlanTagOpFieldCount = 15

const (
	// basic values used within the VlanTaggingOperationTable in respect to their bitfields
	cPrioDoNotFilter   uint32 = 8    // filter priority: match any priority
	cPrioDefaultFilter uint32 = 14   // filter priority: default rule marker
	cPrioIgnoreTag     uint32 = 15   // filter priority: no tag expected at this position
	cDoNotFilterVid    uint32 = 4096 // filter VID: match any VID
	cDoNotAddPrio      uint32 = 15   // treatment priority: do not add a tag at this position
	cCopyPrioFromInner uint32 = 8    // treatment priority: copy from received inner tag
	cCopyPrioFromOuter uint32 = 9    // treatment priority: copy from received outer tag
	cPrioFromDscp      uint32 = 10   // treatment priority: derive from DSCP (no mapping table modeled, resolves to 0)
	cCopyVidFromInner  uint32 = 4096 // treatment VID: copy from received inner tag
	cCopyVidFromOuter  uint32 = 4097 // treatment VID: copy from received outer tag
	cRemoveAllAndDrop  uint32 = 3    // tags-to-remove value marking a discard rule
)

const (
	// filter TPID/DEI enumeration
	cFilterTpidDontCare     uint32 = 0 // do not filter on TPID or DEI
	cFilterTpid8100         uint32 = 4 // TPID must be 0x8100
	cFilterTpidInput        uint32 = 5 // TPID must equal the input TPID
	cFilterTpidInputDeiZero uint32 = 6 // TPID equals input TPID and DEI is 0
	cFilterTpidInputDeiOne  uint32 = 7 // TPID equals input TPID and DEI is 1
)

const (
	// treatment TPID/DEI enumeration
	cTreatTpidDeiCopyInner     uint32 = 0 // copy TPID and DEI from the inner received tag
	cTreatTpidDeiCopyOuter     uint32 = 1 // copy TPID and DEI from the outer received tag
	cTreatTpidOutputCopyDeiIn  uint32 = 2 // output TPID, DEI from inner received tag
	cTreatTpidOutputCopyDeiOut uint32 = 3 // output TPID, DEI from outer received tag
	cTreatTpidFixed8100DeiZero uint32 = 4 // fixed 0x8100, DEI 0
	cTreatTpidOutputDeiZero    uint32 = 6 // output TPID, DEI 0
	cTreatTpidOutputDeiOne     uint32 = 7 // output TPID, DEI 1
)

// VlanTagOp is one validated row of the Extended VLAN tagging operation table:
// eight filter fields selecting received frames and seven treatment fields
// describing the resulting tag stack. Immutable after construction, the
// declaration order of the fields matches the G.988 bit-stream order.
type VlanTagOp struct {
	FilterOuterPrio uint32
	FilterOuterVid  uint32
	FilterOuterTpid uint32
	FilterInnerPrio uint32
	FilterInnerVid  uint32
	FilterInnerTpid uint32
	FilterExtCrit   uint32
	FilterEthType   uint32
	TagsToRemove    uint32
	TreatOuterPrio  uint32
	TreatOuterVid   uint32
	TreatOuterTpid  uint32
	TreatInnerPrio  uint32
	TreatInnerVid   uint32
	TreatInnerTpid  uint32
}

// opFieldSpec binds one rule field to its domain predicate. The table below
// is walked in declaration order at construction, so validation failures
// always identify the first offending field.
type opFieldSpec struct {
	name  string
	get   func(*VlanTagOp) uint32
	valid func(uint32) bool
}

func validFilterPrio(v uint32) bool { return v <= 8 || v == cPrioDefaultFilter || v == cPrioIgnoreTag }
func validTreatPrio(v uint32) bool { return v <= 10 || v == cDoNotAddPrio }
func validFilterVid(v uint32) bool { return v <= uint32(CMaxVid) || v == cDoNotFilterVid }
func validTreatVid(v uint32) bool {
	return v <= uint32(CMaxVid) || v == cCopyVidFromInner || v == cCopyVidFromOuter
}
func validFilterTpid(v uint32) bool { return v == 0 || (v >= 4 && v <= 7) }
func validTreatTpid(v uint32) bool { return v <= 7 }
func validExtCrit(v uint32) bool { return v <= 2 }
func validEthType(v uint32) bool { return v <= 5 }
func validTagsToRemove(v uint32) bool { return v <= 3 }

var opFieldTable = []opFieldSpec{
	{"filter-outer-prio", func(op *VlanTagOp) uint32 { return op.FilterOuterPrio }, validFilterPrio},
	{"filter-outer-vid", func(op *VlanTagOp) uint32 { return op.FilterOuterVid }, validFilterVid},
	{"filter-outer-tpid", func(op *VlanTagOp) uint32 { return op.FilterOuterTpid }, validFilterTpid},
	{"filter-inner-prio", func(op *VlanTagOp) uint32 { return op.FilterInnerPrio }, validFilterPrio},
	{"filter-inner-vid", func(op *VlanTagOp) uint32 { return op.FilterInnerVid }, validFilterVid},
	{"filter-inner-tpid", func(op *VlanTagOp) uint32 { return op.FilterInnerTpid }, validFilterTpid},
	{"filter-ext-criteria", func(op *VlanTagOp) uint32 { return op.FilterExtCrit }, validExtCrit},
	{"filter-ethertype", func(op *VlanTagOp) uint32 { return op.FilterEthType }, validEthType},
	{"tags-to-remove", func(op *VlanTagOp) uint32 { return op.TagsToRemove }, validTagsToRemove},
	{"treatment-outer-prio", func(op *VlanTagOp) uint32 { return op.TreatOuterPrio }, validTreatPrio},
	{"treatment-outer-vid", func(op *VlanTagOp) uint32 { return op.TreatOuterVid }, validTreatVid},
	{"treatment-outer-tpid", func(op *VlanTagOp) uint32 { return op.TreatOuterTpid }, validTreatTpid},
	{"treatment-inner-prio", func(op *VlanTagOp) uint32 { return op.TreatInnerPrio }, validTreatPrio},
	{"treatment-inner-vid", func(op *VlanTagOp) uint32 { return op.TreatInnerVid }, validTreatVid},
	{"treatment-inner-tpid", func(op *VlanTagOp) uint32 { return op.TreatInnerTpid }, validTreatTpid},
}

// NewVlanTagOp constructs a rule from its 15 raw field values in bit-stream
// order, rejecting any field outside its G.988 domain. The returned error
// names the offending field.
func NewVlanTagOp(ctx context.Context, aFields [CVlanTagOpFieldCount]uint32) (*VlanTagOp, error) {
	op := &VlanTagOp{
		FilterOuterPrio: aFields[0],
		FilterOuterVid:  aFields[1],
		FilterOuterTpid: aFields[2],
		FilterInnerPrio: aFields[3],
		FilterInnerVid:  aFields[4],
		FilterInnerTpid: aFields[5],
		FilterExtCrit:   aFields[6],
		FilterEthType:   aFields[7],
		TagsToRemove:    aFields[8],
		TreatOuterPrio:  aFields[9],
		TreatOuterVid:   aFields[10],
		TreatOuterTpid:  aFields[11],
		TreatInnerPrio:  aFields[12],
		TreatInnerVid:   aFields[13],
		TreatInnerTpid:  aFields[14],
	}
	for _, spec := range opFieldTable {
		if val := spec.get(op); !spec.valid(val) {
			logger.Debugw(ctx, "vlan tagging operation field validation failed", log.Fields{
				"field": spec.name, "value": val})
			return nil, fmt.Errorf("invalid value %d for field %s", val, spec.name)
		}
	}
	return op, nil
}

// IsUntaggedRule reports whether the filter half expects a frame without any tag.
func (op *VlanTagOp) IsUntaggedRule() bool {
	return op.FilterOuterPrio == cPrioIgnoreTag && op.FilterInnerPrio == cPrioIgnoreTag
}

// IsSingleTagRule reports whether the filter half expects exactly one tag.
func (op *VlanTagOp) IsSingleTagRule() bool {
	return op.FilterOuterPrio == cPrioIgnoreTag && op.FilterInnerPrio != cPrioIgnoreTag
}

// IsDoubleTagRule reports whether the filter half expects an outer tag.
func (op *VlanTagOp) IsDoubleTagRule() bool {
	return op.FilterOuterPrio != cPrioIgnoreTag
}

// IsDefaultRule identifies catch-all rules: wildcard VIDs, no extended
// criteria and only default/ignore priority markers on both tag positions.
// Default rules are evaluated after all specific rules.
func (op *VlanTagOp) IsDefaultRule() bool {
	return (op.FilterOuterPrio == cPrioDefaultFilter || op.FilterOuterPrio == cPrioIgnoreTag) &&
		op.FilterOuterVid == cDoNotFilterVid &&
		(op.FilterInnerPrio == cPrioDefaultFilter || op.FilterInnerPrio == cPrioIgnoreTag) &&
		op.FilterInnerVid == cDoNotFilterVid &&
		op.FilterExtCrit == 0
}

// IsDropTreatment reports whether matching frames are discarded. Keyed on the
// tags-to-remove marker alone; the remaining treatment fields stay
// range-validated but carry no meaning for such rules.
func (op *VlanTagOp) IsDropTreatment() bool {
	return op.TagsToRemove == cRemoveAllAndDrop
}

// IsTransparentTreatment identifies rules that forward the received tag stack
// unchanged: nothing stripped, no tag added at either position.
func (op *VlanTagOp) IsTransparentTreatment() bool {
	return op.TagsToRemove == 0 &&
		op.TreatOuterPrio == cDoNotAddPrio &&
		op.TreatInnerPrio == cDoNotAddPrio
}

// filterKey returns the eight filter fields in bit-stream order as the
// precedence sort key. Lossy on purpose: treatment fields and reserved
// padding never participate in rule ordering.
func (op *VlanTagOp) filterKey() [8]uint32 {
	return [8]uint32{
		op.FilterOuterPrio, op.FilterOuterVid, op.FilterOuterTpid,
		op.FilterInnerPrio, op.FilterInnerVid, op.FilterInnerTpid,
		op.FilterExtCrit, op.FilterEthType,
	}
}

func (op *VlanTagOp) String() string {
	return fmt.Sprintf("filter(%d %d %d %d %d %d %d %d) treat(%d %d %d %d %d %d %d)",
		op.FilterOuterPrio, op.FilterOuterVid, op.FilterOuterTpid,
		op.FilterInnerPrio, op.FilterInnerVid, op.FilterInnerTpid,
		op.FilterExtCrit, op.FilterEthType,
		op.TagsToRemove,
		op.TreatOuterPrio, op.TreatOuterVid, op.TreatOuterTpid,
		op.TreatInnerPrio, op.TreatInnerVid, op.TreatInnerTpid)
}
