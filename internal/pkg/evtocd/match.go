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

// MatchesFilter evaluates the filter half of the rule against the tag stack
// of a received frame. aInputTpid is the TPID context the input-side TPID
// filter enumerations resolve against (0x8100 unless overridden).
func (op *VlanTagOp) MatchesFilter(aStack TagStack, aInputTpid uint16) bool {
	switch aStack.Class() {
	case FrameUntagged:
		return op.IsUntaggedRule()
	case FrameSingleTagged:
		if !op.IsSingleTagRule() {
			return false
		}
	case FrameDoubleTagged:
		if !op.IsDoubleTagRule() {
			return false
		}
	}
	if outerTag, ok := aStack.OuterTag(); ok {
		if !tagMatchesFilter(outerTag, op.FilterOuterPrio, op.FilterOuterVid, op.FilterOuterTpid, aInputTpid) {
			return false
		}
	}
	if innerTag, ok := aStack.InnerTag(); ok {
		if !tagMatchesFilter(innerTag, op.FilterInnerPrio, op.FilterInnerVid, op.FilterInnerTpid, aInputTpid) {
			return false
		}
	}
	return true
}

// tagMatchesFilter applies one tag position's priority/VID/TPID filter fields
// to a received tag.
func tagMatchesFilter(aTag VlanTag, aFilterPrio uint32, aFilterVid uint32, aFilterTpid uint32, aInputTpid uint16) bool {
	// priorities 0..7 filter exactly, higher encodings (8/14/15) do not filter
	if aFilterPrio <= 7 && aFilterPrio != uint32(aTag.Pcp) {
		return false
	}
	if aFilterVid != cDoNotFilterVid && aFilterVid != uint32(aTag.Vid) {
		return false
	}
	switch aFilterTpid {
	case cFilterTpidDontCare:
		return true
	case cFilterTpid8100:
		return aTag.Tpid == CDefaultTpid
	case cFilterTpidInput:
		return aTag.Tpid == aInputTpid
	case cFilterTpidInputDeiZero:
		return aTag.Tpid == aInputTpid && aTag.Dei == 0
	case cFilterTpidInputDeiOne:
		return aTag.Tpid == aInputTpid && aTag.Dei == 1
	default:
		// remaining TPID codes are excluded at validation already
		return false
	}
}
