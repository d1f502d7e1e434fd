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

// Verdict is the outcome class of processing one frame against the table.
type Verdict int

// possible frame processing outcomes; a frame without any matching rule is
// dropped just like one hitting a discard rule, but the two cases stay
// distinguishable internally
const (
	VerdictForwarded Verdict = iota
	VerdictDroppedByRule
	VerdictNoMatch
)

func (v Verdict) String() string {
	switch v {
	case VerdictForwarded:
		return "forwarded"
	case VerdictDroppedByRule:
		return "dropped-by-rule"
	case VerdictNoMatch:
		return "dropped-no-match"
	default:
		return "unknown"
	}
}

// Dropped reports whether the frame did not survive processing.
func (v Verdict) Dropped() bool {
	return v != VerdictForwarded
}

// TreatmentResult carries the outcome of applying a rule (or the whole table)
// to one frame. Stack is only meaningful for a forwarded frame.
type TreatmentResult struct {
	Verdict Verdict
	Stack   TagStack
}

// Apply executes the treatment half of the rule on a matched frame's tag
// stack. aOutputTpid is the TPID context the output-side TPID enumerations
// resolve against (0x8100 unless overridden).
func (op *VlanTagOp) Apply(aStack TagStack, aOutputTpid uint16) TreatmentResult {
	if op.IsDropTreatment() {
		return TreatmentResult{Verdict: VerdictDroppedByRule}
	}
	var newTags TagStack
	if op.TreatOuterPrio != cDoNotAddPrio {
		newTags = append(newTags, op.buildTreatmentTag(op.TreatOuterPrio, op.TreatOuterVid, op.TreatOuterTpid, aStack, aOutputTpid))
	}
	if op.TreatInnerPrio != cDoNotAddPrio {
		newTags = append(newTags, op.buildTreatmentTag(op.TreatInnerPrio, op.TreatInnerVid, op.TreatInnerTpid, aStack, aOutputTpid))
	}
	if len(newTags) == 0 {
		// pass-through: forward the received stack with the leading
		// tags-to-remove count stripped
		strip := int(op.TagsToRemove)
		if strip > len(aStack) {
			strip = len(aStack)
		}
		outStack := make(TagStack, len(aStack)-strip)
		copy(outStack, aStack[strip:])
		return TreatmentResult{Verdict: VerdictForwarded, Stack: outStack}
	}
	// synthesized tags replace the received stack entirely, tags-to-remove
	// does not additionally apply
	return TreatmentResult{Verdict: VerdictForwarded, Stack: newTags}
}

// buildTreatmentTag synthesizes one output tag from a treatment field triple,
// resolving the copy/literal encodings against the received stack.
func (op *VlanTagOp) buildTreatmentTag(aTreatPrio uint32, aTreatVid uint32, aTreatTpid uint32, aStack TagStack, aOutputTpid uint16) VlanTag {
	innerTag, hasInner := aStack.InnerTag()
	outerTag, hasOuter := aStack.OuterTag()

	var pcp uint8
	switch {
	case aTreatPrio <= 7:
		pcp = uint8(aTreatPrio)
	case aTreatPrio == cCopyPrioFromInner:
		if hasInner {
			pcp = innerTag.Pcp
		}
	case aTreatPrio == cCopyPrioFromOuter:
		if hasOuter {
			pcp = outerTag.Pcp
		}
	default:
		// cPrioFromDscp and any reserved encoding resolve to priority 0
		pcp = 0
	}

	var vid uint16
	switch {
	case aTreatVid <= uint32(CMaxVid):
		vid = uint16(aTreatVid)
	case aTreatVid == cCopyVidFromInner:
		if hasInner {
			vid = innerTag.Vid
		}
	case aTreatVid == cCopyVidFromOuter:
		if hasOuter {
			vid = outerTag.Vid
		}
	}

	// copy sources default to 0x8100/DEI 0 when the referenced tag is absent
	innerTpid, innerDei := CDefaultTpid, uint8(0)
	if hasInner {
		innerTpid, innerDei = innerTag.Tpid, innerTag.Dei
	}
	outerTpid, outerDei := CDefaultTpid, uint8(0)
	if hasOuter {
		outerTpid, outerDei = outerTag.Tpid, outerTag.Dei
	}
	var tpid uint16
	var dei uint8
	switch aTreatTpid {
	case cTreatTpidDeiCopyInner:
		tpid, dei = innerTpid, innerDei
	case cTreatTpidDeiCopyOuter:
		tpid, dei = outerTpid, outerDei
	case cTreatTpidOutputCopyDeiIn:
		tpid, dei = aOutputTpid, innerDei
	case cTreatTpidOutputCopyDeiOut:
		tpid, dei = aOutputTpid, outerDei
	case cTreatTpidFixed8100DeiZero:
		tpid, dei = CDefaultTpid, 0
	case cTreatTpidOutputDeiZero:
		tpid, dei = aOutputTpid, 0
	case cTreatTpidOutputDeiOne:
		tpid, dei = aOutputTpid, 1
	default:
		// undefined encoding 5 falls back to the output TPID with DEI 0
		tpid, dei = aOutputTpid, 0
	}

	return VlanTag{Vid: vid, Pcp: pcp, Tpid: tpid, Dei: dei}
}
