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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchRequiresFrameClass(t *testing.T) {
	untaggedRule := mustOp(t, [CVlanTagOpFieldCount]uint32{15, 4096, 0, 15, 4096, 0, 0, 0, 0, 15, 0, 0, 15, 0, 0})
	singleRule := mustOp(t, transparentSingleTagFields())
	doubleRule := mustOp(t, [CVlanTagOpFieldCount]uint32{8, 4096, 0, 8, 4096, 0, 0, 0, 0, 15, 0, 0, 15, 0, 0})

	var raw TagStack
	single := TagStack{{Vid: 100, Pcp: 3, Tpid: CDefaultTpid}}
	double := TagStack{{Vid: 10, Tpid: CDefaultTpid}, {Vid: 20, Tpid: CDefaultTpid}}

	assert.True(t, untaggedRule.MatchesFilter(raw, CDefaultTpid))
	assert.False(t, untaggedRule.MatchesFilter(single, CDefaultTpid))
	assert.False(t, untaggedRule.MatchesFilter(double, CDefaultTpid))

	assert.False(t, singleRule.MatchesFilter(raw, CDefaultTpid))
	assert.True(t, singleRule.MatchesFilter(single, CDefaultTpid))
	assert.False(t, singleRule.MatchesFilter(double, CDefaultTpid))

	assert.False(t, doubleRule.MatchesFilter(raw, CDefaultTpid))
	assert.False(t, doubleRule.MatchesFilter(single, CDefaultTpid))
	assert.True(t, doubleRule.MatchesFilter(double, CDefaultTpid))
}

func TestMatchPriorityExactAndWildcard(t *testing.T) {
	exactPrio := mustOp(t, [CVlanTagOpFieldCount]uint32{15, 4096, 0, 3, 4096, 0, 0, 0, 0, 15, 0, 0, 15, 0, 0})
	assert.True(t, exactPrio.MatchesFilter(TagStack{{Vid: 100, Pcp: 3, Tpid: CDefaultTpid}}, CDefaultTpid))
	assert.False(t, exactPrio.MatchesFilter(TagStack{{Vid: 100, Pcp: 4, Tpid: CDefaultTpid}}, CDefaultTpid))

	wildcardPrio := mustOp(t, [CVlanTagOpFieldCount]uint32{15, 4096, 0, 8, 4096, 0, 0, 0, 0, 15, 0, 0, 15, 0, 0})
	for pcp := uint8(0); pcp <= 7; pcp++ {
		assert.True(t, wildcardPrio.MatchesFilter(TagStack{{Vid: 100, Pcp: pcp, Tpid: CDefaultTpid}}, CDefaultTpid))
	}
}

func TestMatchVidExactAndWildcard(t *testing.T) {
	exactVid := mustOp(t, [CVlanTagOpFieldCount]uint32{15, 4096, 0, 8, 100, 0, 0, 0, 0, 15, 0, 0, 15, 0, 0})
	assert.True(t, exactVid.MatchesFilter(TagStack{{Vid: 100, Tpid: CDefaultTpid}}, CDefaultTpid))
	assert.False(t, exactVid.MatchesFilter(TagStack{{Vid: 101, Tpid: CDefaultTpid}}, CDefaultTpid))

	wildcardVid := mustOp(t, transparentSingleTagFields())
	assert.True(t, wildcardVid.MatchesFilter(TagStack{{Vid: 1, Tpid: CDefaultTpid}}, CDefaultTpid))
	assert.True(t, wildcardVid.MatchesFilter(TagStack{{Vid: 4094, Tpid: CDefaultTpid}}, CDefaultTpid))
}

func TestMatchTpidDeiEnumeration(t *testing.T) {
	const inputTpid uint16 = 0x88a8
	mkRule := func(tpidCode uint32) *VlanTagOp {
		return mustOp(t, [CVlanTagOpFieldCount]uint32{15, 4096, 0, 8, 4096, tpidCode, 0, 0, 0, 15, 0, 0, 15, 0, 0})
	}
	tag8100 := TagStack{{Vid: 100, Tpid: 0x8100}}
	tagInput := TagStack{{Vid: 100, Tpid: 0x88a8}}
	tagInputDei := TagStack{{Vid: 100, Tpid: 0x88a8, Dei: 1}}

	// 0: do not filter
	assert.True(t, mkRule(0).MatchesFilter(tag8100, inputTpid))
	assert.True(t, mkRule(0).MatchesFilter(tagInputDei, inputTpid))

	// 4: TPID must be 0x8100
	assert.True(t, mkRule(4).MatchesFilter(tag8100, inputTpid))
	assert.False(t, mkRule(4).MatchesFilter(tagInput, inputTpid))

	// 5: TPID must equal the input TPID
	assert.True(t, mkRule(5).MatchesFilter(tagInput, inputTpid))
	assert.False(t, mkRule(5).MatchesFilter(tag8100, inputTpid))

	// 6: input TPID and DEI 0
	assert.True(t, mkRule(6).MatchesFilter(tagInput, inputTpid))
	assert.False(t, mkRule(6).MatchesFilter(tagInputDei, inputTpid))

	// 7: input TPID and DEI 1
	assert.True(t, mkRule(7).MatchesFilter(tagInputDei, inputTpid))
	assert.False(t, mkRule(7).MatchesFilter(tagInput, inputTpid))
}

func TestMatchDoubleTagChecksBothPositions(t *testing.T) {
	rule := mustOp(t, [CVlanTagOpFieldCount]uint32{0, 10, 0, 8, 20, 0, 0, 0, 0, 15, 0, 0, 15, 0, 0})

	matching := TagStack{{Vid: 10, Pcp: 0, Tpid: CDefaultTpid}, {Vid: 20, Pcp: 5, Tpid: CDefaultTpid}}
	assert.True(t, rule.MatchesFilter(matching, CDefaultTpid))

	wrongOuterVid := TagStack{{Vid: 11, Pcp: 0, Tpid: CDefaultTpid}, {Vid: 20, Tpid: CDefaultTpid}}
	assert.False(t, rule.MatchesFilter(wrongOuterVid, CDefaultTpid))

	wrongOuterPcp := TagStack{{Vid: 10, Pcp: 1, Tpid: CDefaultTpid}, {Vid: 20, Tpid: CDefaultTpid}}
	assert.False(t, rule.MatchesFilter(wrongOuterPcp, CDefaultTpid))

	wrongInnerVid := TagStack{{Vid: 10, Pcp: 0, Tpid: CDefaultTpid}, {Vid: 21, Tpid: CDefaultTpid}}
	assert.False(t, rule.MatchesFilter(wrongInnerVid, CDefaultTpid))
}
