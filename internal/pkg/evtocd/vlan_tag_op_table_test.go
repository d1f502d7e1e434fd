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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsFromLines(aLines ...string) [][]string {
	var rows [][]string
	for _, line := range aLines {
		rows = append(rows, strings.Fields(line))
	}
	return rows
}

func TestParseTableSkipsMalformedRows(t *testing.T) {
	ctx := context.Background()
	table, err := ParseVlanTagOpTable(ctx, rowsFromLines(
		"",
		"this is just some noise in the stream",
		"15 4096 0 8 100 0 0 0",                       // wrong token count
		"15 4096 0 8 100 0 0 0 0 15 4096 0 8 4096 x",  // non-numeric token
		"15 4096 0 8 100 0 0 0 0 15 4096 0 8 4096 0",  // valid
		"-1 4096 0 8 100 0 0 0 0 15 4096 0 8 4096 0",  // negative token
	))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestParseTableDiscardsDeleteMarker(t *testing.T) {
	ctx := context.Background()
	table, err := ParseVlanTagOpTable(ctx, rowsFromLines(
		"0 0 0 0 0 0 0 0 3 15 8191 7 15 8191 7",
		"15 4096 0 8 100 0 0 0 0 15 4096 0 8 4096 0",
		// any row sharing the treatment half tuple is a cleared entry too
		"15 4096 0 8 200 5 0 1 3 15 8191 7 15 8191 7",
	))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, uint32(100), table.Ops()[0].FilterInnerVid)
}

func TestParseTableDomainErrorIsFatal(t *testing.T) {
	ctx := context.Background()
	_, err := ParseVlanTagOpTable(ctx, rowsFromLines(
		"15 4096 0 8 100 0 0 0 0 15 4096 0 8 4096 0",
		"15 4095 0 8 100 0 0 0 0 15 4096 0 8 4096 0", // 4095 out of filter VID domain
	))
	require.Error(t, err, "no partial table on domain violation")
	assert.Contains(t, err.Error(), "filter-outer-vid")
}

func TestTablePrecedenceOrdering(t *testing.T) {
	ctx := context.Background()
	defaultRule := "15 4096 0 14 4096 0 0 0 0 15 4096 0 15 4096 0"
	specificHigh := "15 4096 0 8 200 0 0 0 0 15 4096 0 8 4096 0"
	specificLow := "15 4096 0 8 100 0 0 0 0 15 4096 0 8 4096 0"
	table, err := ParseVlanTagOpTable(ctx, rowsFromLines(defaultRule, specificHigh, specificLow))
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	ops := table.Ops()
	assert.Equal(t, uint32(100), ops[0].FilterInnerVid, "lower filter tuple first")
	assert.Equal(t, uint32(200), ops[1].FilterInnerVid)
	assert.True(t, ops[2].IsDefaultRule(), "default rule sorts last")
}

func TestTableSortIsStableOnEqualFilters(t *testing.T) {
	ctx := context.Background()
	// identical filter halves, distinguishable by treatment VID only
	first := "15 4096 0 8 100 0 0 0 1 15 4096 0 5 200 6"
	second := "15 4096 0 8 100 0 0 0 1 15 4096 0 5 300 6"
	table, err := ParseVlanTagOpTable(ctx, rowsFromLines(first, second))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, uint32(200), table.Ops()[0].TreatInnerVid, "equal filter tuples keep input order")
	assert.Equal(t, uint32(300), table.Ops()[1].TreatInnerVid)
}

func TestTableSortIdempotent(t *testing.T) {
	ctx := context.Background()
	table, err := ParseVlanTagOpTable(ctx, rowsFromLines(
		"15 4096 0 14 4096 0 0 0 0 15 4096 0 15 4096 0",
		"15 4096 0 8 200 0 0 0 1 15 4096 0 5 300 6",
		"15 4096 0 8 100 0 0 0 1 15 4096 0 5 200 6",
		"15 4096 0 8 100 0 0 0 1 15 4096 0 5 400 6",
	))
	require.NoError(t, err)

	resorted := NewVlanTagOpTable(ctx, table.Ops())
	assert.Equal(t, table.Ops(), resorted.Ops())
}

func TestEmptyTableDropsEveryFrame(t *testing.T) {
	ctx := context.Background()
	table, err := ParseVlanTagOpTable(ctx, rowsFromLines(
		"noise only",
		"0 0 0 0 0 0 0 0 3 15 8191 7 15 8191 7",
	))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())

	frames := []TagStack{
		nil,
		{{Vid: 100, Pcp: 3, Tpid: CDefaultTpid}},
		{{Vid: 10, Tpid: CDefaultTpid}, {Vid: 20, Tpid: CDefaultTpid}},
	}
	for _, stack := range frames {
		result := table.Process(ctx, stack, CDefaultTpid, CDefaultTpid)
		assert.Equal(t, VerdictNoMatch, result.Verdict)
		assert.True(t, result.Verdict.Dropped())
	}
}

func TestProcessFirstMatchWins(t *testing.T) {
	ctx := context.Background()
	table, err := ParseVlanTagOpTable(ctx, rowsFromLines(
		// specific translation for vid 100
		"15 4096 0 8 100 0 0 0 1 15 4096 0 5 500 6",
		// single-tag default: transparent
		"15 4096 0 14 4096 0 0 0 0 15 4096 0 15 4096 0",
	))
	require.NoError(t, err)

	translated := table.Process(ctx, TagStack{{Vid: 100, Pcp: 3, Tpid: CDefaultTpid}}, CDefaultTpid, CDefaultTpid)
	require.Equal(t, VerdictForwarded, translated.Verdict)
	require.Len(t, translated.Stack, 1)
	assert.Equal(t, uint16(500), translated.Stack[0].Vid)

	// any other single tagged frame falls through to the default rule
	passed := table.Process(ctx, TagStack{{Vid: 42, Pcp: 1, Tpid: CDefaultTpid}}, CDefaultTpid, CDefaultTpid)
	require.Equal(t, VerdictForwarded, passed.Verdict)
	assert.Equal(t, TagStack{{Vid: 42, Pcp: 1, Tpid: CDefaultTpid}}, passed.Stack)
}
