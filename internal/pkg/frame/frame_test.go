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

package frame

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencord/evtocd-sim/internal/pkg/evtocd"
)

const (
	cEthHeader = "ffffffffffff" + "000102030405"
	cIPv4      = "0800" + "450000140000000040000000" + "7f0000017f000001"
)

func TestDecodeUntaggedFrame(t *testing.T) {
	stack, err := DecodeTagStack(context.Background(), cEthHeader+cIPv4)
	require.NoError(t, err)
	assert.Empty(t, stack)
	assert.Equal(t, evtocd.FrameUntagged, stack.Class())
}

func TestDecodeSingleTaggedFrame(t *testing.T) {
	// 802.1Q tag: pcp 3, dei 0, vid 100 -> 0x6064
	stack, err := DecodeTagStack(context.Background(), cEthHeader+"8100"+"6064"+cIPv4)
	require.NoError(t, err)
	require.Len(t, stack, 1)
	assert.Equal(t, evtocd.VlanTag{Vid: 100, Pcp: 3, Tpid: 0x8100, Dei: 0}, stack[0])
	assert.Equal(t, evtocd.FrameSingleTagged, stack.Class())
}

func TestDecodeQinQFrame(t *testing.T) {
	// outer S-tag 0x88a8: pcp 1, dei 1, vid 10 -> 0x300a
	// inner C-tag 0x8100: pcp 0, dei 0, vid 20 -> 0x0014
	stack, err := DecodeTagStack(context.Background(), cEthHeader+"88a8"+"300a"+"8100"+"0014"+cIPv4)
	require.NoError(t, err)
	require.Len(t, stack, 2)
	assert.Equal(t, evtocd.VlanTag{Vid: 10, Pcp: 1, Tpid: 0x88a8, Dei: 1}, stack[0])
	assert.Equal(t, evtocd.VlanTag{Vid: 20, Pcp: 0, Tpid: 0x8100, Dei: 0}, stack[1])
	assert.Equal(t, evtocd.FrameDoubleTagged, stack.Class())
}

func TestDecodeToleratesWhitespaceInHex(t *testing.T) {
	stack, err := DecodeTagStack(context.Background(),
		"ffffffffffff 000102030405 8100 6064 "+cIPv4)
	require.NoError(t, err)
	require.Len(t, stack, 1)
	assert.Equal(t, uint16(100), stack[0].Vid)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeTagStack(context.Background(), "zz00")
	assert.Error(t, err)

	_, err = DecodeTagStack(context.Background(), "ff")
	assert.Error(t, err, "truncated frame has no ethernet layer")
}
