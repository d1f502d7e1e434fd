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
	"fmt"
)

const (
	// CDefaultTpid is the TPID assumed for tags without an explicit one (802.1Q)
	CDefaultTpid uint16 = 0x8100
	// CMaxVid is the highest assignable VLAN ID (4095 is reserved)
	CMaxVid uint16 = 4094
	// CMaxPcp is the highest 802.1p priority code point
	CMaxPcp uint8 = 7
)

// VlanTag is one 802.1Q/802.1ad tag instance as carried in an Ethernet frame.
// Value type, never mutated after creation.
type VlanTag struct {
	Vid  uint16
	Pcp  uint8
	Tpid uint16
	Dei  uint8
}

// NewVlanTag validates and creates a single tag. A zero TPID is replaced by
// the 802.1Q default.
func NewVlanTag(aVid uint16, aPcp uint8, aTpid uint16, aDei uint8) (VlanTag, error) {
	if aVid > CMaxVid {
		return VlanTag{}, fmt.Errorf("vid out of range: %d", aVid)
	}
	if aPcp > CMaxPcp {
		return VlanTag{}, fmt.Errorf("pcp out of range: %d", aPcp)
	}
	if aDei > 1 {
		return VlanTag{}, fmt.Errorf("dei out of range: %d", aDei)
	}
	if aTpid == 0 {
		aTpid = CDefaultTpid
	}
	return VlanTag{Vid: aVid, Pcp: aPcp, Tpid: aTpid, Dei: aDei}, nil
}

func (tag VlanTag) String() string {
	return fmt.Sprintf("vid:%d pcp:%d tpid:0x%04x dei:%d", tag.Vid, tag.Pcp, tag.Tpid, tag.Dei)
}

// FrameClass distinguishes frames by their tag count
type FrameClass int

// frame classifications according to the number of stacked VLAN tags
const (
	FrameUntagged     FrameClass = iota // no VLAN tag
	FrameSingleTagged                   // exactly one VLAN tag
	FrameDoubleTagged                   // two or more VLAN tags (only the outermost two are distinguished)
)

func (fc FrameClass) String() string {
	switch fc {
	case FrameUntagged:
		return "untagged"
	case FrameSingleTagged:
		return "single-tagged"
	case FrameDoubleTagged:
		return "double-tagged"
	default:
		return fmt.Sprintf("FrameClass(%d)", int(fc))
	}
}

// TagStack is the ordered VLAN tag stack of an Ethernet frame, outermost tag
// first. Stacks with more than two entries are representable, but only the
// outermost two are semantically distinguished.
type TagStack []VlanTag

// InnerTag returns the innermost tag (nearest the payload) if present.
func (ts TagStack) InnerTag() (VlanTag, bool) {
	if len(ts) == 0 {
		return VlanTag{}, false
	}
	return ts[len(ts)-1], true
}

// OuterTag returns the tag preceding the innermost one if present. Absent
// whenever the stack carries fewer than two tags.
func (ts TagStack) OuterTag() (VlanTag, bool) {
	if len(ts) < 2 {
		return VlanTag{}, false
	}
	return ts[len(ts)-2], true
}

// Class returns the tag-count classification of the stack.
func (ts TagStack) Class() FrameClass {
	switch len(ts) {
	case 0:
		return FrameUntagged
	case 1:
		return FrameSingleTagged
	default:
		return FrameDoubleTagged
	}
}

func (ts TagStack) String() string {
	if len(ts) == 0 {
		return "untagged"
	}
	out := ""
	for i, tag := range ts {
		if i > 0 {
			out += " | "
		}
		out += tag.String()
	}
	return out
}
