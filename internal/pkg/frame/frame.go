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

// Package frame converts captured Ethernet frames into VLAN tag stacks
package frame

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	gp "github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"

	"github.com/opencord/evtocd-sim/internal/pkg/evtocd"
)

var logger log.CLogger

func init() {
	// Setup this package so that it's log level can be modified at run time
	var err error
	logger, err = log.RegisterPackage(log.JSON, log.ErrorLevel, log.Fields{})
	if err != nil {
		panic(err)
	}
}

// DecodeTagStack extracts the VLAN tag stack from a hex-dumped Ethernet
// frame, outermost tag first. Accepts optional whitespace between the hex
// bytes. The TPID recorded per tag is the EtherType that announced it, so
// QinQ stacks keep their 0x88a8 outer marker.
func DecodeTagStack(ctx context.Context, aFrameHex string) (evtocd.TagStack, error) {
	cleaned := strings.Join(strings.Fields(aFrameHex), "")
	raw, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid frame hex: %s", err)
	}
	packet := gp.NewPacket(raw, layers.LayerTypeEthernet, gp.DecodeOptions{Lazy: false, NoCopy: true})
	ethLayer := packet.Layer(layers.LayerTypeEthernet)
	if ethLayer == nil {
		return nil, fmt.Errorf("no ethernet layer in %d byte frame", len(raw))
	}
	eth := ethLayer.(*layers.Ethernet)

	var stack evtocd.TagStack
	tpid := uint16(eth.EthernetType)
	for _, layer := range packet.Layers() {
		dot1q, ok := layer.(*layers.Dot1Q)
		if !ok {
			continue
		}
		dei := uint8(0)
		if dot1q.DropEligible {
			dei = 1
		}
		tag, err := evtocd.NewVlanTag(dot1q.VLANIdentifier, dot1q.Priority, tpid, dei)
		if err != nil {
			return nil, fmt.Errorf("frame carries unusable vlan tag: %s", err)
		}
		stack = append(stack, tag)
		// the ethertype of this tag announces the next one (or the payload)
		tpid = uint16(dot1q.Type)
	}
	logger.Debugw(ctx, "decoded tag stack from frame", log.Fields{
		"bytes": len(raw), "tags": len(stack), "class": stack.Class().String()})
	return stack, nil
}
