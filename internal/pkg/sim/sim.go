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

// Package sim orchestrates table loading and frame evaluation for one session
package sim

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/looplab/fsm"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"

	"github.com/opencord/evtocd-sim/internal/pkg/evtocd"
	"github.com/opencord/evtocd-sim/internal/pkg/frame"
	"github.com/opencord/evtocd-sim/internal/pkg/tabledb"
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

// events of the simulation session FSM
const (
	SimEvStart       = "SimEvStart"
	SimEvTablesDone  = "SimEvTablesDone"
	SimEvLoadFail    = "SimEvLoadFail"
	SimEvRunFrames   = "SimEvRunFrames"
	SimEvFramesDone  = "SimEvFramesDone"
	SimEvReset       = "SimEvReset"
)

// states of the simulation session FSM
const (
	SimStDisabled      = "SimStDisabled"
	SimStLoadingTables = "SimStLoadingTables"
	SimStReady         = "SimStReady"
	SimStRunningFrames = "SimStRunningFrames"
	SimStDone          = "SimStDone"
)

// FrameResult is the processing outcome of one input frame against one table.
type FrameResult struct {
	Source string
	Input  evtocd.TagStack
	Result evtocd.TreatmentResult
}

// Session drives one pass of the simulator: load rule tables from input
// sources, then run frame specifications against every loaded table.
type Session struct {
	name       string
	inputTpid  uint16
	outputTpid uint16
	tableDB    *tabledb.TableDB
	pFsm       *fsm.FSM
}

// NewSession creates a session with the given TPID contexts for the filter
// and treatment sides.
func NewSession(ctx context.Context, aName string, aInputTpid uint16, aOutputTpid uint16) *Session {
	session := &Session{
		name:       aName,
		inputTpid:  aInputTpid,
		outputTpid: aOutputTpid,
		tableDB:    tabledb.NewTableDB(ctx),
	}
	session.pFsm = fsm.NewFSM(
		SimStDisabled,
		fsm.Events{
			{Name: SimEvStart, Src: []string{SimStDisabled}, Dst: SimStLoadingTables},
			{Name: SimEvTablesDone, Src: []string{SimStLoadingTables}, Dst: SimStReady},
			{Name: SimEvLoadFail, Src: []string{SimStLoadingTables}, Dst: SimStDisabled},
			{Name: SimEvRunFrames, Src: []string{SimStReady}, Dst: SimStRunningFrames},
			{Name: SimEvFramesDone, Src: []string{SimStRunningFrames}, Dst: SimStDone},
			{Name: SimEvReset, Src: []string{SimStReady, SimStRunningFrames, SimStDone}, Dst: SimStDisabled},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) { session.logFsmStateChange(ctx, e) },
		},
	)
	return session
}

func (session *Session) logFsmStateChange(ctx context.Context, e *fsm.Event) {
	logger.Debugw(ctx, "session FSM state change", log.Fields{
		"session": session.name, "event": e.Event, "src": e.Src, "dst": e.Dst})
}

// State returns the current FSM state of the session.
func (session *Session) State() string {
	return session.pFsm.Current()
}

// TableDB exposes the loaded tables for reporting.
func (session *Session) TableDB() *tabledb.TableDB {
	return session.tableDB
}

// LoadTables reads one rule table per named reader and stores it. On the
// first table whose build fails the whole load aborts, as a partially loaded
// session must not process frames.
func (session *Session) LoadTables(ctx context.Context, aSources map[string]io.Reader, aOrder []string) error {
	if err := session.pFsm.Event(SimEvStart); err != nil {
		return fmt.Errorf("session %s cannot start loading: %s", session.name, err)
	}
	for _, source := range aOrder {
		reader, ok := aSources[source]
		if !ok {
			_ = session.pFsm.Event(SimEvLoadFail)
			return fmt.Errorf("no reader for source %s", source)
		}
		table, err := session.loadOneTable(ctx, source, reader)
		if err != nil {
			_ = session.pFsm.Event(SimEvLoadFail)
			return err
		}
		session.tableDB.PutTable(ctx, source, table)
	}
	_ = session.pFsm.Event(SimEvTablesDone)
	return nil
}

func (session *Session) loadOneTable(ctx context.Context, aSource string, aReader io.Reader) (*evtocd.VlanTagOpTable, error) {
	var rows [][]string
	scanner := bufio.NewScanner(aReader)
	for scanner.Scan() {
		rows = append(rows, strings.Fields(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading table source %s: %s", aSource, err)
	}
	table, err := evtocd.ParseVlanTagOpTable(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("table source %s: %s", aSource, err)
	}
	logger.Infow(ctx, "loaded EVTOCD table", log.Fields{
		"session": session.name, "source": aSource, "rules": table.Len()})
	return table, nil
}

// RunFrames parses frame specification lines from the reader and processes
// every frame against every loaded table, in table load order. Unparseable
// lines are skipped like malformed table rows.
func (session *Session) RunFrames(ctx context.Context, aReader io.Reader) ([]FrameResult, error) {
	if err := session.pFsm.Event(SimEvRunFrames); err != nil {
		return nil, fmt.Errorf("session %s not ready for frames: %s", session.name, err)
	}
	var results []FrameResult
	scanner := bufio.NewScanner(aReader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stack, err := session.parseFrameSpec(ctx, line)
		if err != nil {
			logger.Debugw(ctx, "skipping unusable frame spec", log.Fields{
				"session": session.name, "line": line, "reason": err.Error()})
			continue
		}
		for _, source := range session.tableDB.Sources() {
			table, _ := session.tableDB.GetTable(source)
			results = append(results, FrameResult{
				Source: source,
				Input:  stack,
				Result: table.Process(ctx, stack, session.inputTpid, session.outputTpid),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading frame specs: %s", err)
	}
	_ = session.pFsm.Event(SimEvFramesDone)
	return results, nil
}

// parseFrameSpec understands two line forms:
//
//	tags [vid:pcp[:tpid[:dei]] ...]   synthetic tag stack, outermost first
//	frame <hexbytes>                  captured Ethernet frame
func (session *Session) parseFrameSpec(ctx context.Context, aLine string) (evtocd.TagStack, error) {
	tokens := strings.Fields(aLine)
	switch tokens[0] {
	case "frame":
		if len(tokens) < 2 {
			return nil, fmt.Errorf("frame spec without hex payload")
		}
		return frame.DecodeTagStack(ctx, strings.Join(tokens[1:], ""))
	case "tags":
		var stack evtocd.TagStack
		for _, spec := range tokens[1:] {
			tag, err := parseTagSpec(spec)
			if err != nil {
				return nil, err
			}
			stack = append(stack, tag)
		}
		return stack, nil
	default:
		return nil, fmt.Errorf("unknown frame spec %q", tokens[0])
	}
}

func parseTagSpec(aSpec string) (evtocd.VlanTag, error) {
	parts := strings.Split(aSpec, ":")
	if len(parts) < 2 || len(parts) > 4 {
		return evtocd.VlanTag{}, fmt.Errorf("tag spec %q not of form vid:pcp[:tpid[:dei]]", aSpec)
	}
	vid, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return evtocd.VlanTag{}, fmt.Errorf("tag spec %q: bad vid: %s", aSpec, err)
	}
	pcp, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return evtocd.VlanTag{}, fmt.Errorf("tag spec %q: bad pcp: %s", aSpec, err)
	}
	var tpid uint64
	if len(parts) > 2 {
		// TPID given in hex, matching how it is written everywhere else
		tpid, err = strconv.ParseUint(strings.TrimPrefix(parts[2], "0x"), 16, 16)
		if err != nil {
			return evtocd.VlanTag{}, fmt.Errorf("tag spec %q: bad tpid: %s", aSpec, err)
		}
	}
	var dei uint64
	if len(parts) > 3 {
		dei, err = strconv.ParseUint(parts[3], 10, 8)
		if err != nil {
			return evtocd.VlanTag{}, fmt.Errorf("tag spec %q: bad dei: %s", aSpec, err)
		}
	}
	return evtocd.NewVlanTag(uint16(vid), uint8(pcp), uint16(tpid), uint8(dei))
}

// RankServiceVlans runs the service-VLAN estimation against every loaded
// table, keyed by source.
func (session *Session) RankServiceVlans(ctx context.Context, aTargetPcp uint8) map[string][]evtocd.ServiceVlanScore {
	rankings := make(map[string][]evtocd.ServiceVlanScore)
	for _, source := range session.tableDB.Sources() {
		table, _ := session.tableDB.GetTable(source)
		rankings[source] = evtocd.RankServiceVlans(ctx, table, aTargetPcp)
	}
	return rankings
}
