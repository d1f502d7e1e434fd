/*
* Copyright 2018-present Open Networking Foundation

* Licensed under the Apache License, Version 2.0 (the "License");
* you may not use this file except in compliance with the License.
* You may obtain a copy of the License at

* http://www.apache.org/licenses/LICENSE-2.0

* Unless required by applicable law or agreed to in writing, software
* distributed under the License is distributed on an "AS IS" BASIS,
* WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
* See the License for the specific language governing permissions and
* limitations under the License.
 */

//Package config provides the command line configuration of the simulator
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// simulator default constants
const (
	defaultInstanceid         = "evtocd-sim"
	defaultLoglevel           = "WARN"
	defaultBanner             = false
	defaultDisplayVersionOnly = false
	defaultTableFiles         = ""
	defaultFramesFile         = ""
	defaultInputTpid          = 0x8100
	defaultOutputTpid         = 0x8100
	defaultRankPbit           = -1
)

// SimFlags represents the set of configurations used by the simulator
type SimFlags struct {
	// Command line parameters
	InstanceID         string
	LogLevel           string
	Banner             bool
	DisplayVersionOnly bool
	TableFiles         []string
	FramesFile         string
	InputTpid          uint
	OutputTpid         uint
	RankPbit           int
}

// NewSimFlags returns a new simulator config
func NewSimFlags() *SimFlags {
	var simFlags = SimFlags{ // Default values
		InstanceID:         defaultInstanceid,
		LogLevel:           defaultLoglevel,
		Banner:             defaultBanner,
		DisplayVersionOnly: defaultDisplayVersionOnly,
		FramesFile:         defaultFramesFile,
		InputTpid:          defaultInputTpid,
		OutputTpid:         defaultOutputTpid,
		RankPbit:           defaultRankPbit,
	}
	return &simFlags
}

// ParseCommandArguments parses the arguments when running the simulator
func (so *SimFlags) ParseCommandArguments() {

	help := fmt.Sprintf("Log level")
	flag.StringVar(&(so.LogLevel), "log_level", defaultLoglevel, help)

	help = fmt.Sprintf("Show startup banner log lines")
	flag.BoolVar(&(so.Banner), "banner", defaultBanner, help)

	help = fmt.Sprintf("Show version information and exit")
	flag.BoolVar(&(so.DisplayVersionOnly), "version", defaultDisplayVersionOnly, help)

	help = fmt.Sprintf("Comma separated list of EVTOCD table files (default: read one table from stdin)")
	tableFiles := flag.String("table_files", defaultTableFiles, help)

	help = fmt.Sprintf("File with frame specifications to process against the loaded tables")
	flag.StringVar(&(so.FramesFile), "frames_file", defaultFramesFile, help)

	help = fmt.Sprintf("Input side TPID context for filter TPID/DEI checks")
	flag.UintVar(&(so.InputTpid), "input_tpid", defaultInputTpid, help)

	help = fmt.Sprintf("Output side TPID context for treatment TPID/DEI resolution")
	flag.UintVar(&(so.OutputTpid), "output_tpid", defaultOutputTpid, help)

	help = fmt.Sprintf("802.1p priority to rank service VLAN candidates for (-1: no ranking)")
	flag.IntVar(&(so.RankPbit), "rank_pbit", defaultRankPbit, help)

	flag.Parse()
	containerName := getContainerInfo()
	if len(containerName) > 0 {
		so.InstanceID = containerName
	}

	if *tableFiles != "" {
		so.TableFiles = strings.Split(*tableFiles, ",")
	}
}

func getContainerInfo() string {
	return os.Getenv("HOSTNAME")
}
