/*
 * Copyright 2020-present Open Networking Foundation
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

//Package main -> this is the entry point of the EVTOCD table simulator
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/opencord/voltha-lib-go/v7/pkg/log"

	"github.com/opencord/evtocd-sim/config/version"
	"github.com/opencord/evtocd-sim/internal/pkg/config"
	"github.com/opencord/evtocd-sim/internal/pkg/report"
	"github.com/opencord/evtocd-sim/internal/pkg/sim"
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

const cStdinSource = "stdin"

func printVersion(appName string) {
	fmt.Println(appName)
	fmt.Println(version.VersionInfo.String("  "))
}

func printBanner() {
	fmt.Println("  ________  _______ ____  ______ ____        _____ ______  ___")
	fmt.Println(" / ____/ / / /_  __/ __ \\/ ____// __ \\      / ___//  _/  |/  /")
	fmt.Println("/ __/ / / / / / / / / / / /    / / / /_____ \\__ \\ / // /|_/ / ")
	fmt.Println("/ /___/ /_/ / / / / /_/ / /___ / /_/ /_____/__/ // // /  / /  ")
	fmt.Println("/_____/\\____/ /_/  \\____/\\____/.____/      /____/___/_/  /_/   ")
	fmt.Println("")
}

// openTableSources resolves the configured table files, falling back to one
// table read from stdin.
func openTableSources(cf *config.SimFlags) (map[string]io.Reader, []string, []io.Closer, error) {
	sources := make(map[string]io.Reader)
	var order []string
	var closers []io.Closer
	if len(cf.TableFiles) == 0 {
		sources[cStdinSource] = os.Stdin
		order = append(order, cStdinSource)
		return sources, order, closers, nil
	}
	for _, name := range cf.TableFiles {
		file, err := os.Open(name)
		if err != nil {
			for _, closer := range closers {
				_ = closer.Close()
			}
			return nil, nil, nil, fmt.Errorf("cannot open table file %s: %s", name, err)
		}
		sources[name] = file
		order = append(order, name)
		closers = append(closers, file)
	}
	return sources, order, closers, nil
}

func runSimulator(ctx context.Context, cf *config.SimFlags) error {
	session := sim.NewSession(ctx, cf.InstanceID, uint16(cf.InputTpid), uint16(cf.OutputTpid))

	sources, order, closers, err := openTableSources(cf)
	if err != nil {
		return err
	}
	defer func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}()

	if err := session.LoadTables(ctx, sources, order); err != nil {
		return err
	}

	for _, source := range session.TableDB().Sources() {
		table, _ := session.TableDB().GetTable(source)
		report.RenderOpTable(os.Stdout, source, table)
	}

	if cf.FramesFile != "" {
		framesFile, err := os.Open(cf.FramesFile)
		if err != nil {
			return fmt.Errorf("cannot open frames file %s: %s", cf.FramesFile, err)
		}
		defer func() {
			_ = framesFile.Close()
		}()
		results, err := session.RunFrames(ctx, framesFile)
		if err != nil {
			return err
		}
		report.RenderFrameResults(os.Stdout, results)
	}

	if cf.RankPbit >= 0 {
		if cf.RankPbit > 7 {
			return fmt.Errorf("rank_pbit out of range: %d", cf.RankPbit)
		}
		rankings := session.RankServiceVlans(ctx, uint8(cf.RankPbit))
		for _, source := range session.TableDB().Sources() {
			report.RenderRanking(os.Stdout, source, uint8(cf.RankPbit), rankings[source])
		}
	}
	return nil
}

func main() {
	cf := config.NewSimFlags()
	defaultAppName := cf.InstanceID + "_" + version.GetCodeVersion()
	cf.ParseCommandArguments()

	// Setup logging

	logLevel, err := log.StringToLogLevel(cf.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot setup logging, %s\n", err)
		os.Exit(1)
	}

	// Setup default logger - applies for packages that do not have specific logger set
	if _, err := log.SetDefaultLogger(log.JSON, logLevel, log.Fields{"instanceId": cf.InstanceID}); err != nil {
		logger.With(log.Fields{"error": err}).Fatal(context.Background(), "Cannot setup logging")
	}

	// Update all loggers (provisioned via init) with a common field
	if err := log.UpdateAllLoggers(log.Fields{"instanceId": cf.InstanceID}); err != nil {
		logger.With(log.Fields{"error": err}).Fatal(context.Background(), "Cannot setup logging")
	}

	log.SetAllLogLevel(logLevel)

	defer func() {
		_ = log.CleanUp()
	}()

	// Print version / build information and exit
	if cf.DisplayVersionOnly {
		printVersion(defaultAppName)
		return
	}

	// Print banner if specified
	if cf.Banner {
		printBanner()
	}

	logger.Infow(context.Background(), "config", log.Fields{"config": *cf})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runSimulator(ctx, cf); err != nil {
		logger.Errorw(ctx, "simulator run failed", log.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
