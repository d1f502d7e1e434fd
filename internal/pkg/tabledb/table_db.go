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

// Package tabledb provides access to the built EVTOCD tables per input source
package tabledb

import (
	"context"
	"sync"

	om "github.com/cevaris/ordered_map"
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

// TableDB holds one built VlanTagOpTable per input source (file name or
// "stdin"), in load order. Put calls happen during the single-threaded load
// phase; reads may run concurrently afterwards.
type TableDB struct {
	tables     *om.OrderedMap
	tablesLock sync.RWMutex
}

// NewTableDB returns an empty store.
func NewTableDB(ctx context.Context) *TableDB {
	logger.Debug(ctx, "init EVTOCD table DB")
	return &TableDB{tables: om.NewOrderedMap()}
}

// PutTable registers the table built from the given source. A source loaded
// twice keeps its original position and gets its table replaced.
func (db *TableDB) PutTable(ctx context.Context, aSource string, aTable *evtocd.VlanTagOpTable) {
	db.tablesLock.Lock()
	defer db.tablesLock.Unlock()
	db.tables.Set(aSource, aTable)
	logger.Debugw(ctx, "stored EVTOCD table", log.Fields{"source": aSource, "rules": aTable.Len()})
}

// GetTable looks up the table of one source.
func (db *TableDB) GetTable(aSource string) (*evtocd.VlanTagOpTable, bool) {
	db.tablesLock.RLock()
	defer db.tablesLock.RUnlock()
	value, ok := db.tables.Get(aSource)
	if !ok {
		return nil, false
	}
	return value.(*evtocd.VlanTagOpTable), true
}

// Sources lists the registered sources in load order.
func (db *TableDB) Sources() []string {
	db.tablesLock.RLock()
	defer db.tablesLock.RUnlock()
	var sources []string
	iter := db.tables.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		sources = append(sources, kv.Key.(string))
	}
	return sources
}

// Len returns the number of stored tables.
func (db *TableDB) Len() int {
	return len(db.Sources())
}
