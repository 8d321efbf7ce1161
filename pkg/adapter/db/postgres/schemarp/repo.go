// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemarp provides a reification of the repo.Schema interface
// making it possible to create the access control tables and fill them
// with development suitable sample data.
package schemarp

import (
	"context"
	"time"

	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres"
	"github.com/momeni/vehicle-access/pkg/core/repo"
)

// Repo represents a schema management repository.
type Repo struct {
	now func() time.Time
}

// New instantiates a schema management Repo struct. Although this New
// function does not perform complex operations, it improves the code
// readability as schemarp.New() makes the package to look alike a
// data type.
func New() *Repo {
	return &Repo{now: time.Now}
}

type txQueryer struct {
	*postgres.Tx
	now func() time.Time
}

// Tx unwraps the given repo.Tx instance, expecting to find an instance
// of *postgres.Tx as created by this adapter layer. Otherwise, it will
// panic. Unwrapped transaction will be wrapped and returned as an
// instance of repo.SchemaTxQueryer interface, so it can be used in
// the use cases layer without requiring to type assert again and again.
func (schema *Repo) Tx(tx repo.Tx) repo.SchemaTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt, now: schema.now}
}

// CreateTables creates the vehicles, credentials, and access_events
// tables together with the index which forbids two open events for
// one vehicle. Existing tables are kept as they are.
func (tq txQueryer) CreateTables(ctx context.Context) error {
	return CreateTables(ctx, tq.Tx)
}

// InitDevData fills tables with the development suitable sample data.
// Sample event times are relative to the current time.
func (tq txQueryer) InitDevData(ctx context.Context) error {
	return InitDevData(ctx, tq.Tx, tq.now())
}
