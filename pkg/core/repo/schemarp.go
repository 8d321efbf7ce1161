// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// Schema interface presents expectations from a repository which
// allows the database tables to be created and filled with their
// initial data. Similar to other repositories, it can wrap a Tx and
// return a queryer object. Initialization is only allowed in a
// transaction, so a failed attempt leaves no half-created tables.
type Schema interface {
	// Tx takes a Tx interface instance, unwraps it as required,
	// and returns a SchemaTxQueryer interface which (with access to
	// the underlying transaction) can run the schema queries.
	Tx(Tx) SchemaTxQueryer
}

// SchemaTxQueryer interface lists the schema initialization operations.
type SchemaTxQueryer interface {
	// CreateTables creates the vehicles, credentials, and
	// access_events tables (if they do not exist) together with the
	// constraint which forbids two open events for one vehicle.
	CreateTables(ctx context.Context) error

	// InitDevData fills tables with the development suitable sample
	// data, including vehicles, one credential, and sample events.
	InitDevData(ctx context.Context) error
}
