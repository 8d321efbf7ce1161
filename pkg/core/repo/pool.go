// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo defines the repository interfaces which are required by
// the use cases layer. Adapters realize them for a specific database
// (e.g., PostgreSQL) or keep data in memory for tests.
// Connections and transactions are acquired by use cases from a Pool
// and passed to the repositories, so a use case may decide about the
// transaction boundaries without knowing about the database driver.
package repo

import "context"

// ConnHandler is called with an acquired connection. The connection
// is released as soon as the handler returns.
type ConnHandler func(context.Context, Conn) error

// Pool represents a pool of database connections.
type Pool interface {
	Conn(ctx context.Context, handler ConnHandler) error
}
