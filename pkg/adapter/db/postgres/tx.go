// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"

	"github.com/momeni/vehicle-access/pkg/core/repo"
	"gorm.io/gorm"
)

// Tx represents a READ-COMMITTED database transaction which embeds
// the *gorm.DB, so it may be used like GORM from within the repository
// packages. Gate toggles rely on SELECT ... FOR UPDATE row locks and
// the partial unique index of open events instead of a stricter
// isolation level.
type Tx struct {
	*gorm.DB
}

// Exec runs SQL statements with given args given ctx context.
// Number of affected rows and possible errors will be returned.
// If args is provided, sql must contain exactly one statement, but in
// absence of args, it may contain multiple semi-colon separated
// statements (e.g., the schema creation DDL).
// Parameters may be numbered like $1, $2, etc. or use the ? and @name
// placeholders of GORM.
func (tx *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tt := tx.DB.WithContext(ctx).Exec(sql, args...)
	if err := tt.Error; err != nil {
		return 0, MapError(err)
	}
	return tt.RowsAffected, nil
}

// Query runs the sql statement with given args and returns its result
// set. The Query or Exec may not be called again until the Rows is
// closed since only one ongoing statement may be used on each
// connection.
func (tx *Tx) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	rows, err := tx.DB.WithContext(ctx).Raw(sql, args...).Rows()
	return rowsAdapter{rows}, err
}

// IsTx method prevents a non-Tx object (such as a Conn) to
// mistakenly implement the Tx interface.
func (tx *Tx) IsTx() {
}

// GORM returns the embedded *gorm.DB instance, configuring it
// to operate on the given ctx context (in a gorm.Session).
func (tx *Tx) GORM(ctx context.Context) *gorm.DB {
	return tx.DB.WithContext(ctx)
}
