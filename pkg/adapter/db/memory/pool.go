// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/vehicle-access/pkg/core/repo"
)

// ErrRawSQL is returned by the Exec and Query methods since a DB does
// not understand SQL statements.
var ErrRawSQL = errors.New("raw SQL is not supported by memory db")

// Pool hands out connections to one DB. It never blocks.
type Pool struct {
	db *DB
}

func NewPool(db *DB) *Pool {
	return &Pool{db: db}
}

// DB returns the database of this pool, so it can be seeded.
func (p *Pool) DB() *DB {
	return p.db
}

func (p *Pool) Conn(ctx context.Context, f repo.ConnHandler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f(ctx, &Conn{db: p.db})
}

// Close is a no-op which exists for symmetry with postgres.Pool.
func (p *Pool) Close() error {
	return nil
}

type Conn struct {
	db *DB
}

// Tx calls f with a new transaction. Modifications of a transaction
// are visible to other connections immediately (no isolation), but
// they are undone if f returns an error or panics.
func (c *Conn) Tx(ctx context.Context, f repo.TxHandler) (err error) {
	tx := &Tx{db: c.db}
	defer func() {
		if r := recover(); r != nil {
			tx.rollback()
			err = fmt.Errorf("panicked: %v", r)
			return
		}
		if err != nil {
			tx.rollback()
			err = fmt.Errorf("handler: %w", err)
		}
	}()
	return f(ctx, tx)
}

func (c *Conn) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

func (c *Conn) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

func (c *Conn) IsConn() {
}

type Tx struct {
	db   *DB
	undo []func()
}

func (tx *Tx) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

func (tx *Tx) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

func (tx *Tx) IsTx() {
}

func (tx *Tx) rollback() {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

// onRollback registers f to be called (while holding db.mu) if tx
// rolls back. Caller must hold db.mu. Connections have no tx, so
// their modifications are not recorded.
func (tx *Tx) onRollback(f func()) {
	if tx == nil {
		return
	}
	tx.undo = append(tx.undo, f)
}
