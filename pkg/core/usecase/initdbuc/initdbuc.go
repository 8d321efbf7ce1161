// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package initdbuc contains the database initialization use case.
package initdbuc

import (
	"context"
	"fmt"

	"github.com/momeni/vehicle-access/pkg/core/repo"
)

// UseCase represents the database initialization use case. It may be
// used to initialize database with development or production suitable
// data as asked by the InitDev and InitProd methods. Both of them may
// be repeated since existing tables and rows are kept.
type UseCase struct {
	pool       repo.Pool
	schemaRepo repo.Schema
}

func New(p repo.Pool, s repo.Schema) *UseCase {
	return &UseCase{pool: p, schemaRepo: s}
}

// InitProd creates the tables and constraints, leaving them empty.
func (uc *UseCase) InitProd(ctx context.Context) error {
	return uc.initDB(ctx, func(ctx context.Context, q repo.SchemaTxQueryer) error {
		return nil
	})
}

// InitDev creates the tables and fills them with sample vehicles, a
// credential (with a well-known code), and a few access events.
func (uc *UseCase) InitDev(ctx context.Context) error {
	return uc.initDB(ctx, func(ctx context.Context, q repo.SchemaTxQueryer) error {
		if err := q.InitDevData(ctx); err != nil {
			return fmt.Errorf("filling development data: %w", err)
		}
		return nil
	})
}

func (uc *UseCase) initDB(
	ctx context.Context,
	fill func(context.Context, repo.SchemaTxQueryer) error,
) error {
	return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := uc.schemaRepo.Tx(tx)
			if err := q.CreateTables(ctx); err != nil {
				return fmt.Errorf("creating tables: %w", err)
			}
			return fill(ctx, q)
		})
	})
}
