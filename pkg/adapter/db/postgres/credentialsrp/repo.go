// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package credentialsrp realizes the read-only credential directory
// on the credentials table of a PostgreSQL database.
package credentialsrp

import (
	"context"

	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
)

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

func (creds *Repo) Conn(c repo.Conn) repo.CredentialsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Resolve(ctx context.Context, code string) (*model.Credential, error) {
	return Resolve(ctx, cq.Conn, code)
}

type txQueryer struct {
	*postgres.Tx
}

func (creds *Repo) Tx(tx repo.Tx) repo.CredentialsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Resolve(ctx context.Context, code string) (*model.Credential, error) {
	return Resolve(ctx, tq.Tx, code)
}
