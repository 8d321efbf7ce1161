// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package eventsrp realizes the access events store on the
// access_events table of a PostgreSQL database.
// Reads are offered with both of connections and transactions, while
// the toggle operations (FindOpen, Create, and Close) need a
// transaction because the open event row lock has to be kept until
// the toggle commits.
package eventsrp

import (
	"context"
	"time"

	"github.com/google/uuid"
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

func (events *Repo) Conn(c repo.Conn) repo.EventsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Query(ctx context.Context, from, until *time.Time) ([]model.AccessEvent, error) {
	return Query(ctx, cq.Conn, from, until)
}

func (cq connQueryer) CountOpen(ctx context.Context) (int, error) {
	return CountOpen(ctx, cq.Conn)
}

type txQueryer struct {
	*postgres.Tx
}

func (events *Repo) Tx(tx repo.Tx) repo.EventsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) FindOpen(ctx context.Context, vehicleID uuid.UUID) (*model.AccessEvent, error) {
	return FindOpen(ctx, tq.Tx, vehicleID)
}

func (tq txQueryer) Create(
	ctx context.Context,
	vehicleID, credentialID uuid.UUID,
	entryTime time.Time,
) (*model.AccessEvent, error) {
	return Create(ctx, tq.Tx, vehicleID, credentialID, entryTime)
}

func (tq txQueryer) Close(ctx context.Context, eventID uuid.UUID, exitTime time.Time) (*model.AccessEvent, error) {
	return Close(ctx, tq.Tx, eventID, exitTime)
}

func (tq txQueryer) Query(ctx context.Context, from, until *time.Time) ([]model.AccessEvent, error) {
	return Query(ctx, tq.Tx, from, until)
}

func (tq txQueryer) CountOpen(ctx context.Context) (int, error) {
	return CountOpen(ctx, tq.Tx)
}
