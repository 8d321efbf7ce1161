// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
)

// Repositories returns the set of memory repositories. They can be
// used with any Pool created by NewPool.
func Repositories() repo.Set {
	return repo.Set{
		Credentials: Credentials{},
		Vehicles:    Vehicles{},
		Events:      Events{},
		Schema:      Schema{now: time.Now},
	}
}

// session is the common state of Conn and Tx queryers.
// The tx field is nil for connection queryers.
type session struct {
	db *DB
	tx *Tx
}

func connSession(c repo.Conn) session {
	return session{db: c.(*Conn).db}
}

func txSession(tx repo.Tx) session {
	tt := tx.(*Tx)
	return session{db: tt.db, tx: tt}
}

type Credentials struct{}

func (Credentials) Conn(c repo.Conn) repo.CredentialsConnQueryer {
	return connSession(c)
}

func (Credentials) Tx(tx repo.Tx) repo.CredentialsTxQueryer {
	return txSession(tx)
}

func (s session) Resolve(ctx context.Context, code string) (*model.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.credentials[code]
	if !ok {
		return nil, fmt.Errorf("credential: %w", repo.ErrNotFound)
	}
	return &c, nil
}

type Vehicles struct{}

func (Vehicles) Conn(c repo.Conn) repo.VehiclesConnQueryer {
	return connSession(c)
}

func (Vehicles) Tx(tx repo.Tx) repo.VehiclesTxQueryer {
	return txSession(tx)
}

func (s session) Find(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	v, ok := s.db.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("vehicle %s: %w", id, repo.ErrNotFound)
	}
	return &v, nil
}

type Events struct{}

func (Events) Conn(c repo.Conn) repo.EventsConnQueryer {
	return connSession(c)
}

func (Events) Tx(tx repo.Tx) repo.EventsTxQueryer {
	return txSession(tx)
}

func (s session) FindOpen(ctx context.Context, vehicleID uuid.UUID) (*model.AccessEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	e, ok := s.db.open[vehicleID]
	if !ok {
		return nil, fmt.Errorf("open event: %w", repo.ErrNotFound)
	}
	c := s.db.annotated(e)
	return &c, nil
}

func (s session) Create(
	ctx context.Context,
	vehicleID, credentialID uuid.UUID,
	entryTime time.Time,
) (*model.AccessEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.vehicles[vehicleID]; !ok {
		return nil, fmt.Errorf("vehicle %s: %w", vehicleID, repo.ErrNotFound)
	}
	if _, ok := s.db.open[vehicleID]; ok {
		return nil, fmt.Errorf(
			"vehicle %s has an open event: %w", vehicleID, repo.ErrConflict,
		)
	}
	e := &model.AccessEvent{
		ID:           uuid.New(),
		VehicleID:    vehicleID,
		CredentialID: credentialID,
		EntryTime:    entryTime.UTC(),
	}
	s.db.events = append(s.db.events, e)
	s.db.open[vehicleID] = e
	s.tx.onRollback(func() {
		s.db.events = slices.DeleteFunc(s.db.events, func(x *model.AccessEvent) bool {
			return x == e
		})
		if s.db.open[vehicleID] == e {
			delete(s.db.open, vehicleID)
		}
	})
	c := s.db.annotated(e)
	return &c, nil
}

func (s session) Close(ctx context.Context, eventID uuid.UUID, exitTime time.Time) (*model.AccessEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var e *model.AccessEvent
	for _, x := range s.db.open {
		if x.ID == eventID {
			e = x
			break
		}
	}
	if e == nil {
		return nil, fmt.Errorf("open event %s: %w", eventID, repo.ErrNotFound)
	}
	exitTime = exitTime.UTC()
	if exitTime.Before(e.EntryTime) {
		return nil, fmt.Errorf(
			"exit time %s precedes entry time %s", exitTime, e.EntryTime,
		)
	}
	e.ExitTime = &exitTime
	delete(s.db.open, e.VehicleID)
	s.tx.onRollback(func() {
		e.ExitTime = nil
		s.db.open[e.VehicleID] = e
	})
	c := s.db.annotated(e)
	return &c, nil
}

func (s session) Query(ctx context.Context, from, until *time.Time) ([]model.AccessEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]model.AccessEvent, 0, len(s.db.events))
	for _, e := range s.db.events {
		if from != nil && e.EntryTime.Before(*from) {
			continue
		}
		if until != nil && !e.EntryTime.Before(*until) {
			continue
		}
		out = append(out, s.db.annotated(e))
	}
	slices.SortStableFunc(out, func(a, b model.AccessEvent) int {
		return b.EntryTime.Compare(a.EntryTime)
	})
	return out, nil
}

func (s session) CountOpen(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.open), nil
}

// Credential codes which are issued by InitDevData for the first and
// second sample vehicles.
const (
	DevCode  = "VEHICLE1BARCODE"
	DevCode2 = "VEHICLE2BARCODE"
)

type Schema struct {
	now func() time.Time
}

type schemaQueryer struct {
	session
	now func() time.Time
}

func (schema Schema) Tx(tx repo.Tx) repo.SchemaTxQueryer {
	return schemaQueryer{session: txSession(tx), now: schema.now}
}

// CreateTables has nothing to do since maps are created by NewDB.
func (sq schemaQueryer) CreateTables(ctx context.Context) error {
	return ctx.Err()
}

// InitDevData seeds the same sample data as the PostgreSQL schema.
// Seeded records are not undone on rollback.
func (sq schemaQueryer) InitDevData(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db := sq.db
	v1 := db.AddVehicle("ABC-1234")
	v2 := db.AddVehicle("XYZ-7890")
	db.AddVehicle("QWE-5678")
	c1, err := db.IssueCredential(v1.ID, DevCode)
	if err != nil {
		return fmt.Errorf("issuing credential: %w", err)
	}
	c2, err := db.IssueCredential(v2.ID, DevCode2)
	if err != nil {
		return fmt.Errorf("issuing credential: %w", err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, e := range db.events {
		if e.VehicleID == v1.ID || e.VehicleID == v2.ID {
			return nil
		}
	}
	now := sq.now().UTC()
	exit := now.Add(-time.Hour)
	closed := &model.AccessEvent{
		ID:           uuid.New(),
		VehicleID:    v1.ID,
		CredentialID: c1.ID,
		EntryTime:    now.Add(-3 * time.Hour),
		ExitTime:     &exit,
	}
	open := &model.AccessEvent{
		ID:           uuid.New(),
		VehicleID:    v2.ID,
		CredentialID: c2.ID,
		EntryTime:    now.Add(-5 * time.Hour),
	}
	db.events = append(db.events, closed, open)
	db.open[v2.ID] = open
	return nil
}
