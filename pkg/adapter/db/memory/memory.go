// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memory realizes the repo.Pool and all repositories by keeping
// vehicles, credentials, and access events in a DB struct. It is used
// for running the web server without a PostgreSQL server and by the
// use cases tests.
//
// Similar to the access_events_one_open index of the PostgreSQL schema,
// a DB rejects a second open event for one vehicle with a
// repo.ErrConflict error. However, FindOpen does not lock anything, so
// the read-modify-write sequence of a toggle is only safe when callers
// serialize it per vehicle themselves.
package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
)

// DB holds the stored records. Its zero value is not usable, use NewDB.
type DB struct {
	mu sync.Mutex

	vehicles    map[uuid.UUID]model.Vehicle
	credentials map[string]model.Credential // by code
	events      []*model.AccessEvent        // by insertion order
	open        map[uuid.UUID]*model.AccessEvent
}

// NewDB creates an empty DB.
func NewDB() *DB {
	return &DB{
		vehicles:    make(map[uuid.UUID]model.Vehicle),
		credentials: make(map[string]model.Credential),
		open:        make(map[uuid.UUID]*model.AccessEvent),
	}
}

// AddVehicle registers a vehicle with the license plate. If a vehicle
// has the same license already, it is returned instead.
func (db *DB) AddVehicle(license string) model.Vehicle {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, v := range db.vehicles {
		if v.License == license {
			return v
		}
	}
	v := model.Vehicle{ID: uuid.New(), License: license}
	db.vehicles[v.ID] = v
	return v
}

// RemoveVehicle deregisters the vehicleID vehicle and removes its
// events. Credentials of the vehicle are kept, so they may be used to
// simulate a dangling credential.
func (db *DB) RemoveVehicle(vehicleID uuid.UUID) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.vehicles, vehicleID)
	delete(db.open, vehicleID)
	db.events = slices.DeleteFunc(db.events, func(e *model.AccessEvent) bool {
		return e.VehicleID == vehicleID
	})
}

// IssueCredential binds code to the vehicleID vehicle. The previous
// credential of that vehicle (if any) is revoked immediately, so its
// code does not resolve anymore. A code which belongs to another
// vehicle may not be reused.
func (db *DB) IssueCredential(vehicleID uuid.UUID, code string) (model.Credential, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.vehicles[vehicleID]; !ok {
		return model.Credential{}, fmt.Errorf(
			"vehicle %s: %w", vehicleID, repo.ErrNotFound,
		)
	}
	if c, ok := db.credentials[code]; ok && c.VehicleID != vehicleID {
		return model.Credential{}, fmt.Errorf(
			"code %q: %w", code, repo.ErrConflict,
		)
	}
	for k, c := range db.credentials {
		if c.VehicleID == vehicleID {
			delete(db.credentials, k)
		}
	}
	c := model.Credential{ID: uuid.New(), Code: code, VehicleID: vehicleID}
	db.credentials[code] = c
	return c, nil
}

// Events returns a copy of all events in their insertion order.
func (db *DB) Events() []model.AccessEvent {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]model.AccessEvent, 0, len(db.events))
	for _, e := range db.events {
		out = append(out, db.annotated(e))
	}
	return out
}

// annotated copies e and fills its License. Caller must hold db.mu.
func (db *DB) annotated(e *model.AccessEvent) model.AccessEvent {
	c := *e
	if e.ExitTime != nil {
		t := *e.ExitTime
		c.ExitTime = &t
	}
	c.License = db.vehicles[e.VehicleID].License
	return c
}
