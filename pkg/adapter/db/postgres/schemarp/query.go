// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres"
)

// tablesDDL creates the v1.0.0 tables. The credential_id column is not
// a foreign key because reissuing a credential deletes the old code
// while its events must be kept.
// The access_events_one_open partial unique index is the storage-level
// backstop for having at most one open event per vehicle.
const tablesDDL = `
CREATE TABLE IF NOT EXISTS vehicles (
    id      UUID PRIMARY KEY,
    license TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS credentials (
    id         UUID PRIMARY KEY,
    code       TEXT NOT NULL UNIQUE,
    vehicle_id UUID NOT NULL UNIQUE
        REFERENCES vehicles(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS access_events (
    id            UUID PRIMARY KEY,
    vehicle_id    UUID NOT NULL
        REFERENCES vehicles(id) ON DELETE CASCADE,
    credential_id UUID NOT NULL,
    entry_time    TIMESTAMPTZ NOT NULL,
    exit_time     TIMESTAMPTZ,
    CONSTRAINT access_events_exit_after_entry
        CHECK (exit_time IS NULL OR exit_time >= entry_time)
);
CREATE UNIQUE INDEX IF NOT EXISTS access_events_one_open
    ON access_events(vehicle_id) WHERE exit_time IS NULL;
CREATE INDEX IF NOT EXISTS access_events_entry_time
    ON access_events(entry_time DESC);
`

// CreateTables creates the vehicles, credentials, and access_events
// tables and their indices if they do not exist.
func CreateTables(ctx context.Context, tx *postgres.Tx) error {
	if _, err := tx.Exec(ctx, tablesDDL); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// These licenses and the DevCode and DevCode2 credentials (of the first
// two vehicles) are inserted by the InitDevData. Development
// environment gates may scan them.
const (
	DevCode  = "VEHICLE1BARCODE"
	DevCode2 = "VEHICLE2BARCODE"

	devLicense1 = "ABC-1234"
	devLicense2 = "XYZ-7890"
	devLicense3 = "QWE-5678"
)

// InitDevData inserts three vehicles, one credential for each of the
// first two vehicles, and two events relative to the now time. The
// first vehicle has entered three hours ago and exited an hour ago,
// and the second one has entered five hours ago and is still inside.
// Each event refers to the credential of its own vehicle.
// Calling it again leaves existing vehicles and credentials intact,
// but events are only inserted if the vehicles had no events.
func InitDevData(ctx context.Context, tx *postgres.Tx, now time.Time) error {
	ids := make([]uuid.UUID, 0, 3)
	for _, l := range []string{devLicense1, devLicense2, devLicense3} {
		id, err := upsertVehicle(ctx, tx, l)
		if err != nil {
			return fmt.Errorf("inserting vehicle %q: %w", l, err)
		}
		ids = append(ids, id)
	}
	credIDs := make([]uuid.UUID, 0, 2)
	for i, code := range []string{DevCode, DevCode2} {
		id, err := upsertCredential(ctx, tx, code, ids[i])
		if err != nil {
			return fmt.Errorf("inserting credential %q: %w", code, err)
		}
		credIDs = append(credIDs, id)
	}
	var n int64
	err := tx.GORM(ctx).Raw(
		`SELECT count(*) FROM access_events
WHERE vehicle_id IN (?, ?)`, ids[0], ids[1],
	).Row().Scan(&n)
	if err != nil {
		return fmt.Errorf("counting events: %w", err)
	}
	if n > 0 {
		return nil
	}
	now = now.UTC()
	_, err = tx.Exec(
		ctx,
		`INSERT INTO access_events(
    id, vehicle_id, credential_id, entry_time, exit_time
) VALUES ($1, $2, $3, $4, $5), ($6, $7, $8, $9, NULL)`,
		uuid.New(), ids[0], credIDs[0],
		now.Add(-3*time.Hour), now.Add(-time.Hour),
		uuid.New(), ids[1], credIDs[1], now.Add(-5*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("inserting events: %w", err)
	}
	return nil
}

func upsertVehicle(ctx context.Context, tx *postgres.Tx, license string) (uuid.UUID, error) {
	_, err := tx.Exec(
		ctx,
		`INSERT INTO vehicles(id, license) VALUES ($1, $2)
ON CONFLICT (license) DO NOTHING`,
		uuid.New(), license,
	)
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err = tx.GORM(ctx).Raw(
		"SELECT id FROM vehicles WHERE license = ?", license,
	).Row().Scan(&id)
	return id, err
}

func upsertCredential(ctx context.Context, tx *postgres.Tx, code string, vehicleID uuid.UUID) (uuid.UUID, error) {
	_, err := tx.Exec(
		ctx,
		`INSERT INTO credentials(id, code, vehicle_id)
VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		uuid.New(), code, vehicleID,
	)
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err = tx.GORM(ctx).Raw(
		"SELECT id FROM credentials WHERE code = ?", code,
	).Row().Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("querying credential: %w", err)
	}
	return id, nil
}
