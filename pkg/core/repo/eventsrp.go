// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/vehicle-access/pkg/core/model"
)

// EventsConnQueryer lists the event store operations which may be
// performed with a connection. Reports only need read accesses.
type EventsConnQueryer interface {
	EventsQueryer
}

// EventsTxQueryer lists the event store operations which may be
// performed within a transaction. The read-modify-write sequence of a
// gate toggle is only offered for transactions, so the open event row
// can be locked until the transaction ends.
type EventsTxQueryer interface {
	EventsQueryer

	// FindOpen returns the event of the vehicleID which has no exit
	// time yet, locking it for update until the end of transaction.
	// If the vehicle is outside, an error wrapping ErrNotFound is
	// returned.
	FindOpen(
		ctx context.Context, vehicleID uuid.UUID,
	) (*model.AccessEvent, error)

	// Create inserts an open event for the vehicleID which is entered
	// using the credentialID at the entryTime. The storage rejects a
	// second open event for the same vehicle with ErrConflict.
	Create(
		ctx context.Context,
		vehicleID, credentialID uuid.UUID,
		entryTime time.Time,
	) (*model.AccessEvent, error)

	// Close sets the exit time of the eventID event, if it is open.
	// Closing a missing or already closed event returns an error
	// wrapping ErrNotFound since exit times may not be overwritten.
	Close(
		ctx context.Context, eventID uuid.UUID, exitTime time.Time,
	) (*model.AccessEvent, error)
}

// EventsQueryer lists the event store read operations.
type EventsQueryer interface {
	// Query returns events with entry time in the [from, until) range,
	// ordered by their entry time descendingly. Nil bounds are not
	// applied. Returned events have their License field filled.
	Query(
		ctx context.Context, from, until *time.Time,
	) ([]model.AccessEvent, error)

	// CountOpen returns the number of events without an exit time,
	// i.e., the number of vehicles which are currently inside.
	CountOpen(ctx context.Context) (int, error)
}

// Events is the access events store repository.
type Events interface {
	Conn(Conn) EventsConnQueryer
	Tx(Tx) EventsTxQueryer
}
