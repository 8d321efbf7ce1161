// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/google/uuid"
)

// AccessEvent represents one physical presence interval of a vehicle.
// It is opened by an entry scan and closed by the next exit scan.
//
// For any vehicle, at most one AccessEvent with a nil ExitTime may
// exist at any instant. The ExitTime, once set, is not before the
// EntryTime and is never reset to nil.
type AccessEvent struct {
	ID           uuid.UUID  `json:"id"`
	VehicleID    uuid.UUID  `json:"vehicle_id"`
	CredentialID uuid.UUID  `json:"credential_id"`
	EntryTime    time.Time  `json:"entry_time"`
	ExitTime     *time.Time `json:"exit_time"`

	// License is the plate of VehicleID as known when the event was
	// read. It is not stored with the event; repositories fill it by
	// joining the vehicles table, so reports can label vehicles.
	License string `json:"license,omitempty"`
}

// IsOpen reports whether the vehicle is still inside, i.e., the event
// has no exit time yet.
func (e *AccessEvent) IsOpen() bool {
	return e.ExitTime == nil
}

// Toggle is the outcome of one gate scan: the created or closed
// AccessEvent and whether that was an entry or an exit.
type Toggle struct {
	Event AccessEvent `json:"event"`
	Kind  Transition  `json:"kind"`
}
