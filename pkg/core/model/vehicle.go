// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the business-level models, also called entities or domain.
// This layer may not depend on outter layers, while all other layers
// may depend on it.
// By the way, it is acceptable to annotate structs in this package with
// multiple frameworks dependent tags (e.g., as required by ORM
// libraries) since adding more tags does not complicate definition of
// a struct, but can prevent unnecessary structs duplication.
package model

import "github.com/google/uuid"

// Vehicle models a registered vehicle. Vehicles are owned by an
// external registry and the gate and reporting use cases only read
// them by their identifier. The License plate is treated as immutable
// while some credential refers to the vehicle.
type Vehicle struct {
	ID      uuid.UUID `json:"id"`
	License string    `json:"license"`
}

// Credential models a scannable code (e.g., a printed barcode) which
// is bound to exactly one vehicle at a time. A vehicle has at most one
// live credential. Reissuing a credential invalidates the previous code
// immediately, so it no longer resolves.
type Credential struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	VehicleID uuid.UUID `json:"vehicle_id"`
}
