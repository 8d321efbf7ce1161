// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Set groups one instance of each repository which are realized by
// the same adapter, so they can unwrap the Conn and Tx instances of
// one Pool kind. Mixing repositories of distinct adapters in one Set
// causes a panic when they try to unwrap a foreign Conn or Tx.
type Set struct {
	Credentials Credentials
	Vehicles    Vehicles
	Events      Events
	Schema      Schema
}
