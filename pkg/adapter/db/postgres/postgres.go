// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres realizes the repo.Pool, repo.Conn, and repo.Tx
// interfaces on top of GORM and the pgx PostgreSQL driver. Repository
// packages (e.g., eventsrp) unwrap the Conn and Tx instances which are
// created here in order to run their queries using GORM.
package postgres

import "github.com/momeni/vehicle-access/pkg/core/model"

// These constants represent the major, minor, and patch components of
// the current database schema semantic version. The schemarp package
// creates tables of this version.
const (
	Major = 1 // latest supported schema major version
	Minor = 0 // latest schema minor version in Major series
	Patch = 0 // latest schema patch version in Minor series
)

// Version is the latest supported database schema semantic version.
var Version = model.SemVer{Major, Minor, Patch}
