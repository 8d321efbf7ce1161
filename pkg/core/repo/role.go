// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Role is a string specifying a database connection role. Each role
// has a set of granted privileges which indicates which operations
// may be performed after using it for connecting to a database.
//
// The database configuration needs one Role instance in order to find
// its password in the passwords file and connect to the database.
type Role string

// These constants specify the expected database roles. They must be
// created manually (with their passwords recorded in the pass file).
const (
	// AdminRole is the role which owns the schema and may create the
	// tables. It is used by the db init-dev and init-prod commands.
	AdminRole Role = "admin"

	// NormalRole is a normal (unprivilged) role which is used by the
	// web server for all gate and reporting operations.
	NormalRole Role = "vaweb"
)
