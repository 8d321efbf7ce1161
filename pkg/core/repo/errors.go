// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "errors"

// Repositories wrap these errors, so use cases may distinguish the
// storage outcomes without depending on a specific database driver.
var (
	// ErrNotFound indicates that no row matched the given key.
	ErrNotFound = errors.New("no matching record")

	// ErrConflict indicates that a statement was rejected because of
	// a concurrent modification, e.g., a unique constraint violation,
	// a serialization failure, or a detected deadlock.
	ErrConflict = errors.New("conflicting concurrent modification")
)
