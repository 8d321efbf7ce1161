// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"

	"github.com/momeni/vehicle-access/pkg/core/model"
)

// Deduplicator remembers the outcome of gate toggles by their client
// supplied request ids for a limited time. A client which retries a
// scan request (e.g., after a timeout) with the same request id gets
// the remembered outcome instead of toggling the vehicle state again.
//
// Unlike other repositories, a Deduplicator does not need a database
// connection since it is usually backed by a cache (or the memory).
type Deduplicator interface {
	// Recall returns the toggle outcome which was remembered for the
	// requestID. If nothing is remembered (or it is expired), an error
	// wrapping ErrNotFound is returned.
	Recall(ctx context.Context, requestID string) (*model.Toggle, error)

	// Remember keeps t for the requestID at least until ttl elapses.
	Remember(
		ctx context.Context,
		requestID string,
		t *model.Toggle,
		ttl time.Duration,
	) error
}
