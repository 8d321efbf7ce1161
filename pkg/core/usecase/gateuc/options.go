// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gateuc

import (
	"errors"
	"fmt"
	"time"

	"github.com/momeni/vehicle-access/pkg/core/repo"
)

// Option is a functional option for the gate use case.
type Option func(uc *UseCase) error

// WithClock replaces time.Now as the source of entry and exit times.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		uc.now = now
		return nil
	}
}

// WithDeduplicator option makes scans which carry a request id
// idempotent for the ttl duration. A repeated request id returns the
// stored toggle result instead of toggling the vehicle again.
func WithDeduplicator(d repo.Deduplicator, ttl time.Duration) Option {
	return func(uc *UseCase) error {
		if d == nil {
			return errors.New("deduplicator is nil")
		}
		if ttl <= 0 {
			return fmt.Errorf("dedup ttl (%v) is not positive", ttl)
		}
		if uc.dedup != nil {
			return errors.New("deduplicator is already configured")
		}
		uc.dedup, uc.dedupTTL = d, ttl
		return nil
	}
}

// WithObserver option reports the outcome of every toggle to o.
func WithObserver(o Observer) Option {
	return func(uc *UseCase) error {
		if o == nil {
			return errors.New("observer is nil")
		}
		uc.observers = append(uc.observers, o)
		return nil
	}
}
