// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memdedup realizes the repo.Deduplicator interface by keeping
// the recent scan results in the process memory. It is suitable for a
// single server instance. Expired entries are dropped lazily during
// the Remember calls.
package memdedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
)

type entry struct {
	toggle  model.Toggle
	expires time.Time
}

// Deduplicator is an in-memory repo.Deduplicator.
type Deduplicator struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty Deduplicator. The now function may be nil in
// order to use time.Now.
func New(now func() time.Time) *Deduplicator {
	if now == nil {
		now = time.Now
	}
	return &Deduplicator{entries: make(map[string]entry), now: now}
}

func (d *Deduplicator) Recall(ctx context.Context, requestID string) (*model.Toggle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[requestID]
	if !ok || !d.now().Before(e.expires) {
		return nil, fmt.Errorf("request %q: %w", requestID, repo.ErrNotFound)
	}
	t := e.toggle
	return &t, nil
}

func (d *Deduplicator) Remember(ctx context.Context, requestID string, t *model.Toggle, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	for k, e := range d.entries {
		if !now.Before(e.expires) {
			delete(d.entries, k)
		}
	}
	d.entries[requestID] = entry{toggle: *t, expires: now.Add(ttl)}
	return nil
}

// Len returns the number of entries, including the expired ones which
// are not dropped yet.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
