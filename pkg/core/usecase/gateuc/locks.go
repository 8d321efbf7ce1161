// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gateuc

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// lockTable holds one mutex per vehicle which has an in-flight toggle.
// Entries are reference counted and dropped when their last holder or
// waiter leaves, so the table does not grow with the fleet size.
type lockTable struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*vehicleLock
}

type vehicleLock struct {
	ch   chan struct{} // holds a token while the lock is taken
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[uuid.UUID]*vehicleLock)}
}

// Lock blocks until the id lock is acquired or ctx is done.
// The returned function releases the lock and must be called exactly
// once if err is nil.
func (lt *lockTable) Lock(ctx context.Context, id uuid.UUID) (unlock func(), err error) {
	lt.mu.Lock()
	l, ok := lt.locks[id]
	if !ok {
		l = &vehicleLock{ch: make(chan struct{}, 1)}
		lt.locks[id] = l
	}
	l.refs++
	lt.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() {
			<-l.ch
			lt.release(id, l)
		}, nil
	case <-ctx.Done():
		lt.release(id, l)
		return nil, ctx.Err()
	}
}

func (lt *lockTable) release(id uuid.UUID, l *vehicleLock) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(lt.locks, id)
	}
}

// size returns the number of vehicles with a holder or waiter.
func (lt *lockTable) size() int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return len(lt.locks)
}
