// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gateuc

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockTableSerializesOneVehicle(t *testing.T) {
	lt := newLockTable()
	id, other := uuid.New(), uuid.New()
	ctx := context.Background()

	unlock, err := lt.Lock(ctx, id)
	require.NoError(t, err)

	unlockOther, err := lt.Lock(ctx, other)
	require.NoError(t, err, "other vehicles are not blocked")
	unlockOther()

	ctx2, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = lt.Lock(ctx2, id)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	acquired := make(chan struct{})
	go func() {
		u, err := lt.Lock(ctx, id)
		if err == nil {
			u()
		}
		close(acquired)
	}()
	select {
	case <-acquired:
		t.Fatal("lock was acquired twice")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	<-acquired
	assert.Equal(t, 0, lt.size(), "idle locks are dropped")
}
