// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memdedup_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/vehicle-access/pkg/adapter/dedup/memdedup"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecallUntilExpiry(t *testing.T) {
	now := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	d := memdedup.New(func() time.Time { return now })
	ctx := context.Background()
	tg := &model.Toggle{
		Event: model.AccessEvent{ID: uuid.New(), EntryTime: now},
		Kind:  model.TransitionEntry,
	}

	_, err := d.Recall(ctx, "r1")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	require.NoError(t, d.Remember(ctx, "r1", tg, time.Minute))
	tg.Kind = model.TransitionExit // stored value is a copy
	got, err := d.Recall(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, model.TransitionEntry, got.Kind)
	assert.Equal(t, tg.Event.ID, got.Event.ID)

	now = now.Add(time.Minute)
	_, err = d.Recall(ctx, "r1")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	require.NoError(t, d.Remember(ctx, "r2", tg, time.Minute))
	assert.Equal(t, 1, d.Len(), "expired entries are dropped")
}
