// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"
	"time"

	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) *time.Time {
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func TestWindowContains(t *testing.T) {
	w := model.Window{Start: date(t, "2024-01-01"), End: date(t, "2024-01-03")}
	for _, tc := range []struct {
		at   string
		want bool
	}{
		{"2023-12-31T23:59:59Z", false},
		{"2024-01-01T00:00:00Z", true},
		{"2024-01-03T23:59:59Z", true},
		{"2024-01-04T00:00:00Z", false},
		{"2024-01-04T02:00:00+03:00", true},
	} {
		at, err := time.Parse(time.RFC3339, tc.at)
		require.NoError(t, err)
		assert.Equal(t, tc.want, w.Contains(at), tc.at)
	}
	assert.True(t, model.Window{}.Contains(time.Now()))
	assert.True(t, model.Window{}.IsZero())
}

func TestWindowSingleBound(t *testing.T) {
	from, until := model.Window{End: date(t, "2024-01-03")}.Bounds()
	assert.Nil(t, from)
	require.NotNil(t, until)
	assert.Equal(t, "2024-01-04", until.Format(model.DateLayout))

	from, until = model.Window{Start: date(t, "2024-01-03")}.Bounds()
	assert.Nil(t, until)
	require.NotNil(t, from)
	assert.Equal(t, "2024-01-03", from.Format(model.DateLayout))
}

func TestWindowValidate(t *testing.T) {
	same := date(t, "2024-01-02")
	assert.NoError(t, model.Window{Start: same, End: same}.Validate())
	w := model.Window{Start: date(t, "2024-01-03"), End: date(t, "2024-01-02")}
	assert.ErrorContains(t, w.Validate(), "is after end date")

	_, err := model.ParseDate("2024-02-30")
	assert.Error(t, err)
}

func TestTransitionText(t *testing.T) {
	for _, k := range []model.Transition{model.TransitionEntry, model.TransitionExit} {
		b, err := k.MarshalText()
		require.NoError(t, err)
		var got model.Transition
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, k, got)
	}
	_, err := model.TransitionInvalid.MarshalText()
	assert.ErrorAs(t, err, new(model.TransitionError))
	var k model.Transition
	assert.ErrorIs(t, k.UnmarshalText([]byte("sideways")), model.ErrUnknownTransition)
	assert.Panics(t, func() { _ = model.TransitionInvalid.String() })
}

func TestLastAccessKindText(t *testing.T) {
	for _, k := range []model.LastAccessKind{
		model.LastAccessEntry, model.LastAccessExitRegistered,
	} {
		b, err := k.MarshalText()
		require.NoError(t, err)
		var got model.LastAccessKind
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, k, got)
	}
	var k model.LastAccessKind
	assert.ErrorIs(t, k.UnmarshalText([]byte("parked")), model.ErrUnknownLastAccessKind)
}
