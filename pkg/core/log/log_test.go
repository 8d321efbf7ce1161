// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/momeni/vehicle-access/pkg/core/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		AddSource: true,
	})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

func TestContextAttrsAreLogged(t *testing.T) {
	buf := captureDefault(t)
	ctx := log.With(context.Background(), slog.String("gate", "north"))
	ctx = log.With(ctx, slog.String("request_id", "r1"))
	log.Info(ctx, "vehicle toggled", slog.String("kind", "entry"))

	rec := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "vehicle toggled", rec["msg"])
	assert.Equal(t, "entry", rec["kind"])
	assert.Equal(t, "north", rec["gate"])
	assert.Equal(t, "r1", rec["request_id"])
	src, ok := rec["source"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, src["file"], "log_test.go", "caller is reported")
}

func TestWithDoesNotLeakToParent(t *testing.T) {
	buf := captureDefault(t)
	parent := log.With(context.Background(), slog.String("gate", "north"))
	_ = log.With(parent, slog.String("request_id", "r1"))
	log.Debug(parent, "hidden at the default level")
	log.Warn(parent, "scan ignored")

	rec := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "north", rec["gate"])
	assert.NotContains(t, rec, "request_id")
	assert.Equal(t, parent, log.With(parent))
}
