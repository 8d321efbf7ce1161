// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package prom

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/momeni/vehicle-access/pkg/core/cerr"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveToggle(t *testing.T) {
	o := New()
	entry := &model.Toggle{Kind: model.TransitionEntry}
	o.ObserveToggle(entry, false, nil, time.Millisecond)
	o.ObserveToggle(entry, true, nil, time.Millisecond)
	o.ObserveToggle(nil, false, cerr.NotFound(errors.New("x")), time.Millisecond)
	o.ObserveToggle(nil, false, cerr.Conflict(errors.New("x")), time.Millisecond)
	o.ObserveToggle(nil, false, errors.New("db down"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(o.toggles.WithLabelValues("entry", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.toggles.WithLabelValues("entry", OutcomeReplayed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.toggles.WithLabelValues("none", OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.toggles.WithLabelValues("none", OutcomeConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.toggles.WithLabelValues("none", OutcomeError)))
}

func TestObserveDashboardAndServe(t *testing.T) {
	o := New()
	o.ObserveDashboard(&model.Dashboard{Inside: 3}, nil, time.Millisecond)
	o.ObserveDashboard(nil, errors.New("x"), time.Millisecond)
	assert.Equal(t, 3.0, testutil.ToFloat64(o.inside))

	rec := httptest.NewRecorder()
	o.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "vaweb_vehicles_inside 3"))
}
