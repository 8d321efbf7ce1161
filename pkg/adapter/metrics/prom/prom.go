// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package prom observes the gate and reports use cases with Prometheus
// collectors and exposes them over HTTP.
package prom

import (
	"errors"
	"net/http"
	"time"

	"github.com/momeni/vehicle-access/pkg/core/cerr"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values of the toggles counter.
const (
	OutcomeOK         = "ok"
	OutcomeReplayed   = "replayed"
	OutcomeBadRequest = "bad_request"
	OutcomeNotFound   = "not_found"
	OutcomeConflict   = "conflict"
	OutcomeError      = "error"
)

// Observer implements gateuc.Observer and reportuc.Observer.
type Observer struct {
	reg        *prometheus.Registry
	toggles    *prometheus.CounterVec
	toggleTime *prometheus.HistogramVec
	dashTime   prometheus.Histogram
	inside     prometheus.Gauge
}

// New creates an Observer with its own registry, so several instances
// (e.g., in tests) do not collide.
func New() *Observer {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Observer{
		reg: reg,
		toggles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vaweb_gate_toggles_total",
			Help: "Total number of scans by transition kind and outcome.",
		}, []string{"kind", "outcome"}),
		toggleTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vaweb_gate_toggle_seconds",
			Help:    "Time taken to process a scan.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		dashTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaweb_dashboard_seconds",
			Help:    "Time taken to compute a dashboard.",
			Buckets: prometheus.DefBuckets,
		}),
		inside: f.NewGauge(prometheus.GaugeOpts{
			Name: "vaweb_vehicles_inside",
			Help: "Vehicles inside as of the last computed dashboard.",
		}),
	}
}

func (o *Observer) ObserveToggle(t *model.Toggle, replayed bool, err error, elapsed time.Duration) {
	kind := "none"
	if t != nil {
		kind = t.Kind.String()
	}
	outcome := outcomeOf(err)
	if err == nil && replayed {
		outcome = OutcomeReplayed
	}
	o.toggles.WithLabelValues(kind, outcome).Inc()
	o.toggleTime.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (o *Observer) ObserveDashboard(d *model.Dashboard, err error, elapsed time.Duration) {
	o.dashTime.Observe(elapsed.Seconds())
	if err == nil && d != nil {
		o.inside.Set(float64(d.Inside))
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var ce *cerr.Error
	if !errors.As(err, &ce) {
		return OutcomeError
	}
	switch ce.HTTPStatusCode {
	case http.StatusBadRequest:
		return OutcomeBadRequest
	case http.StatusNotFound:
		return OutcomeNotFound
	case http.StatusConflict:
		return OutcomeConflict
	default:
		return OutcomeError
	}
}

// Handler returns the HTTP handler which serves the collected metrics.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.reg, promhttp.HandlerOpts{Registry: o.reg})
}
