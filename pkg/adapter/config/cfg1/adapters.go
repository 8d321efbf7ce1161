// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/momeni/vehicle-access/pkg/adapter/dedup/memdedup"
	"github.com/momeni/vehicle-access/pkg/adapter/dedup/redisdedup"
	"github.com/momeni/vehicle-access/pkg/adapter/metrics/prom"
	"github.com/momeni/vehicle-access/pkg/adapter/mqtt/scanner"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
	"github.com/momeni/vehicle-access/pkg/core/usecase/gateuc"
	"github.com/momeni/vehicle-access/pkg/core/usecase/reportuc"
)

// Adapters holds the long-lived adapter instances which are created
// based on a Config and shared by the use cases. It realizes the
// appuc.Builder interface.
type Adapters struct {
	cfg *Config

	Pool    Pool
	Repos   repo.Set
	Dedup   repo.Deduplicator // nil if de-duplication is disabled
	Metrics *prom.Observer    // nil if metrics are disabled

	closers []func() error
}

// NewAdapters connects to the database (using the r role) and to the
// optional Redis server, and creates the metrics observer if enabled.
// The returned Adapters must be closed by the caller.
func (c *Config) NewAdapters(ctx context.Context, r repo.Role) (a *Adapters, err error) {
	a = &Adapters{cfg: c, Repos: c.Database.Repositories()}
	defer func() {
		if err != nil {
			_ = a.Close()
			a = nil
		}
	}()
	a.Pool, err = c.Database.ConnectionPool(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	a.closers = append(a.closers, a.Pool.Close)
	if c.Usecases.Gate.DedupTTL != nil {
		if c.Redis.URL == "" {
			a.Dedup = memdedup.New(nil)
		} else {
			rd, err := redisdedup.New(ctx, c.Redis.URL)
			if err != nil {
				return nil, fmt.Errorf("creating redis deduplicator: %w", err)
			}
			a.closers = append(a.closers, rd.Close)
			a.Dedup = rd
		}
	}
	if *c.Metrics.Enabled {
		a.Metrics = prom.New()
	}
	return a, nil
}

// Close releases the adapters in the reverse order of their creation.
func (a *Adapters) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// MetricsHandler returns the Prometheus handler and its path, or a nil
// handler if metrics are disabled.
func (a *Adapters) MetricsHandler() (http.Handler, string) {
	if a.Metrics == nil {
		return nil, ""
	}
	return a.Metrics.Handler(), a.cfg.Metrics.Path
}

// NewGateUseCase instantiates a gate use case based on the settings
// and with the shared deduplicator and metrics observer.
func (a *Adapters) NewGateUseCase(p repo.Pool, rs repo.Set) (*gateuc.UseCase, error) {
	opts := make([]gateuc.Option, 0, 2)
	if ttl := a.cfg.Usecases.Gate.DedupTTL; ttl != nil && a.Dedup != nil {
		opts = append(opts, gateuc.WithDeduplicator(
			a.Dedup, time.Duration(*ttl),
		))
	}
	if a.Metrics != nil {
		opts = append(opts, gateuc.WithObserver(a.Metrics))
	}
	return gateuc.New(p, rs.Credentials, rs.Vehicles, rs.Events, opts...)
}

// NewReportsUseCase instantiates a reports use case based on the
// settings.
func (a *Adapters) NewReportsUseCase(p repo.Pool, rs repo.Set) (*reportuc.UseCase, error) {
	opts := []reportuc.Option{
		reportuc.WithDefaultWindowDays(*a.cfg.Usecases.Reports.DefaultWindowDays),
	}
	if a.Metrics != nil {
		opts = append(opts, reportuc.WithObserver(a.Metrics))
	}
	return reportuc.New(p, rs.Events, opts...)
}

// VisibleSettings reports the settings which are in effect.
func (a *Adapters) VisibleSettings() *model.VisibleSettings {
	c := a.cfg
	vs := &model.VisibleSettings{
		ImmutableSettings: &model.ImmutableSettings{
			Logger:  *c.Gin.Logger,
			Metrics: *c.Metrics.Enabled,
		},
	}
	if ttl := c.Usecases.Gate.DedupTTL; ttl != nil {
		d := time.Duration(*ttl)
		vs.Gate.DedupTTL = &d
	}
	vs.Reports.DefaultWindowDays = *c.Usecases.Reports.DefaultWindowDays
	return vs
}

// NewScanner creates the MQTT scanner of gate readers, or returns nil
// if no broker is configured.
func (a *Adapters) NewScanner(t scanner.Toggler) *scanner.Scanner {
	m := a.cfg.MQTT
	if m.Broker == "" {
		return nil
	}
	return scanner.New(scanner.Config{
		Broker:      m.Broker,
		ClientID:    m.ClientID,
		TopicPrefix: m.TopicPrefix,
		QoS:         m.QoS,
	}, t)
}
