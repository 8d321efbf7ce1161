// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package reportuc contains the reports UseCase which reads access
// events from the repository and summarizes them for the dashboard.
package reportuc

import (
	"context"
	"fmt"
	"time"

	"github.com/momeni/vehicle-access/pkg/core/analytics"
	"github.com/momeni/vehicle-access/pkg/core/cerr"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
)

// DefaultWindowDays is used when WithDefaultWindowDays is not given.
const DefaultWindowDays = 7

// Observer is notified after each Dashboard call.
type Observer interface {
	ObserveDashboard(d *model.Dashboard, err error, elapsed time.Duration)
}

// UseCase represents the reports use case.
type UseCase struct {
	pool   repo.Pool
	events repo.Events

	now         func() time.Time
	defaultDays int
	observers   []Observer
}

// New instantiates a reports use case.
func New(p repo.Pool, e repo.Events, opts ...Option) (*UseCase, error) {
	uc := &UseCase{pool: p, events: e}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.defaultDays == 0 {
		uc.defaultDays = DefaultWindowDays
	}
	return uc, nil
}

// DefaultWindow returns the window of the last default window days,
// ending with today (as of now).
func (uc *UseCase) DefaultWindow() model.Window {
	end := model.Day(uc.now())
	start := end.AddDate(0, 0, 1-uc.defaultDays)
	return model.Window{Start: &start, End: &end}
}

// Dashboard use case computes the report of events which have entered
// in the w window, together with the number of vehicles which are
// inside and the number of entries of today. If w has no bounds, the
// DefaultWindow is used. A window which starts after its end is
// rejected as a bad request.
func (uc *UseCase) Dashboard(ctx context.Context, w model.Window) (d *model.Dashboard, err error) {
	start := time.Now()
	defer func() {
		for _, o := range uc.observers {
			o.ObserveDashboard(d, err, time.Since(start))
		}
	}()
	if err := w.Validate(); err != nil {
		return nil, cerr.BadRequest(err)
	}
	if w.IsZero() {
		w = uc.DefaultWindow()
	}
	now := uc.now()
	d = &model.Dashboard{Window: w}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := uc.events.Tx(tx)
			from, until := w.Bounds()
			events, err := q.Query(ctx, from, until)
			if err != nil {
				return fmt.Errorf("querying events: %w", err)
			}
			d.Report = analytics.Summarize(events, w)
			if w.Contains(now) {
				d.Today = analytics.CountOnDate(events, now)
			} else {
				today := model.Day(now)
				tomorrow := today.AddDate(0, 0, 1)
				todays, err := q.Query(ctx, &today, &tomorrow)
				if err != nil {
					return fmt.Errorf("querying today events: %w", err)
				}
				d.Today = len(todays)
			}
			d.Inside, err = q.CountOpen(ctx)
			if err != nil {
				return fmt.Errorf("counting open events: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListEvents use case returns the events which have entered in the w
// window, newest first. Unlike Dashboard, a window without bounds
// lists all events.
func (uc *UseCase) ListEvents(ctx context.Context, w model.Window) (events []model.AccessEvent, err error) {
	if err := w.Validate(); err != nil {
		return nil, cerr.BadRequest(err)
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		from, until := w.Bounds()
		events, err = uc.events.Conn(c).Query(ctx, from, until)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	return events, nil
}
