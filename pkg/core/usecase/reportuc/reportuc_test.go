// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package reportuc_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/momeni/vehicle-access/pkg/adapter/db/memory"
	"github.com/momeni/vehicle-access/pkg/core/cerr"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
	"github.com/momeni/vehicle-access/pkg/core/usecase/reportuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func date(s string) *time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &t
}

// seed creates one event per given entry time. Every event except the
// last one of each vehicle is closed an hour after its entry.
func seed(t *testing.T, db *memory.DB, license string, entries ...time.Time) {
	t.Helper()
	v := db.AddVehicle(license)
	c, err := db.IssueCredential(v.ID, license)
	require.NoError(t, err)
	p := memory.NewPool(db)
	events := memory.Repositories().Events
	err = p.Conn(context.Background(), func(ctx context.Context, conn repo.Conn) error {
		return conn.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := events.Tx(tx)
			for i, at := range entries {
				e, err := q.Create(ctx, v.ID, c.ID, at)
				if err != nil {
					return err
				}
				if i == len(entries)-1 {
					break
				}
				if _, err = q.Close(ctx, e.ID, at.Add(time.Hour)); err != nil {
					return err
				}
			}
			return nil
		})
	})
	require.NoError(t, err)
}

func newUseCase(t *testing.T, db *memory.DB, opts ...reportuc.Option) *reportuc.UseCase {
	t.Helper()
	opts = append(opts, reportuc.WithClock(func() time.Time { return now }))
	uc, err := reportuc.New(
		memory.NewPool(db), memory.Repositories().Events, opts...,
	)
	require.NoError(t, err)
	return uc
}

func TestDashboardDefaultWindow(t *testing.T) {
	db := memory.NewDB()
	seed(t, db, "ABC-1234",
		now.AddDate(0, 0, -10), // out of the default window
		now.AddDate(0, 0, -6),
		now.Add(-2*time.Hour),
	)
	seed(t, db, "XYZ-7890", now.Add(-time.Hour))
	uc := newUseCase(t, db)

	d, err := uc.Dashboard(context.Background(), model.Window{})
	require.NoError(t, err)
	assert.Equal(t, date("2024-03-04"), d.Window.Start)
	assert.Equal(t, date("2024-03-10"), d.Window.End)
	assert.Equal(t, 3, d.Report.Total)
	assert.Equal(t, 2, d.Today)
	assert.Equal(t, 2, d.Inside)
	require.NotNil(t, d.Report.LastAccess)
	assert.Equal(t, "XYZ-7890", d.Report.LastAccess.License)
	assert.Equal(t, model.LastAccessEntry, d.Report.LastAccess.Kind)
}

func TestDashboardExplicitWindow(t *testing.T) {
	db := memory.NewDB()
	seed(t, db, "ABC-1234",
		*date("2024-03-01"),
		date("2024-03-02").Add(23*time.Hour),
		*date("2024-03-03"),
		now,
	)
	uc := newUseCase(t, db, reportuc.WithDefaultWindowDays(1))

	w := model.Window{Start: date("2024-03-01"), End: date("2024-03-02")}
	d, err := uc.Dashboard(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Report.Total, "end date is inclusive")
	assert.Equal(t, []model.DailyCount{
		{Date: "2024-03-01", Count: 1},
		{Date: "2024-03-02", Count: 1},
	}, d.Report.DailyCounts)
	assert.Equal(t, 1, d.Today, "today is counted regardless of window")
	assert.Equal(t, 1, d.Inside)

	onlyStart := model.Window{Start: date("2024-03-03")}
	d, err = uc.Dashboard(context.Background(), onlyStart)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Report.Total)
}

func TestDashboardRejectsInvertedWindow(t *testing.T) {
	uc := newUseCase(t, memory.NewDB())
	w := model.Window{Start: date("2024-03-05"), End: date("2024-03-01")}
	_, err := uc.Dashboard(context.Background(), w)
	var ce *cerr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusBadRequest, ce.HTTPStatusCode)

	_, err = uc.ListEvents(context.Background(), w)
	assert.Error(t, err)
}

func TestListEvents(t *testing.T) {
	db := memory.NewDB()
	seed(t, db, "ABC-1234", *date("2024-03-01"), *date("2024-03-05"))
	uc := newUseCase(t, db)

	all, err := uc.ListEvents(context.Background(), model.Window{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, *date("2024-03-05"), all[0].EntryTime, "newest first")

	some, err := uc.ListEvents(context.Background(), model.Window{
		End: date("2024-03-04"),
	})
	require.NoError(t, err)
	assert.Len(t, some, 1)
}

func TestEmptyDashboard(t *testing.T) {
	uc := newUseCase(t, memory.NewDB())
	d, err := uc.Dashboard(context.Background(), model.Window{})
	require.NoError(t, err)
	assert.Zero(t, d.Report.Total)
	assert.Empty(t, d.Report.DailyCounts)
	assert.Empty(t, d.Report.Distribution)
	assert.Nil(t, d.Report.LastAccess)
	assert.Zero(t, d.Report.Heatmap.MaxValue)
}
