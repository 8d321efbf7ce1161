// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/momeni/vehicle-access/pkg/adapter/config/cfg1"
	"github.com/momeni/vehicle-access/pkg/adapter/db/memory"
	"github.com/momeni/vehicle-access/pkg/adapter/restful/gin"
	"github.com/momeni/vehicle-access/pkg/adapter/restful/gin/routes"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
	"github.com/momeni/vehicle-access/pkg/core/usecase/appuc"
	"github.com/momeni/vehicle-access/pkg/core/usecase/initdbuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const testConfig = `
database:
  driver: memory
usecases:
  gate:
    dedup-ttl: 5m
metrics:
  enabled: true
  path: /metrics
versions:
  database: 1.0.0
  config: 1.0.0
`

type GinTestSuite struct {
	suite.Suite

	Ctx      context.Context
	Adapters *cfg1.Adapters
	Gin      *gin.Engine
}

func TestGinTestSuite(t *testing.T) {
	suite.Run(t, &GinTestSuite{Ctx: context.Background()})
}

// SetupTest creates a fresh in-memory database for each test, so
// tests may toggle vehicles independently.
func (gts *GinTestSuite) SetupTest() {
	c, err := cfg1.Load([]byte(testConfig))
	gts.Require().NoError(err, "failed to load the test config")
	gts.Adapters, err = c.NewAdapters(gts.Ctx, repo.NormalRole)
	gts.Require().NoError(err, "failed to create adapters")
	err = initdbuc.New(gts.Adapters.Pool, gts.Adapters.Repos.Schema).
		InitDev(gts.Ctx)
	gts.Require().NoError(err, "failed to seed the dev data")
	app, err := appuc.New(gts.Adapters, gts.Adapters.Pool, gts.Adapters.Repos)
	gts.Require().NoError(err, "failed to create app use case")

	gts.Gin = gin.New(gin.Recovery())
	gts.Require().NotNil(gts.Gin, "cannot instantiate Gin engine")
	h, path := gts.Adapters.MetricsHandler()
	routes.Register(gts.Gin, app, h, path)
}

func (gts *GinTestSuite) TearDownTest() {
	gts.NoError(gts.Adapters.Close())
}

func (gts *GinTestSuite) send(
	method, target string, header http.Header, res any,
) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, target, nil)
	gts.Require().NoError(err, "cannot create request")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	gts.Gin.ServeHTTP(w, req)
	if res != nil {
		gts.NoError(json.Unmarshal(w.Body.Bytes(), res), "body is not json")
	}
	return w
}

func (gts *GinTestSuite) scan(code string, header http.Header) (
	*httptest.ResponseRecorder, *model.Toggle,
) {
	t := &model.Toggle{}
	w := gts.send(
		http.MethodPost, routes.Prefix+"/entries/scan/"+code, header, t,
	)
	return w, t
}

func (gts *GinTestSuite) TestScanTogglesVehicle() {
	w, entry := gts.scan(memory.DevCode, nil)
	gts.Equal(http.StatusOK, w.Code)
	gts.Equal(model.TransitionEntry, entry.Kind)
	gts.Equal("ABC-1234", entry.Event.License)
	gts.Nil(entry.Event.ExitTime)

	w, exit := gts.scan(memory.DevCode, nil)
	gts.Equal(http.StatusOK, w.Code)
	gts.Equal(model.TransitionExit, exit.Kind)
	gts.Equal(entry.Event.ID, exit.Event.ID)
	if gts.NotNil(exit.Event.ExitTime) {
		gts.False(exit.Event.ExitTime.Before(exit.Event.EntryTime))
	}
}

func (gts *GinTestSuite) TestScanReplaysRequestID() {
	h := http.Header{}
	h.Set("X-Request-ID", "gate-1/42")
	w, first := gts.scan(memory.DevCode, h)
	gts.Equal(http.StatusOK, w.Code)
	w, again := gts.scan(memory.DevCode, h)
	gts.Equal(http.StatusOK, w.Code)
	gts.Equal(first.Event.ID, again.Event.ID)
	gts.Equal(model.TransitionEntry, again.Kind)

	w, _ = gts.scan(memory.DevCode+"?request_id=other", nil)
	gts.Equal(http.StatusOK, w.Code)
	w, replayed := gts.scan(memory.DevCode+"?request_id=other", nil)
	gts.Equal(http.StatusOK, w.Code)
	gts.Equal(model.TransitionExit, replayed.Kind)
}

func (gts *GinTestSuite) TestScanUnknownCode() {
	res := &struct {
		Detail string
	}{}
	w := gts.send(
		http.MethodPost, routes.Prefix+"/entries/scan/NOPE", nil, res,
	)
	gts.Equal(http.StatusNotFound, w.Code)
	gts.Contains(res.Detail, "credential")
}

func (gts *GinTestSuite) TestBadWindow() {
	for _, tc := range []struct {
		name, query, field string
	}{
		{"bad start", "startDate=yesterday", "StartDate"},
		{"bad end", "endDate=2024-13-01", "EndDate"},
		{"inverted", "startDate=2024-05-02&endDate=2024-05-01", "startDate/endDate"},
	} {
		gts.Run(tc.name, func() {
			for _, path := range []string{"/entries", "/entries/dashboard"} {
				res := map[string][]string{}
				w := gts.send(
					http.MethodGet, routes.Prefix+path+"?"+tc.query,
					nil, &res,
				)
				gts.Equal(http.StatusBadRequest, w.Code, path)
				gts.Len(res[tc.field], 1, path)
			}
		})
	}
}

func (gts *GinTestSuite) TestListEntries() {
	var events []model.AccessEvent
	w := gts.send(http.MethodGet, routes.Prefix+"/entries", nil, &events)
	gts.Equal(http.StatusOK, w.Code)
	gts.Len(events, 2)

	events = nil
	w = gts.send(
		http.MethodGet,
		routes.Prefix+"/entries?startDate=2000-01-01&endDate=2000-01-31",
		nil, &events,
	)
	gts.Equal(http.StatusOK, w.Code)
	gts.Empty(events)
}

func (gts *GinTestSuite) TestDashboard() {
	d := &model.Dashboard{}
	w := gts.send(
		http.MethodGet, routes.Prefix+"/entries/dashboard", nil, d,
	)
	gts.Equal(http.StatusOK, w.Code)
	gts.Equal(1, d.Inside)
	if gts.NotNil(d.Report) {
		gts.Equal(2, d.Report.Total)
		if gts.NotNil(d.Report.LastAccess) {
			gts.Equal(model.LastAccessExitRegistered, d.Report.LastAccess.Kind)
			gts.Equal("ABC-1234", d.Report.LastAccess.License)
		}
	}
	gts.NotNil(d.Window.Start)
	gts.NotNil(d.Window.End)
}

func (gts *GinTestSuite) TestSettings() {
	vs := &model.VisibleSettings{}
	w := gts.send(http.MethodGet, routes.Prefix+"/settings", nil, vs)
	gts.Equal(http.StatusOK, w.Code)
	gts.Equal(7, vs.Reports.DefaultWindowDays)
	gts.NotNil(vs.Gate.DedupTTL)
}

func (gts *GinTestSuite) TestMetrics() {
	gts.scan(memory.DevCode, nil)
	w := gts.send(http.MethodGet, "/metrics", nil, nil)
	gts.Equal(http.StatusOK, w.Code)
	gts.Contains(w.Body.String(), "vaweb_gate_toggles_total")
}

func TestCORS(t *testing.T) {
	e := gin.New(gin.CORS([]string{"http://dash.local"}))
	e.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	for _, tc := range []struct {
		origin, allowed string
	}{
		{"http://dash.local", "http://dash.local"},
		{"http://evil.local", ""},
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", tc.origin)
		e.ServeHTTP(w, req)
		assert.Equal(
			t, tc.allowed, w.Header().Get("Access-Control-Allow-Origin"),
			tc.origin,
		)
	}
}
