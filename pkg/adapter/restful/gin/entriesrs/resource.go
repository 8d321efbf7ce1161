// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package entriesrs realizes the entries resource, allowing the gate
// scan and the access reporting REST APIs to be accepted and delegated
// to the gate and reports use cases respectively.
package entriesrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/vehicle-access/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/vehicle-access/pkg/core/usecase/gateuc"
	"github.com/momeni/vehicle-access/pkg/core/usecase/reportuc"
)

type resource struct {
	gate    *gateuc.UseCase
	reports *reportuc.UseCase
}

// Register instantiates a resource adapting the gate and reports use
// case instances with the relevant REST APIs including:
//  1. POST request to /api/vaweb/v1/entries/scan/:code
//     in order to toggle the vehicle which owns the scanned code.
//  2. GET request to /api/vaweb/v1/entries
//     in order to list the access events of a date window.
//  3. GET request to /api/vaweb/v1/entries/dashboard
//     in order to fetch the statistics of a date window.
func Register(
	r *gin.RouterGroup, gate *gateuc.UseCase, reports *reportuc.UseCase,
) {
	rs := &resource{gate: gate, reports: reports}
	r.POST("entries/scan/:code", rs.Scan)
	r.GET("entries", rs.ListEntries)
	r.GET("entries/dashboard", rs.Dashboard)
}

func (rs *resource) Scan(c *gin.Context) {
	req, ok := rs.DserScanReq(c)
	if !ok {
		return
	}
	t, err := rs.gate.Toggle(c, req.Code, req.RequestID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (rs *resource) ListEntries(c *gin.Context) {
	w, ok := rs.DserWindowReq(c)
	if !ok {
		return
	}
	events, err := rs.reports.ListEvents(c, w)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (rs *resource) Dashboard(c *gin.Context) {
	w, ok := rs.DserWindowReq(c)
	if !ok {
		return
	}
	d, err := rs.reports.Dashboard(c, w)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
