// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package entriesrs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/vehicle-access/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/vehicle-access/pkg/core/model"
)

// RequestIDHeader is the header which may carry a client chosen id of
// a scan request, so retried requests are not toggled twice.
const RequestIDHeader = "X-Request-ID"

type rawScanURI struct {
	Code string `uri:"code" binding:"required,max=128"`
}

type rawScanQuery struct {
	RequestID string `form:"request_id" binding:"omitempty,max=128"`
}

type scanReq struct {
	Code      string
	RequestID string
}

func (rs *resource) DserScanReq(c *gin.Context) (*scanReq, bool) {
	uri := &rawScanURI{}
	if ok := serdser.BindURI(c, uri); !ok {
		return nil, false
	}
	q := &rawScanQuery{}
	if ok := serdser.Bind(c, q, binding.Query); !ok {
		return nil, false
	}
	req := &scanReq{Code: uri.Code, RequestID: q.RequestID}
	if h := c.GetHeader(RequestIDHeader); h != "" {
		req.RequestID = h
	}
	return req, true
}

type rawWindowQuery struct {
	StartDate string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate" binding:"omitempty,datetime=2006-01-02"`
}

// DserWindowReq parses the optional startDate and endDate query params
// as an inclusive window of calendar dates.
func (rs *resource) DserWindowReq(c *gin.Context) (w model.Window, ok bool) {
	req := &rawWindowQuery{}
	if ok := serdser.Bind(c, req, binding.Query); !ok {
		return w, false
	}
	var errs map[string][]string
	w.Start = parseDate(&errs, "startDate", req.StartDate)
	w.End = parseDate(&errs, "endDate", req.EndDate)
	if errs == nil {
		if err := w.Validate(); err != nil {
			serdser.AddErr(&errs, "startDate/endDate", err.Error())
		}
	}
	if errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return w, false
	}
	return w, true
}

func parseDate(errs *map[string][]string, name, s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := model.ParseDate(s)
	if !serdser.Assert(errs, err == nil, name, "Query param is not a date.") {
		return nil
	}
	return &t
}
