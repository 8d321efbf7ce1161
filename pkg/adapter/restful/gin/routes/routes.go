// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// registration of all resources based on the application use case.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/vehicle-access/pkg/adapter/restful/gin/entriesrs"
	"github.com/momeni/vehicle-access/pkg/adapter/restful/gin/settingsrs"
	"github.com/momeni/vehicle-access/pkg/core/usecase/appuc"
)

// Prefix is the path prefix of all versioned REST APIs.
const Prefix = "/api/vaweb/v1"

// Register instantiates a series of "resource" structs, from packages
// which are named like entriesrs, in order to adapt the use cases
// which are managed by app with the REST APIs. These resources are
// registered as request handlers using the e gin-gonic engine.
// The metrics handler is registered under its own path (outside of
// the versioned prefix) if it is not nil.
func Register(
	e *gin.Engine, app *appuc.UseCase,
	metrics http.Handler, metricsPath string,
) {
	r := e.Group(Prefix)
	settingsrs.Register(r, app)
	entriesrs.Register(r, app.GateUseCase(), app.ReportsUseCase())
	if metrics != nil {
		e.GET(metricsPath, gin.WrapH(metrics))
	}
}
