// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settingsrs realizes the settings resource, allowing the
// settings fetching REST API to be accepted and delegated to the
// application use case properly.
package settingsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/vehicle-access/pkg/core/usecase/appuc"
)

type resource struct {
	app *appuc.UseCase
}

// Register instantiates a resource adapting the app use case instance
// with the relevant REST APIs including:
//  1. GET request to /api/vaweb/v1/settings
//     in order to fetch the current visible settings.
//
// Settings are taken from the configuration file and may not be
// changed through the REST APIs.
func Register(r *gin.RouterGroup, app *appuc.UseCase) {
	rs := &resource{app: app}
	r.GET("settings", rs.FetchSettings)
}

func (rs *resource) FetchSettings(c *gin.Context) {
	vs := rs.app.Settings()
	c.JSON(http.StatusOK, vs)
}
