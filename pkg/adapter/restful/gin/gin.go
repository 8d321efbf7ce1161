// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine, so other packages may create
// an engine with the structured request logging and panic recovery
// middlewares without depending on their providers.
package gin

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/FabienMht/ginslog/logger"
	"github.com/FabienMht/ginslog/recovery"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerFunc is a gin-gonic middleware or request handler.
type HandlerFunc = gin.HandlerFunc

// Engine is the gin-gonic engine.
type Engine = gin.Engine

// Context carries a request and its response writer.
type Context = gin.Context

// New creates a bare engine and installs the given middlewares on it.
func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.Use(middlewares...)
	return e
}

// Logger returns a middleware which logs each request using the
// default slog logger.
func Logger() HandlerFunc {
	return logger.New(slog.Default())
}

// Recovery returns a middleware which recovers from panics, logs them
// using the default slog logger, and responds with a 500 status code.
func Recovery() HandlerFunc {
	return recovery.New(slog.Default())
}

// CORS returns a middleware which lets browsers on the origins call
// the REST APIs. A single "*" origin allows all origins, but then
// credentials may not be sent.
func CORS(origins []string) HandlerFunc {
	c := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{
			"Origin", "Content-Type", "X-Request-ID",
		},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Equal(origins, []string{"*"}) {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return cors.New(c)
}
