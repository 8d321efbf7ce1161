// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the vehicle
// access web project. Commands are organized using the cobra library.
// The root command starts the web server itself while the "db"
// sub-command can be used for the database initialization actions
// and the "config" sub-command shows the normalized settings.
//
//	./vaweb [-c /path/of/main/config.yaml]           # start web server
//	./vaweb db init-dev [-c /path/of/main/config.yaml]
//	./vaweb db init-prod [-c /path/of/main/config.yaml]
//	./vaweb config show [-c /path/of/main/config.yaml]
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momeni/vehicle-access/pkg/adapter/config"
	"github.com/momeni/vehicle-access/pkg/adapter/config/cfg1"
	"github.com/momeni/vehicle-access/pkg/adapter/restful/gin/routes"
	"github.com/momeni/vehicle-access/pkg/core/log"
	"github.com/momeni/vehicle-access/pkg/core/repo"
	"github.com/momeni/vehicle-access/pkg/core/usecase/appuc"
	"github.com/momeni/vehicle-access/pkg/core/usecase/initdbuc"
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "vaweb",
	Short: "Vehicle access control and analytics web service",
	Long: `Vehicle access control and analytics web service.
Each scanned credential toggles its vehicle between inside and outside
of the premises, by opening a new access event or closing the open one.
Scans are accepted as REST API calls or as MQTT messages which are
published by the gate readers. The recorded events are reported as a
dashboard containing daily counts, a per-vehicle distribution, a weekly
heatmap, the last access, and the number of vehicles which are inside.
Events are persisted in PostgreSQL (or in memory for development) and
repeated scans may be de-duplicated using Redis.`,
	RunE: startWebServer,
	Args: cobra.NoArgs,
}

// shutdownTimeout is the duration which in-flight requests are given
// to complete after a termination signal.
const shutdownTimeout = 10 * time.Second

func startWebServer(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	a, err := c.NewAdapters(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating adapters: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error(ctx, "closing adapters", log.Err("err", err))
		}
	}()
	if c.Database.Driver == cfg1.DriverMemory {
		err = initdbuc.New(a.Pool, a.Repos.Schema).InitDev(ctx)
		if err != nil {
			return fmt.Errorf("seeding memory DB: %w", err)
		}
	}
	app, err := appuc.New(a, a.Pool, a.Repos)
	if err != nil {
		return fmt.Errorf("creating application use case: %w", err)
	}
	if s := a.NewScanner(app.GateUseCase()); s != nil {
		if err = s.Start(ctx); err != nil {
			return fmt.Errorf("starting MQTT scanner: %w", err)
		}
		defer s.Stop()
	}
	e := c.Gin.NewEngine()
	h, path := a.MetricsHandler()
	routes.Register(e, app, h, path)
	srv := &http.Server{
		Addr:              listenAddress(),
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(
			context.Background(), shutdownTimeout,
		)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error(sctx, "shutting down HTTP server", log.Err("err", err))
		}
	}()
	log.Info(ctx, "serving REST APIs", slog.String("addr", srv.Addr))
	if err = srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("running HTTP server: %w", err)
	}
	return nil
}

// listenAddress follows the gin-gonic convention of listening on the
// port which is given by the PORT environment variable, or 8080.
func listenAddress() string {
	if port, found := os.LookupEnv("PORT"); found && port != "" {
		return ":" + port
	}
	return ":8080"
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. The exit code is
// zero for success and non-zero for failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		// the default path should usually be in the /etc directory
		cfgPath = "configs/sample-config.yaml"
	}
}
