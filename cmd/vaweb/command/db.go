// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/momeni/vehicle-access/pkg/adapter/config"
	"github.com/momeni/vehicle-access/pkg/core/repo"
	"github.com/momeni/vehicle-access/pkg/core/usecase/initdbuc"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For fresh installation in a development or production environment,
the init-dev or init-prod may be used.`,
}

var initDevCmd = &cobra.Command{
	Use:   "init-dev",
	Short: "Initialize database contents with development data",
	Long: `Initialize database contents with development data.
Tables are created if they do not exist and a few vehicles together
with the VEHICLE1BARCODE and VEHICLE2BARCODE credentials and sample
access events are inserted. Running it again does not duplicate the sample data.
The database connection information are read from the config file.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return initDB(func(ctx context.Context, uc *initdbuc.UseCase) error {
			return uc.InitDev(ctx)
		})
	},
	Args: cobra.NoArgs,
}

var initProdCmd = &cobra.Command{
	Use:   "init-prod",
	Short: "Initialize database contents with production suitable data",
	Long: `Initialize database contents with production suitable data.
Tables are created if they do not exist and no records are inserted.
The database connection information are read from the config file.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return initDB(func(ctx context.Context, uc *initdbuc.UseCase) error {
			return uc.InitProd(ctx)
		})
	},
	Args: cobra.NoArgs,
}

func initDB(f func(context.Context, *initdbuc.UseCase) error) error {
	ctx := context.Background()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	p, err := c.Database.ConnectionPool(ctx, repo.AdminRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	rs := c.Database.Repositories()
	if err = f(ctx, initdbuc.New(p, rs.Schema)); err != nil {
		return fmt.Errorf("initializing DB: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(initDevCmd)
	dbCmd.AddCommand(initProdCmd)
}
