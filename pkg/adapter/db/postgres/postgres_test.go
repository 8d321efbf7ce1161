// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/momeni/vehicle-access/internal/test/dbcontainer"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres/credentialsrp"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres/eventsrp"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres/vehiclesrp"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
	"github.com/momeni/vehicle-access/pkg/core/usecase/gateuc"
	"github.com/momeni/vehicle-access/pkg/core/usecase/initdbuc"
	"github.com/stretchr/testify/suite"
)

type IntegrationPostgresTestSuite struct {
	suite.Suite

	Ctx   context.Context
	Pg    *sqltestutil.PostgresContainer
	Pool  *postgres.Pool
	Repos repo.Set
}

func TestIntegrationPostgresTestSuite(t *testing.T) {
	ctx := context.Background()
	pg, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &IntegrationPostgresTestSuite{
		Ctx:  ctx,
		Pg:   pg,
		Pool: pool,
		Repos: repo.Set{
			Credentials: credentialsrp.New(),
			Vehicles:    vehiclesrp.New(),
			Events:      eventsrp.New(),
			Schema:      schemarp.New(),
		},
	})
}

func (ipts *IntegrationPostgresTestSuite) SetupSuite() {
	uc := initdbuc.New(ipts.Pool, ipts.Repos.Schema)
	ipts.Require().NoError(uc.InitDev(ipts.Ctx), "first init-dev")
	ipts.Require().NoError(uc.InitDev(ipts.Ctx), "repeated init-dev")
}

func (ipts *IntegrationPostgresTestSuite) query() (
	events []model.AccessEvent, open int,
) {
	err := ipts.Pool.Conn(ipts.Ctx, func(ctx context.Context, c repo.Conn) (err error) {
		q := ipts.Repos.Events.Conn(c)
		if events, err = q.Query(ctx, nil, nil); err != nil {
			return err
		}
		open, err = q.CountOpen(ctx)
		return err
	})
	ipts.Require().NoError(err, "querying events")
	return events, open
}

func (ipts *IntegrationPostgresTestSuite) TestDevDataIsSeededOnce() {
	events, open := ipts.query()
	ipts.Len(events, 2)
	ipts.Equal(1, open)
	ipts.True(events[0].EntryTime.After(events[1].EntryTime))
	for _, e := range events {
		ipts.NotEmpty(e.License)
	}
}

func (ipts *IntegrationPostgresTestSuite) TestDevCredentialsOwnTheirEvents() {
	var creds [2]*model.Credential
	err := ipts.Pool.Conn(ipts.Ctx, func(ctx context.Context, c repo.Conn) (err error) {
		q := ipts.Repos.Credentials.Conn(c)
		for i, code := range []string{schemarp.DevCode, schemarp.DevCode2} {
			if creds[i], err = q.Resolve(ctx, code); err != nil {
				return err
			}
		}
		return nil
	})
	ipts.Require().NoError(err)
	ipts.NotEqual(creds[0].VehicleID, creds[1].VehicleID)
	events, _ := ipts.query()
	for _, e := range events {
		if e.ExitTime != nil {
			continue
		}
		ipts.Equal("XYZ-7890", e.License)
		ipts.Equal(creds[1].ID, e.CredentialID)
		ipts.Equal(creds[1].VehicleID, e.VehicleID)
	}
}

func (ipts *IntegrationPostgresTestSuite) TestToggleRoundTrip() {
	gate, err := gateuc.New(
		ipts.Pool, ipts.Repos.Credentials, ipts.Repos.Vehicles,
		ipts.Repos.Events,
	)
	ipts.Require().NoError(err)
	before, open := ipts.query()

	entry, err := gate.Toggle(ipts.Ctx, schemarp.DevCode, "")
	ipts.Require().NoError(err)
	ipts.Equal(model.TransitionEntry, entry.Kind)
	ipts.Equal("ABC-1234", entry.Event.License)
	events, open2 := ipts.query()
	ipts.Len(events, len(before)+1)
	ipts.Equal(open+1, open2)

	exit, err := gate.Toggle(ipts.Ctx, schemarp.DevCode, "")
	ipts.Require().NoError(err)
	ipts.Equal(model.TransitionExit, exit.Kind)
	ipts.Equal(entry.Event.ID, exit.Event.ID)
	_, open3 := ipts.query()
	ipts.Equal(open, open3)
}

func (ipts *IntegrationPostgresTestSuite) TestSecondOpenEventConflicts() {
	err := ipts.Pool.Conn(ipts.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			cred, err := ipts.Repos.Credentials.Tx(tx).Resolve(ctx, schemarp.DevCode)
			if err != nil {
				return err
			}
			q := ipts.Repos.Events.Tx(tx)
			now := time.Now()
			if _, err = q.Create(ctx, cred.VehicleID, cred.ID, now); err != nil {
				return err
			}
			_, err = q.Create(ctx, cred.VehicleID, cred.ID, now)
			return err
		})
	})
	ipts.ErrorIs(err, repo.ErrConflict)
	_, open := ipts.query()
	ipts.Equal(1, open, "the transaction must be rolled back")
}

func (ipts *IntegrationPostgresTestSuite) TestUnknownCode() {
	err := ipts.Pool.Conn(ipts.Ctx, func(ctx context.Context, c repo.Conn) error {
		_, err := ipts.Repos.Credentials.Conn(c).Resolve(ctx, "NOPE")
		return err
	})
	ipts.ErrorIs(err, repo.ErrNotFound)
}
