// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/momeni/vehicle-access/pkg/adapter/db/memory"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC)

func inTx(t *testing.T, p *memory.Pool, f repo.TxHandler) error {
	t.Helper()
	return p.Conn(context.Background(), func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, f)
	})
}

func TestOneOpenEventPerVehicle(t *testing.T) {
	db := memory.NewDB()
	v := db.AddVehicle("ABC-1234")
	cred, err := db.IssueCredential(v.ID, "CODE1")
	require.NoError(t, err)
	p := memory.NewPool(db)
	rs := memory.Repositories()

	var first *model.AccessEvent
	err = inTx(t, p, func(ctx context.Context, tx repo.Tx) error {
		eq := rs.Events.Tx(tx)
		_, err := eq.FindOpen(ctx, v.ID)
		require.ErrorIs(t, err, repo.ErrNotFound)
		first, err = eq.Create(ctx, v.ID, cred.ID, t0)
		require.NoError(t, err)
		assert.Equal(t, "ABC-1234", first.License)
		_, err = eq.Create(ctx, v.ID, cred.ID, t0.Add(time.Minute))
		assert.ErrorIs(t, err, repo.ErrConflict)
		return nil
	})
	require.NoError(t, err)

	err = inTx(t, p, func(ctx context.Context, tx repo.Tx) error {
		eq := rs.Events.Tx(tx)
		e, err := eq.Close(ctx, first.ID, t0.Add(time.Hour))
		require.NoError(t, err)
		require.NotNil(t, e.ExitTime)
		assert.Equal(t, t0.Add(time.Hour), *e.ExitTime)
		_, err = eq.Close(ctx, first.ID, t0.Add(2*time.Hour))
		assert.ErrorIs(t, err, repo.ErrNotFound, "exit time is final")
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, db.Events(), 1)
}

func TestRollbackUndoesChanges(t *testing.T) {
	db := memory.NewDB()
	v := db.AddVehicle("ABC-1234")
	cred, err := db.IssueCredential(v.ID, "CODE1")
	require.NoError(t, err)
	p := memory.NewPool(db)
	rs := memory.Repositories()
	boom := errors.New("boom")

	err = inTx(t, p, func(ctx context.Context, tx repo.Tx) error {
		_, err := rs.Events.Tx(tx).Create(ctx, v.ID, cred.ID, t0)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, db.Events())

	var opened model.AccessEvent
	err = inTx(t, p, func(ctx context.Context, tx repo.Tx) error {
		e, err := rs.Events.Tx(tx).Create(ctx, v.ID, cred.ID, t0)
		if err != nil {
			return err
		}
		opened = *e
		return nil
	})
	require.NoError(t, err)
	err = inTx(t, p, func(ctx context.Context, tx repo.Tx) error {
		_, err := rs.Events.Tx(tx).Close(ctx, opened.ID, t0.Add(time.Hour))
		require.NoError(t, err)
		panic("handler crashed")
	})
	require.Error(t, err)
	events := db.Events()
	require.Len(t, events, 1)
	assert.Nil(t, events[0].ExitTime, "close is undone after panic")
}

func TestQueryBoundsAndOrder(t *testing.T) {
	db := memory.NewDB()
	v1 := db.AddVehicle("ABC-1234")
	v2 := db.AddVehicle("XYZ-7890")
	c1, err := db.IssueCredential(v1.ID, "C1")
	require.NoError(t, err)
	c2, err := db.IssueCredential(v2.ID, "C2")
	require.NoError(t, err)
	p := memory.NewPool(db)
	rs := memory.Repositories()
	err = inTx(t, p, func(ctx context.Context, tx repo.Tx) error {
		eq := rs.Events.Tx(tx)
		e, err := eq.Create(ctx, v1.ID, c1.ID, t0)
		require.NoError(t, err)
		_, err = eq.Close(ctx, e.ID, t0.Add(time.Hour))
		require.NoError(t, err)
		_, err = eq.Create(ctx, v1.ID, c1.ID, t0.Add(24*time.Hour))
		require.NoError(t, err)
		_, err = eq.Create(ctx, v2.ID, c2.ID, t0.Add(2*time.Hour))
		return err
	})
	require.NoError(t, err)

	err = p.Conn(context.Background(), func(ctx context.Context, c repo.Conn) error {
		eq := rs.Events.Conn(c)
		all, err := eq.Query(ctx, nil, nil)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, t0.Add(24*time.Hour), all[0].EntryTime)
		assert.Equal(t, t0, all[2].EntryTime)
		assert.Equal(t, "XYZ-7890", all[1].License)

		from, until := t0.Add(time.Hour), t0.Add(24*time.Hour)
		some, err := eq.Query(ctx, &from, &until)
		require.NoError(t, err)
		require.Len(t, some, 1, "until bound is exclusive")
		assert.Equal(t, v2.ID, some[0].VehicleID)

		n, err := eq.CountOpen(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		return nil
	})
	require.NoError(t, err)
}

func TestCredentialLifecycle(t *testing.T) {
	db := memory.NewDB()
	v := db.AddVehicle("ABC-1234")
	_, err := db.IssueCredential(v.ID, "OLD")
	require.NoError(t, err)
	_, err = db.IssueCredential(v.ID, "NEW")
	require.NoError(t, err)
	other := db.AddVehicle("XYZ-7890")
	_, err = db.IssueCredential(other.ID, "NEW")
	assert.ErrorIs(t, err, repo.ErrConflict)

	p := memory.NewPool(db)
	rs := memory.Repositories()
	err = p.Conn(context.Background(), func(ctx context.Context, c repo.Conn) error {
		cq := rs.Credentials.Conn(c)
		_, err := cq.Resolve(ctx, "OLD")
		assert.ErrorIs(t, err, repo.ErrNotFound, "previous code is revoked")
		cred, err := cq.Resolve(ctx, "NEW")
		require.NoError(t, err)
		assert.Equal(t, v.ID, cred.VehicleID)

		db.RemoveVehicle(v.ID)
		cred, err = cq.Resolve(ctx, "NEW")
		require.NoError(t, err, "credential outlives its vehicle")
		_, err = rs.Vehicles.Conn(c).Find(ctx, cred.VehicleID)
		assert.ErrorIs(t, err, repo.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestInitDevData(t *testing.T) {
	db := memory.NewDB()
	p := memory.NewPool(db)
	rs := memory.Repositories()
	for i := 0; i < 2; i++ {
		err := inTx(t, p, func(ctx context.Context, tx repo.Tx) error {
			sq := rs.Schema.Tx(tx)
			if err := sq.CreateTables(ctx); err != nil {
				return err
			}
			return sq.InitDevData(ctx)
		})
		require.NoError(t, err)
	}
	events := db.Events()
	require.Len(t, events, 2, "init is idempotent")
	assert.NotNil(t, events[0].ExitTime)
	assert.Nil(t, events[1].ExitTime)
	assert.NotEqual(t, events[0].VehicleID, events[1].VehicleID)
	assert.NotEqual(t, events[0].CredentialID, events[1].CredentialID)
	assert.Equal(t, "XYZ-7890", events[1].License)
}

func TestCanceledContext(t *testing.T) {
	p := memory.NewPool(memory.NewDB())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Conn(ctx, func(context.Context, repo.Conn) error {
		t.Fatal("handler must not be called")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
