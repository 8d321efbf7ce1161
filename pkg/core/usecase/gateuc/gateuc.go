// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gateuc contains the gate UseCase which turns a scanned
// credential code into an entry or exit of its vehicle.
//
// A vehicle is inside if it has an open access event (an event without
// exit time). Scanning the code of an outside vehicle opens a new event
// and scanning the code of an inside vehicle closes its open event.
// Toggles of one vehicle are serialized in-process and the storage is
// expected to reject a second open event of a vehicle as a backstop,
// so at most one open event may exist per vehicle.
package gateuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/vehicle-access/pkg/core/cerr"
	"github.com/momeni/vehicle-access/pkg/core/log"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
)

// Observer is notified after each Toggle call. The replayed argument
// is true when the result came from the deduplicator.
type Observer interface {
	ObserveToggle(t *model.Toggle, replayed bool, err error, elapsed time.Duration)
}

// UseCase represents the gate use case. It holds a database connection
// pool, the repositories which are required for resolving codes and
// toggling events, and a table of per-vehicle locks.
type UseCase struct {
	pool        repo.Pool
	credentials repo.Credentials
	vehicles    repo.Vehicles
	events      repo.Events
	locks       *lockTable

	now       func() time.Time
	dedup     repo.Deduplicator
	dedupTTL  time.Duration
	observers []Observer
}

// New instantiates a gate use case.
func New(
	p repo.Pool,
	c repo.Credentials,
	v repo.Vehicles,
	e repo.Events,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pool:        p,
		credentials: c,
		vehicles:    v,
		events:      e,
		locks:       newLockTable(),
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}

// Toggle use case resolves the scanned code and flips the presence
// state of its vehicle. The resulting event and the kind of transition
// are returned.
//
// An unknown code is reported as cerr.ErrCredentialNotFound (404) and
// a credential whose vehicle is missing as cerr.ErrVehicleUnresolved
// (500); neither of them modifies any event. Contention which the
// storage could not resolve is reported as cerr.ErrConcurrencyConflict
// (409) and the scan may be retried.
//
// If requestID is not empty and a deduplicator is configured, the
// first result of a request id is replayed for its repetitions. Request
// ids are scoped to the scanned vehicle, so reusing one id for another
// vehicle toggles that vehicle normally.
func (uc *UseCase) Toggle(ctx context.Context, code, requestID string) (t *model.Toggle, err error) {
	start := time.Now()
	replayed := false
	defer func() {
		for _, o := range uc.observers {
			o.ObserveToggle(t, replayed, err, time.Since(start))
		}
	}()
	if requestID != "" {
		ctx = log.With(ctx, slog.String("request_id", requestID))
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, cerr.BadRequest(errors.New("empty credential code"))
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		cred, err := uc.credentials.Conn(c).Resolve(ctx, code)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return cerr.NotFound(fmt.Errorf(
				"%w: %q", cerr.ErrCredentialNotFound, code,
			))
		case err != nil:
			return fmt.Errorf("resolving credential: %w", err)
		}
		v, err := uc.vehicles.Conn(c).Find(ctx, cred.VehicleID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			log.Error(
				ctx, "credential refers to a missing vehicle",
				log.Stringer("credential", cred.ID),
				log.Stringer("vehicle", cred.VehicleID),
			)
			return cerr.Internal(fmt.Errorf(
				"%w: %s", cerr.ErrVehicleUnresolved, cred.VehicleID,
			))
		case err != nil:
			return fmt.Errorf("finding vehicle: %w", err)
		}

		ctx = log.With(ctx,
			log.Stringer("vehicle", v.ID), slog.String("license", v.License),
		)
		unlock, err := uc.locks.Lock(ctx, v.ID)
		if err != nil {
			return fmt.Errorf("waiting for vehicle lock: %w", err)
		}
		defer unlock()

		key := dedupKey(v.ID, requestID)
		if t = uc.recall(ctx, key); t != nil {
			replayed = true
			return nil
		}
		t, err = uc.toggle(ctx, c, cred)
		if err != nil {
			return err
		}
		t.Event.License = v.License
		uc.remember(ctx, key, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "vehicle toggled",
		log.Stringer("kind", t.Kind),
		slog.String("license", t.Event.License),
		log.Stringer("event", t.Event.ID),
		slog.Bool("replayed", replayed),
	)
	return t, nil
}

// toggle runs the read-modify-write sequence of one scan in a
// transaction. Caller must hold the vehicle lock.
func (uc *UseCase) toggle(ctx context.Context, c repo.Conn, cred *model.Credential) (t *model.Toggle, err error) {
	err = c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
		q := uc.events.Tx(tx)
		now := uc.now().UTC()
		open, err := q.FindOpen(ctx, cred.VehicleID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			e, err := q.Create(ctx, cred.VehicleID, cred.ID, now)
			if err != nil {
				return fmt.Errorf("creating event: %w", err)
			}
			t = &model.Toggle{Event: *e, Kind: model.TransitionEntry}
			return nil
		case err != nil:
			return fmt.Errorf("finding open event: %w", err)
		}
		exit := now
		if exit.Before(open.EntryTime) {
			exit = open.EntryTime // clock skew must not invert the event
		}
		e, err := q.Close(ctx, open.ID, exit)
		if errors.Is(err, repo.ErrNotFound) {
			// it was open a moment ago, so someone else closed it
			return fmt.Errorf("closing event: %w", repo.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("closing event: %w", err)
		}
		t = &model.Toggle{Event: *e, Kind: model.TransitionExit}
		return nil
	})
	if errors.Is(err, repo.ErrConflict) {
		return nil, cerr.Conflict(fmt.Errorf(
			"%w: %w", cerr.ErrConcurrencyConflict, err,
		))
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// dedupKey scopes a client request id to the vehicle it has toggled.
// An empty requestID disables de-duplication of that scan.
func dedupKey(vehicleID uuid.UUID, requestID string) string {
	if requestID == "" {
		return ""
	}
	return vehicleID.String() + "/" + requestID
}

// recall returns the stored toggle of key or nil. Deduplicator
// failures are logged and the scan is processed as a new one.
func (uc *UseCase) recall(ctx context.Context, key string) *model.Toggle {
	if uc.dedup == nil || key == "" {
		return nil
	}
	t, err := uc.dedup.Recall(ctx, key)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil
	case err != nil:
		log.Warn(
			ctx, "cannot recall scan request",
			log.Err("err", err), slog.String("request_key", key),
		)
		return nil
	}
	log.Info(ctx, "replaying scan request", slog.String("request_key", key))
	return t
}

func (uc *UseCase) remember(ctx context.Context, key string, t *model.Toggle) {
	if uc.dedup == nil || key == "" {
		return
	}
	if err := uc.dedup.Remember(ctx, key, t, uc.dedupTTL); err != nil {
		log.Warn(
			ctx, "cannot remember scan request",
			log.Err("err", err), slog.String("request_key", key),
		)
	}
}
