// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package redisdedup realizes the repo.Deduplicator interface on top of
// a Redis server, so scan retries are recognized even if they reach
// another server instance. Toggles are stored as JSON strings with a
// key expiry equal to the dedup TTL, using SET NX so a stored outcome
// is never replaced.
package redisdedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix is prepended to request ids in order to form Redis keys.
const KeyPrefix = "vaweb:scan:"

// Deduplicator is a Redis based repo.Deduplicator.
type Deduplicator struct {
	client *redis.Client
}

// New parses the redis://... url, connects, and pings the server.
func New(ctx context.Context, url string) (*Deduplicator, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &Deduplicator{client: c}, nil
}

func (d *Deduplicator) Recall(ctx context.Context, requestID string) (*model.Toggle, error) {
	b, err := d.client.Get(ctx, KeyPrefix+requestID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("request %q: %w", requestID, repo.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	t := &model.Toggle{}
	if err := json.Unmarshal(b, t); err != nil {
		return nil, fmt.Errorf("decoding toggle: %w", err)
	}
	return t, nil
}

func (d *Deduplicator) Remember(ctx context.Context, requestID string, t *model.Toggle, ttl time.Duration) error {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding toggle: %w", err)
	}
	// the first outcome of a request id wins
	if err := d.client.SetNX(ctx, KeyPrefix+requestID, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (d *Deduplicator) Close() error {
	return d.client.Close()
}
