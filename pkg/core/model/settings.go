// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "time"

// VisibleSettings contains settings which are visible by end-users.
// They are taken from the configuration file and are reported as they
// are in effect, so operators may know how scans are de-duplicated and
// which window the dashboard uses by default.
//
// This model layer struct is required (in addition to its version
// dependent adapters layer counterparts) because settings should be
// reported to end-users as required from the use cases layer while the
// configuration file format may change independently.
type VisibleSettings struct {
	Gate    GateSettings    `json:"gate"`
	Reports ReportsSettings `json:"reports"`

	*ImmutableSettings
}

// GateSettings represents the gate scanning related settings.
type GateSettings struct {
	// DedupTTL is how long a client supplied request id is remembered.
	// A nil value means de-duplication is disabled.
	DedupTTL *time.Duration `json:"dedup_ttl"`
}

// ReportsSettings represents the dashboard related settings.
type ReportsSettings struct {
	// DefaultWindowDays is the number of days which are covered by a
	// dashboard when no explicit window is asked.
	DefaultWindowDays int `json:"default_window_days"`
}

// ImmutableSettings contains settings which can be configured only
// using the configuration file, but are visible by end-users.
type ImmutableSettings struct {
	// Logger reports if server-side REST API logging is enabled.
	Logger bool `json:"logger"`

	// Metrics reports if the Prometheus endpoint is exposed.
	Metrics bool `json:"metrics"`
}
