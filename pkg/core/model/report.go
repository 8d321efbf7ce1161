// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// These constants define the dimensions of the Heatmap matrix.
const (
	DaysPerWeek  = 7
	HoursPerDay  = 24
	OtherVehicle = "Other" // name of the aggregated distribution bucket
)

// DailyCount is the number of entries which happened in one UTC date.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// VehicleShare is one slice of the vehicles distribution. Name is the
// license plate of a vehicle or OtherVehicle for the remaining ones.
type VehicleShare struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Heatmap counts entries per [weekday][hour] cell, where weekday 0 is
// Sunday and hours are in UTC. MaxValue is the largest cell value which
// may be used for color scaling.
type Heatmap struct {
	Data     [DaysPerWeek][HoursPerDay]int `json:"data"`
	MaxValue int                           `json:"max_value"`
}

// LastAccessKind tells which timestamp of an event was the most recent
// access, its entry or its exit.
type LastAccessKind int

// Valid values for the LastAccessKind enum.
const (
	LastAccessInvalid LastAccessKind = iota

	LastAccessEntry
	LastAccessExitRegistered
)

// String converts the LastAccessKind enum to a string. Invalid values
// cause a panic.
func (k LastAccessKind) String() string {
	switch k {
	case LastAccessEntry:
		return "entry"
	case LastAccessExitRegistered:
		return "exit_registered"
	default:
		panic(fmt.Sprintf("invalid last access kind: %d", int(k)))
	}
}

// MarshalText implements the encoding.TextMarshaler interface.
func (k LastAccessKind) MarshalText() ([]byte, error) {
	switch k {
	case LastAccessEntry, LastAccessExitRegistered:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("invalid last access kind: %d", int(k))
	}
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (k *LastAccessKind) UnmarshalText(text []byte) error {
	kk, err := ParseLastAccessKind(string(text))
	if err != nil {
		return err
	}
	*k = kk
	return nil
}

// ErrUnknownLastAccessKind indicates that a given string may not be
// parsed as a known last access kind.
var ErrUnknownLastAccessKind = errors.New("unknown last access kind")

// ParseLastAccessKind parses k as the string form of a LastAccessKind.
func ParseLastAccessKind(k string) (LastAccessKind, error) {
	switch k {
	case "entry":
		return LastAccessEntry, nil
	case "exit_registered":
		return LastAccessExitRegistered, nil
	default:
		return LastAccessInvalid, ErrUnknownLastAccessKind
	}
}

// LastAccess describes the most recent entry or exit timestamp among
// a set of events.
type LastAccess struct {
	EventID   uuid.UUID      `json:"event_id"`
	VehicleID uuid.UUID      `json:"vehicle_id"`
	License   string         `json:"license"`
	Time      time.Time      `json:"time"`
	Kind      LastAccessKind `json:"kind"`
}

// Report contains the statistics which are derived from the events of
// a reporting window.
type Report struct {
	Total        int            `json:"total"`
	DailyCounts  []DailyCount   `json:"daily_counts"`
	Distribution []VehicleShare `json:"distribution"`
	Heatmap      Heatmap        `json:"heatmap"`
	LastAccess   *LastAccess    `json:"last_access"`
}

// Dashboard combines a windowed Report with point-in-time counters.
// Inside is the number of vehicles which are currently inside the
// facility and Today is the number of entries during the current UTC
// date. Neither counter depends on the window.
type Dashboard struct {
	Window Window  `json:"window"`
	Report *Report `json:"report"`
	Inside int     `json:"inside"`
	Today  int     `json:"today"`
}
