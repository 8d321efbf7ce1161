// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format which is used for window
// bounds and daily buckets.
const DateLayout = "2006-01-02"

// Window is a reporting date range. Start and End are calendar dates
// (midnight UTC) and both are inclusive. Any of them may be nil, which
// means the range is unbounded on that side.
// Filtering uses the half-open interval [Start, End+1day) on the
// event entry times.
type Window struct {
	Start *time.Time `json:"start_date,omitempty"`
	End   *time.Time `json:"end_date,omitempty"`
}

// ParseDate parses a YYYY-MM-DD string as a midnight UTC time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q as date: %w", s, err)
	}
	return t, nil
}

// Day truncates t to the midnight of its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether neither bound is given.
func (w Window) IsZero() bool {
	return w.Start == nil && w.End == nil
}

// Bounds returns the entry time range which is covered by w. The from
// bound is inclusive and the until bound is exclusive, being the day
// after the End date. Nil bounds are returned as nil.
func (w Window) Bounds() (from, until *time.Time) {
	if w.Start != nil {
		s := Day(*w.Start)
		from = &s
	}
	if w.End != nil {
		e := Day(*w.End).AddDate(0, 0, 1)
		until = &e
	}
	return
}

// Contains reports whether t falls in the [Start, End+1day) range.
func (w Window) Contains(t time.Time) bool {
	from, until := w.Bounds()
	if from != nil && t.Before(*from) {
		return false
	}
	if until != nil && !t.Before(*until) {
		return false
	}
	return true
}

// Validate returns an error if both bounds are given and Start comes
// after End.
func (w Window) Validate() error {
	if w.Start != nil && w.End != nil && Day(*w.Start).After(Day(*w.End)) {
		return fmt.Errorf(
			"start date %s is after end date %s",
			w.Start.Format(DateLayout), w.End.Format(DateLayout),
		)
	}
	return nil
}
