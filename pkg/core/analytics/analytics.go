// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package analytics derives the dashboard statistics from a set of
// access events. All functions are pure: they perform no I/O, do not
// mutate their arguments, and never fail. Hence, they may be called
// concurrently with each other and with gate toggles, using whatever
// snapshot of events the caller could read.
//
// Time buckets are computed in UTC. Daily counts are sparse, that is,
// a date without events is not reported. A consumer which needs a
// dense series should fill the gaps in the presentation layer.
package analytics

import (
	"bytes"
	"slices"
	"time"

	"github.com/momeni/vehicle-access/pkg/core/model"
)

// TopVehicles is the number of vehicles which are reported by their
// own name in the distribution. Others are summed as one bucket.
const TopVehicles = 5

// Summarize filters events by the w window and computes the report.
// Only the given bounds of w are applied, so the caller which wants a
// default window (e.g., the last seven days) must restrict events or
// the window itself beforehand.
// The currently-inside counter is not computed here because it is a
// point-in-time fact which does not depend on the window.
func Summarize(events []model.AccessEvent, w model.Window) *model.Report {
	r := &model.Report{
		DailyCounts:  []model.DailyCount{},
		Distribution: []model.VehicleShare{},
	}
	filtered := Filter(events, w)
	r.Total = len(filtered)
	r.DailyCounts = DailyCounts(filtered)
	r.Distribution = Distribution(filtered, TopVehicles)
	r.Heatmap = NewHeatmap(filtered)
	r.LastAccess = LastAccess(filtered)
	return r
}

// Filter returns those events which their entry time falls in the w
// window. If w has no bounds, events are returned as is.
func Filter(events []model.AccessEvent, w model.Window) []model.AccessEvent {
	if w.IsZero() {
		return events
	}
	out := make([]model.AccessEvent, 0, len(events))
	for _, e := range events {
		if w.Contains(e.EntryTime) {
			out = append(out, e)
		}
	}
	return out
}

// DailyCounts groups events by the UTC date of their entry time and
// returns one count per present date, sorted by date ascendingly.
func DailyCounts(events []model.AccessEvent) []model.DailyCount {
	counts := make(map[time.Time]int)
	for _, e := range events {
		counts[model.Day(e.EntryTime)]++
	}
	days := make([]time.Time, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b time.Time) int {
		return a.Compare(b)
	})
	out := make([]model.DailyCount, 0, len(days))
	for _, d := range days {
		out = append(out, model.DailyCount{
			Date:  d.Format(model.DateLayout),
			Count: counts[d],
		})
	}
	return out
}

// Distribution counts events per vehicle and sorts them by count
// descendingly. Vehicles with equal counts keep the order of their
// first occurrence in events. The first n vehicles are returned by
// their name and the rest are summed in one model.OtherVehicle bucket
// which is appended only if it is positive.
func Distribution(events []model.AccessEvent, n int) []model.VehicleShare {
	index := make(map[string]int)
	shares := make([]model.VehicleShare, 0)
	for _, e := range events {
		name := vehicleName(&e)
		i, ok := index[name]
		if !ok {
			i = len(shares)
			index[name] = i
			shares = append(shares, model.VehicleShare{Name: name})
		}
		shares[i].Value++
	}
	slices.SortStableFunc(shares, func(a, b model.VehicleShare) int {
		return b.Value - a.Value
	})
	if len(shares) <= n {
		return shares
	}
	other := 0
	for _, s := range shares[n:] {
		other += s.Value
	}
	out := slices.Clip(shares[:n])
	if other > 0 {
		out = append(out, model.VehicleShare{
			Name: model.OtherVehicle, Value: other,
		})
	}
	return out
}

// vehicleName returns the license plate of the event vehicle, or the
// vehicle id string if the license is not known.
func vehicleName(e *model.AccessEvent) string {
	if e.License != "" {
		return e.License
	}
	return e.VehicleID.String()
}

// NewHeatmap counts each event once, in the cell of its entry weekday
// and hour (in UTC). Exits are not counted separately.
func NewHeatmap(events []model.AccessEvent) model.Heatmap {
	var h model.Heatmap
	for _, e := range events {
		t := e.EntryTime.UTC()
		d, hr := int(t.Weekday()), t.Hour()
		h.Data[d][hr]++
		if v := h.Data[d][hr]; v > h.MaxValue {
			h.MaxValue = v
		}
	}
	return h
}

// LastAccess returns the most recent entry or exit timestamp among the
// given events, or nil if events is empty.
// Ties are resolved deterministically, independent of the events
// order: an exit beats an entry at the same instant, and among
// timestamps of the same kind, the event with the smaller id wins.
func LastAccess(events []model.AccessEvent) *model.LastAccess {
	var last *model.LastAccess
	consider := func(e *model.AccessEvent, t time.Time, k model.LastAccessKind) {
		if last != nil && !newerAccess(t, k, e, last) {
			return
		}
		last = &model.LastAccess{
			EventID:   e.ID,
			VehicleID: e.VehicleID,
			License:   e.License,
			Time:      t,
			Kind:      k,
		}
	}
	for i := range events {
		e := &events[i]
		consider(e, e.EntryTime, model.LastAccessEntry)
		if e.ExitTime != nil {
			consider(e, *e.ExitTime, model.LastAccessExitRegistered)
		}
	}
	return last
}

func newerAccess(
	t time.Time, k model.LastAccessKind, e *model.AccessEvent,
	last *model.LastAccess,
) bool {
	if c := t.Compare(last.Time); c != 0 {
		return c > 0
	}
	if k != last.Kind {
		return k == model.LastAccessExitRegistered
	}
	return bytes.Compare(e.ID[:], last.EventID[:]) < 0
}

// CountOnDate returns the number of events which have entered during
// the UTC calendar date of the day argument.
func CountOnDate(events []model.AccessEvent, day time.Time) int {
	d := model.Day(day)
	n := 0
	for _, e := range events {
		if model.Day(e.EntryTime).Equal(d) {
			n++
		}
	}
	return n
}
