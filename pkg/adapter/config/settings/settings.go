// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settings contains the version independent helpers which are
// used by the config versions for decoding, normalizing, and bounding
// individual settings.
package settings

import (
	"cmp"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Duration is a time.Duration which is read from YAML files in the
// time.ParseDuration format (e.g., 1m30s) and is written back without
// the trailing zero units (e.g., 2h instead of 2h0m0s).
type Duration time.Duration

func (d *Duration) UnmarshalText(data []byte) error {
	dd, err := time.ParseDuration(string(data))
	if err != nil {
		return err
	}
	*d = Duration(dd)
	return nil
}

// Marshal returns the string form of d or nil if d is nil, so it can
// be used for filling the optional fields of Marshalled structs.
func (d *Duration) Marshal() *string {
	if d == nil {
		return nil
	}
	s := time.Duration(*d).String()
	if t, ok := strings.CutSuffix(s, "m0s"); ok {
		s = t + "m"
	}
	if t, ok := strings.CutSuffix(s, "h0m"); ok {
		s = t + "h"
	}
	return &s
}

// MarshalText is required for the JSON encoding of visible settings.
func (d *Duration) MarshalText() ([]byte, error) {
	if s := d.Marshal(); s != nil {
		return []byte(*s), nil
	}
	return nil, errors.New("nil duration")
}

func (d *Duration) LogValue() slog.Value {
	if d == nil {
		return slog.StringValue("nil-duration")
	}
	return slog.DurationValue(time.Duration(*d))
}

// OutOfRangeError reports a setting which was adjusted in order to
// fit in its [min, max] range, or a range which is empty itself.
type OutOfRangeError[T cmp.Ordered] struct {
	Value        *T // original value, before adjustment
	LessThanMin  bool
	InvalidRange bool
}

func (e *OutOfRangeError[T]) Error() string {
	switch {
	case e.InvalidRange:
		return "min is greater than max"
	case e.LessThanMin:
		return "value is less than min"
	default:
		return "value is greater than max"
	}
}

// VerifyRange checks that *value is nil or falls in the [minb, maxb]
// range. Nil bounds are not checked. A violating value is clamped to
// the nearest bound and the violation is reported.
func VerifyRange[T cmp.Ordered](value **T, minb, maxb *T) *OutOfRangeError[T] {
	if minb != nil && maxb != nil && *minb > *maxb {
		return &OutOfRangeError[T]{InvalidRange: true}
	}
	if *value == nil {
		return nil
	}
	v := **value
	switch {
	case minb != nil && v < *minb:
		**value = *minb
		return &OutOfRangeError[T]{Value: &v, LessThanMin: true}
	case maxb != nil && v > *maxb:
		**value = *maxb
		return &OutOfRangeError[T]{Value: &v}
	}
	return nil
}

// Nil2Zero points a nil *t to a new zero T value.
func Nil2Zero[T any](t **T) {
	if *t == nil {
		*t = new(T)
	}
}

// Default points a nil *t to a new T value which is initialized by v.
func Default[T any](t **T, v T) {
	if *t == nil {
		*t = &v
	}
}
