// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package reportuc

import (
	"errors"
	"fmt"
	"time"
)

// Option is a functional option for the reports use case.
type Option func(uc *UseCase) error

// WithClock replaces time.Now for computing the default window and
// the today counter.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		uc.now = now
		return nil
	}
}

// WithDefaultWindowDays option sets the number of calendar days
// (including today) which a dashboard covers when it is asked without
// any window bound.
func WithDefaultWindowDays(days int) Option {
	return func(uc *UseCase) error {
		if days <= 0 {
			return fmt.Errorf("default window days (%d) is not positive", days)
		}
		if uc.defaultDays != 0 {
			return errors.New("default window days is already configured")
		}
		uc.defaultDays = days
		return nil
	}
}

// WithObserver option reports the duration of every dashboard
// computation to o.
func WithObserver(o Observer) Option {
	return func(uc *UseCase) error {
		if o == nil {
			return errors.New("observer is nil")
		}
		uc.observers = append(uc.observers, o)
		return nil
	}
}
