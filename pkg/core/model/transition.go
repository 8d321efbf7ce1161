// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// Transition specifies the kind of state change which a gate scan has
// caused. Although this enum is numeric, it is (de)serialized as a
// string for readability in the adapter layer.
type Transition int

// Valid values for the Transition enum.
const (
	TransitionInvalid Transition = iota // zero value is invalid

	TransitionEntry // a new access event was opened
	TransitionExit  // the open access event was closed
)

// ErrUnknownTransition indicates that a given string may not be parsed
// as a valid/known transition kind. The invalid string itself is not
// included because the caller of ParseTransition already knows it.
var ErrUnknownTransition = errors.New("unknown transition kind")

// TransitionError indicates an invalid numeric transition value.
type TransitionError int

// Error implements the error interface, returning a string
// representation of the TransitionError.
func (e TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %d", e)
}

// Validate returns nil if the Transition value is valid. For invalid
// values, an instance of the TransitionError will be returned.
func (t Transition) Validate() error {
	switch t {
	case TransitionEntry, TransitionExit:
		return nil
	default:
		return TransitionError(t)
	}
}

// String converts the Transition enum to a string. Invalid values
// cause a panic.
func (t Transition) String() string {
	switch t {
	case TransitionEntry:
		return "entry"
	case TransitionExit:
		return "exit"
	default:
		panic(TransitionError(t))
	}
}

// MarshalText implements the encoding.TextMarshaler interface, so a
// Transition is serialized by its String representation.
func (t Transition) MarshalText() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (t *Transition) UnmarshalText(text []byte) error {
	tt, err := ParseTransition(string(text))
	if err != nil {
		return err
	}
	*t = tt
	return nil
}

// ParseTransition parses the given string and returns a Transition.
// For invalid strings, TransitionInvalid and ErrUnknownTransition
// will be returned.
func ParseTransition(t string) (Transition, error) {
	switch t {
	case "entry":
		return TransitionEntry, nil
	case "exit":
		return TransitionExit, nil
	default:
		return TransitionInvalid, ErrUnknownTransition
	}
}
