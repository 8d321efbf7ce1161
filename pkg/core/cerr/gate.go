// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr

import "errors"

// Gate scanning errors. They are wrapped by an *Error (with the proper
// HTTP status code) before leaving the gate use case, so the resource
// layer may report them while callers can still match them using the
// errors.Is function.
var (
	// ErrCredentialNotFound indicates that the scanned code does not
	// resolve to any vehicle. It is reported to the gate operator as an
	// invalid code and nothing is changed in the event store.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrVehicleUnresolved indicates that a credential resolved, but
	// its vehicle does not exist anymore. This is an internal
	// consistency fault and is not operator-actionable.
	ErrVehicleUnresolved = errors.New("credential vehicle not found")

	// ErrConcurrencyConflict indicates that the storage layer detected
	// a contention which it could not resolve, e.g., a serialization
	// failure or a second open event for one vehicle. The caller must
	// retry the scan.
	ErrConcurrencyConflict = errors.New("concurrent toggle conflict")
)
