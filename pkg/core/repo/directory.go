// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/vehicle-access/pkg/core/model"
)

// CredentialsConnQueryer lists the credential directory operations
// which may be performed with a connection.
type CredentialsConnQueryer interface {
	CredentialsQueryer
}

// CredentialsTxQueryer lists the credential directory operations
// which may be performed within a transaction.
type CredentialsTxQueryer interface {
	CredentialsQueryer
}

// CredentialsQueryer is the read-only credential directory. Issuing
// and revoking credentials are managed outside of this project.
type CredentialsQueryer interface {
	// Resolve finds the live credential having the given code.
	// If no credential has that code, an error wrapping ErrNotFound
	// is returned.
	Resolve(ctx context.Context, code string) (*model.Credential, error)
}

// Credentials is the credential directory repository.
type Credentials interface {
	Conn(Conn) CredentialsConnQueryer
	Tx(Tx) CredentialsTxQueryer
}

// VehiclesConnQueryer lists the vehicle operations which may be
// performed with a connection.
type VehiclesConnQueryer interface {
	VehiclesQueryer
}

// VehiclesTxQueryer lists the vehicle operations which may be
// performed within a transaction.
type VehiclesTxQueryer interface {
	VehiclesQueryer
}

// VehiclesQueryer reads the external vehicles registry.
type VehiclesQueryer interface {
	// Find returns the vehicle with the given id or an error wrapping
	// ErrNotFound if it is not registered (anymore).
	Find(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
}

// Vehicles is the vehicles repository.
type Vehicles interface {
	Conn(Conn) VehiclesConnQueryer
	Tx(Tx) VehiclesTxQueryer
}
