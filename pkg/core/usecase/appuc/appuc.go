// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package appuc contains the application UseCase which creates the
// gate and reports use cases, using a Builder (realized by the loaded
// configuration), and provides them together with the visible settings
// to the resources packages.
package appuc

import (
	"fmt"

	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
	"github.com/momeni/vehicle-access/pkg/core/usecase/gateuc"
	"github.com/momeni/vehicle-access/pkg/core/usecase/reportuc"
)

// Builder interface represents the expectations from the application
// use case builders. The configuration struct implements it, so use
// cases are created with the configured settings and options.
type Builder interface {
	// NewGateUseCase creates a gateuc UseCase object which toggles
	// vehicles in the p database using the rs repositories.
	NewGateUseCase(p repo.Pool, rs repo.Set) (*gateuc.UseCase, error)

	// NewReportsUseCase creates a reportuc UseCase object which reads
	// events from the p database using the rs repositories.
	NewReportsUseCase(p repo.Pool, rs repo.Set) (*reportuc.UseCase, error)

	// VisibleSettings returns the settings which are in effect and
	// may be reported to end-users.
	VisibleSettings() *model.VisibleSettings
}

// UseCase represents an application use case.
type UseCase struct {
	settings *model.VisibleSettings
	gate     *gateuc.UseCase
	reports  *reportuc.UseCase
}

// New instantiates an application use case object and all use cases
// which are managed by it.
func New(b Builder, p repo.Pool, rs repo.Set) (*UseCase, error) {
	gate, err := b.NewGateUseCase(p, rs)
	if err != nil {
		return nil, fmt.Errorf("creating gate use case: %w", err)
	}
	reports, err := b.NewReportsUseCase(p, rs)
	if err != nil {
		return nil, fmt.Errorf("creating reports use case: %w", err)
	}
	return &UseCase{
		settings: b.VisibleSettings(),
		gate:     gate,
		reports:  reports,
	}, nil
}

// Settings returns a copy of visible settings which are in effect.
func (app *UseCase) Settings() model.VisibleSettings {
	return *app.settings
}

// GateUseCase returns the gate use case object.
func (app *UseCase) GateUseCase() *gateuc.UseCase {
	return app.gate
}

// ReportsUseCase returns the reports use case object.
func (app *UseCase) ReportsUseCase() *reportuc.UseCase {
	return app.reports
}
