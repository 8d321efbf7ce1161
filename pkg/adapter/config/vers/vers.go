// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package vers parses the versions section of configuration files.
// Versions are read before the rest of a file, so the loader can pick
// the matching config struct and reject a file which targets another
// database schema.
package vers

import (
	"fmt"

	"github.com/momeni/vehicle-access/pkg/core/model"
	"gopkg.in/yaml.v3"
)

// Config may be embedded inline by config structs of all versions.
type Config struct {
	Versions Versions `yaml:"versions"`
}

// Versions holds the configuration file format and the database
// schema versions.
type Versions struct {
	Database model.SemVer `yaml:"database"`
	Config   model.SemVer `yaml:"config"`
}

// Marshalled replaces the SemVer arrays of Config by their strings.
type Marshalled struct {
	Versions struct {
		Database string `yaml:"database"`
		Config   string `yaml:"config"`
	} `yaml:"versions"`
}

func (vc *Config) Marshal() *Marshalled {
	m := &Marshalled{}
	m.Versions.Database = vc.Versions.Database.Marshal()
	m.Versions.Config = vc.Versions.Config.Marshal()
	return m
}

// Load decodes the versions of data, ignoring other settings.
func Load(data []byte) (*Config, error) {
	vc := &Config{}
	if err := yaml.Unmarshal(data, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// Validate accepts a config version with the given major version and
// a minor version which is not newer than minor.
func (vc *Config) Validate(major, minor uint) error {
	v := vc.Versions.Config
	if v[0] != major {
		return fmt.Errorf("incompatible major version: %d", v[0])
	}
	if v[1] > minor {
		return fmt.Errorf("unsupported minor version: %d", v[1])
	}
	return nil
}

// ValidateDatabase accepts a database schema version which has the
// same major version as sv and is not newer than it.
func (vc *Config) ValidateDatabase(sv model.SemVer) error {
	v := vc.Versions.Database
	if v[0] != sv[0] || v[1] > sv[1] {
		return fmt.Errorf(
			"database schema version %s is not compatible with %s",
			v.String(), sv.String(),
		)
	}
	return nil
}
