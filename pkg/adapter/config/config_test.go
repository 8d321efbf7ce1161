// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/momeni/vehicle-access/pkg/adapter/config"
	"github.com/momeni/vehicle-access/pkg/adapter/config/cfg1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSampleConfig(t *testing.T) {
	c, err := config.Load("../../../configs/sample-config.yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg1.DriverPostgres, c.Database.Driver)
	assert.Equal(t, 7, *c.Usecases.Reports.DefaultWindowDays)
}

func TestLoadUnknownMajor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`versions:
  database: 1.0.0
  config: 3.0.0
`), 0o600)
	require.NoError(t, err)
	_, err = config.Load(path)
	assert.ErrorContains(t, err, "unexpected config version")

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
