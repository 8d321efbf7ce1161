// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cfg1 makes it possible to load configuration settings with
// version 1.x.y since all minor and patch versions (which are known)
// with the same major version, can be loaded with one implementation.
// When trying to serialize and write out settings, the latest known
// minor and patch version will be used since older versions (with the
// same major version) can ignore the extra fields too.
package cfg1

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/momeni/vehicle-access/pkg/adapter/config/settings"
	"github.com/momeni/vehicle-access/pkg/adapter/config/vers"
	"github.com/momeni/vehicle-access/pkg/adapter/db/memory"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres/credentialsrp"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres/eventsrp"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres/vehiclesrp"
	"github.com/momeni/vehicle-access/pkg/adapter/restful/gin"
	"github.com/momeni/vehicle-access/pkg/core/log"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
	"gopkg.in/yaml.v3"
)

// These constants define the major, minor, and patch version of the
// configuration settings which are supported by the Config struct.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the semantic version of Config struct.
var Version = model.SemVer{Major, Minor, Patch}

// Config contains all settings which are required by different parts
// of the project following the v1.x.y format, such as adapters or
// use cases. It is preferred to implement Config with primitive fields
// or other structs which are defined locally, not models or structs
// which are defined in lower layers, so the configuration can be
// versioned and kept intact while other layers can change freely.
type Config struct {
	Database Database // database connection settings
	Gin      Gin      // Gin-Gonic instantiation settings
	Redis    Redis    // optional shared cache for scan de-duplication
	MQTT     MQTT     `yaml:"mqtt"` // optional gate readers broker
	Metrics  Metrics  // Prometheus exposition settings
	Usecases Usecases // Configuration settings for supported use cases

	// Vers contains the configuration file and database schema version
	// strings corresponding to this Config instance and its Database
	// target.
	Vers vers.Config `yaml:",inline"`
}

// Supported values of the Database.Driver setting.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Database contains the database related configuration settings.
type Database struct {
	// Driver selects the storage. The memory driver keeps everything
	// in the process and is seeded with the development data on
	// startup, so other fields are ignored for it.
	Driver  string `yaml:"driver,omitempty"`
	Host    string // domain name or IP address of the DBMS server
	Port    int    // port number of the DBMS server
	Name    string // database name, like vaweb
	PassDir string `yaml:"pass-dir"` // path of the passwords dir
}

// Pool is a connection pool which may be closed.
type Pool interface {
	repo.Pool
	Close() error
}

// ConnectionPool creates a connection pool for the r role. For the
// postgres driver, the r password is taken from the .pgpass file of
// the d.PassDir folder.
func (d Database) ConnectionPool(ctx context.Context, r repo.Role) (Pool, error) {
	if d.Driver == DriverMemory {
		return memory.NewPool(memory.NewDB()), nil
	}
	path := filepath.Join(d.PassDir, ".pgpass")
	u, err := d.ConnectionURL(r, path)
	if err != nil {
		return nil, fmt.Errorf("using %q pass-file: %w", path, err)
	}
	p, err := postgres.NewPool(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s:%d: %w", d.Host, d.Port, err)
	}
	return p, nil
}

// ConnectionURL returns the postgresql:// URL for connecting as the r
// role. The password is read from the path file which follows the
// pgpass format, i.e., lines like
//
//	host:port:dbname:role:password
//
// Empty and #-commented lines are skipped.
func (d Database) ConnectionURL(r repo.Role, path string) (string, error) {
	passLines, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	prfx := fmt.Sprintf("%s:%d:%s:%s:", d.Host, d.Port, d.Name, r)
	var pass string
	for _, line := range strings.Split(string(passLines), "\n") {
		if line == "" || line[0] == '#' {
			continue
		}
		if p, ok := strings.CutPrefix(line, prfx); ok {
			pass = p
			break
		}
	}
	if pass == "" {
		return "", fmt.Errorf("no matching password line for %q", r)
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(string(r), pass),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String(), nil
}

// Repositories returns the repositories which match with the pools
// that are created by ConnectionPool.
func (d Database) Repositories() repo.Set {
	if d.Driver == DriverMemory {
		return memory.Repositories()
	}
	return repo.Set{
		Credentials: credentialsrp.New(),
		Vehicles:    vehiclesrp.New(),
		Events:      eventsrp.New(),
		Schema:      schemarp.New(),
	}
}

func (d *Database) ValidateAndNormalize() error {
	switch d.Driver {
	case "":
		d.Driver = DriverPostgres
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver: %q", d.Driver)
	}
	if d.Driver == DriverMemory {
		return nil
	}
	if d.Host == "" || d.Name == "" {
		return fmt.Errorf("database host and name are required")
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.Port < 0 || d.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", d.Port)
	}
	return nil
}

// Gin contains the gin-gonic related configuration settings.
// Fields are pointers, so missing items can be told apart and filled
// with their defaults by the ValidateAndNormalize method.
type Gin struct {
	Logger   *bool // Whether to register the request logging middleware
	Recovery *bool // Whether to register the recovery middleware

	// AllowOrigins lists the dashboard origins which may call the
	// REST APIs from a browser. A single "*" allows all origins and
	// an empty list disables the CORS middleware.
	AllowOrigins []string `yaml:"allow-origins,omitempty"`
}

// NewEngine instantiates a new gin-gonic engine instance based on
// the `g` settings.
func (g Gin) NewEngine() *gin.Engine {
	middlewares := make([]gin.HandlerFunc, 0, 3)
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger())
	}
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery())
	}
	if len(g.AllowOrigins) > 0 {
		middlewares = append(middlewares, gin.CORS(g.AllowOrigins))
	}
	return gin.New(middlewares...)
}

// Redis contains the optional Redis server settings. If URL is empty,
// scan requests are de-duplicated in the process memory.
type Redis struct {
	URL string `yaml:"url,omitempty"` // like redis://localhost:6379/0
}

// MQTT contains the optional broker settings for the gate readers.
// If Broker is empty, scans are only accepted over the REST API.
type MQTT struct {
	Broker      string `yaml:"broker,omitempty"` // like tcp://localhost:1883
	ClientID    string `yaml:"client-id,omitempty"`
	TopicPrefix string `yaml:"topic-prefix,omitempty"`
	QoS         byte   `yaml:"qos,omitempty"`
}

func (m *MQTT) ValidateAndNormalize() error {
	if m.ClientID == "" {
		m.ClientID = "vaweb"
	}
	if m.TopicPrefix == "" {
		m.TopicPrefix = "vaweb/gates"
	}
	if m.QoS > 2 {
		return fmt.Errorf("invalid mqtt qos: %d", m.QoS)
	}
	return nil
}

// Metrics contains the Prometheus exposition settings.
type Metrics struct {
	Enabled *bool
	Path    string `yaml:"path,omitempty"`
}

// Usecases contains the configuration settings for all use cases.
type Usecases struct {
	Gate    Gate    // gate scanning related settings
	Reports Reports // dashboard related settings
}

// Gate contains the configuration settings for the gate use case.
type Gate struct {
	// DedupTTL is how long a client supplied request id is remembered.
	// A nil value disables de-duplication.
	DedupTTL *settings.Duration `yaml:"dedup-ttl"`
	// MinDedupTTL is the inclusive minimum acceptable value
	// for the DedupTTL setting.
	// A missing value indicates that there is no lower bound.
	MinDedupTTL *settings.Duration `yaml:"dedup-ttl-minimum"`
	// MaxDedupTTL is the inclusive maximum acceptable value
	// for the DedupTTL setting.
	// A missing value indicates that there is no upper bound.
	MaxDedupTTL *settings.Duration `yaml:"dedup-ttl-maximum"`
}

// Reports contains the configuration settings for the reports use case.
type Reports struct {
	DefaultWindowDays    *int `yaml:"default-window-days"`
	MinDefaultWindowDays *int `yaml:"default-window-days-minimum,omitempty"`
	MaxDefaultWindowDays *int `yaml:"default-window-days-maximum,omitempty"`
}

// Load unmarshals the data byte slice and loads a Config instance
// assuming that it contains the Config settings. Extra items in the
// data will be ignored and missing items will take their default
// values. Thereafter, loaded Config will be validated and normalized
// in order to ensure that provided settings are acceptable (for example
// the major version which is reported by data settings must match
// with number 1 which is the major version of this config package).
func Load(data []byte) (*Config, error) {
	n := &yaml.Node{}
	if err := yaml.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if l := len(n.Content); l != 1 {
		return nil, fmt.Errorf(
			"found %d children nodes, instead of 1 mapping child", l,
		)
	}
	c := &Config{}
	if err := n.Decode(c); err != nil {
		return nil, fmt.Errorf("decoding yaml node: %w", err)
	}
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. It can also modify
// settings in order to normalize them or replace some zero values with
// their expected default values (if any).
func (c *Config) ValidateAndNormalize() error {
	if err := c.Vers.Validate(Major, Minor); err != nil {
		return fmt.Errorf(
			"expecting version v%d.%d: %w", Major, Minor, err,
		)
	}
	if err := c.Vers.ValidateDatabase(postgres.Version); err != nil {
		return err
	}
	settings.Nil2Zero(&c.Gin.Logger)
	settings.Nil2Zero(&c.Gin.Recovery)
	settings.Nil2Zero(&c.Metrics.Enabled)
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must be absolute: %q", c.Metrics.Path)
	}
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	if err := c.MQTT.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating mqtt settings: %w", err)
	}
	ctx := context.Background()
	g := &c.Usecases.Gate
	if err := settings.VerifyRange(
		&g.DedupTTL, g.MinDedupTTL, g.MaxDedupTTL,
	); err != nil {
		if err.InvalidRange {
			return fmt.Errorf(
				"VerifyRange(dedup ttl, minb=%s, maxb=%s): %w",
				*g.MinDedupTTL.Marshal(), *g.MaxDedupTTL.Marshal(), err,
			)
		}
		log.Warn(
			ctx, "dedup ttl is adjusted by boundary values",
			log.Valuer("value", (*settings.Duration)(err.Value)),
			log.Valuer("minb", g.MinDedupTTL),
			log.Valuer("maxb", g.MaxDedupTTL),
			log.Err("violation", err),
		)
	}
	if g.DedupTTL != nil && *g.DedupTTL <= 0 {
		return fmt.Errorf(
			"dedup ttl must be positive: %v", time.Duration(*g.DedupTTL),
		)
	}
	r := &c.Usecases.Reports
	settings.Default(&r.DefaultWindowDays, 7)
	if err := settings.VerifyRange(
		&r.DefaultWindowDays,
		r.MinDefaultWindowDays, r.MaxDefaultWindowDays,
	); err != nil {
		if err.InvalidRange {
			return fmt.Errorf(
				"VerifyRange(default window days, minb=%d, maxb=%d): %w",
				*r.MinDefaultWindowDays, *r.MaxDefaultWindowDays, err,
			)
		}
		log.Warn(
			ctx, "default window days is adjusted by boundary values",
			slog.Int("value", *err.Value),
			slog.Any("minb", r.MinDefaultWindowDays),
			slog.Any("maxb", r.MaxDefaultWindowDays),
			log.Err("violation", err),
		)
	}
	if *r.DefaultWindowDays <= 0 {
		return fmt.Errorf(
			"default window days must be positive: %d",
			*r.DefaultWindowDays,
		)
	}
	return nil
}

// Marshalled struct contains a field for each one of the Config struct
// fields. The types of those fields are the same if their default
// serialization format is acceptable, otherwise, they will be
// serialized manually using the Marshal method and their target
// primitive types will be used in the Marshalled struct.
type Marshalled struct {
	Database Database
	Gin      Gin
	Redis    Redis
	MQTT     MQTT `yaml:"mqtt"`
	Metrics  Metrics
	Usecases struct {
		Gate struct {
			DedupTTL    *string `yaml:"dedup-ttl,omitempty"`
			MinDedupTTL *string `yaml:"dedup-ttl-minimum,omitempty"`
			MaxDedupTTL *string `yaml:"dedup-ttl-maximum,omitempty"`
		}
		Reports Reports
	}
	Vers *vers.Marshalled `yaml:",inline"`
}

// MarshalYAML replaces c by its Marshalled form during YAML encoding.
func (c *Config) MarshalYAML() (interface{}, error) {
	return c.Marshal(), nil
}

// Marshal creates an instance of the Marshalled struct and fills it
// with the `c` Config instance contents.
func (c *Config) Marshal() *Marshalled {
	m := &Marshalled{
		Database: c.Database,
		Gin:      c.Gin,
		Redis:    c.Redis,
		MQTT:     c.MQTT,
		Metrics:  c.Metrics,
	}
	g := c.Usecases.Gate
	m.Usecases.Gate.DedupTTL = g.DedupTTL.Marshal()
	m.Usecases.Gate.MinDedupTTL = g.MinDedupTTL.Marshal()
	m.Usecases.Gate.MaxDedupTTL = g.MaxDedupTTL.Marshal()
	m.Usecases.Reports = c.Usecases.Reports
	m.Vers = c.Vers.Marshal()
	return m
}

// Version returns the semantic version of this Config contents.
func (c *Config) Version() model.SemVer {
	return c.Vers.Versions.Config
}
