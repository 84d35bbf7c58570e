// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, file store) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Known submission storage backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the submission API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// SubmissionBackend selects the storage implementation at startup.
	SubmissionBackend string `env:"SUBMISSION_BACKEND" envDefault:"postgres"`

	// Relational Database (PostgreSQL). Required by the postgres backend.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis), holds the per-submission workflow "seen" maps.
	RedisURL string        `env:"REDIS_URL,required,notEmpty"`
	SeenTTL  time.Duration `env:"SEEN_TTL" envDefault:"720h"`

	// Public key used to verify bearer tokens. The private key is only needed
	// by tooling that mints tokens.
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required,notEmpty"`
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH"`

	// Source package storage
	FileStoreRoot string `env:"FILESTORE_ROOT" envDefault:"./data/new"`

	// SerializeFileOperations locks the submission row while files are written.
	// Disabling it trades lock contention for a race between concurrent uploaders.
	SerializeFileOperations bool `env:"SERIALIZE_FILE_OPERATIONS" envDefault:"true"`

	// MaxSourceBytes is the compressed size above which a source_oversize hold is placed.
	MaxSourceBytes int64 `env:"MAX_SOURCE_BYTES" envDefault:"52428800"`

	// ActivePolicyID is the only policy a submitter may accept.
	ActivePolicyID int `env:"ACTIVE_POLICY_ID" envDefault:"3"`

	// Cross-Origin Resource Sharing
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"arxiv.org"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks rules that span more than one variable.
func (c *Config) Validate() error {
	switch c.SubmissionBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the %q backend", BackendPostgres)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown SUBMISSION_BACKEND %q", c.SubmissionBackend)
	}

	if c.ActivePolicyID <= 0 {
		return fmt.Errorf("config: ACTIVE_POLICY_ID must be positive, got %d", c.ActivePolicyID)
	}

	if c.MaxSourceBytes <= 0 {
		return fmt.Errorf("config: MAX_SOURCE_BYTES must be positive, got %d", c.MaxSourceBytes)
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OriginSuffix returns the domain suffix trusted by the CORS middleware.
func (c *Config) OriginSuffix() string {
	return c.AllowedOriginSuffix
}
