// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/platform/config"
)

/*
TestLoad_Defaults verifies that optional variables fall back to their defaults.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/public.pem")
	t.Setenv("DATABASE_URL", "postgres://arxsub@localhost/arxsub")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, config.BackendPostgres, cfg.SubmissionBackend)
	assert.Equal(t, 3, cfg.ActivePolicyID)
	assert.True(t, cfg.SerializeFileOperations)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestLoad_MissingRequired checks that required variables are enforced.
*/
func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "")

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestValidate covers the cross-field rules.
*/
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"memory_without_database", config.Config{SubmissionBackend: config.BackendMemory, ActivePolicyID: 3, MaxSourceBytes: 1}, false},
		{"postgres_without_database", config.Config{SubmissionBackend: config.BackendPostgres, ActivePolicyID: 3, MaxSourceBytes: 1}, true},
		{"unknown_backend", config.Config{SubmissionBackend: "sqlite", ActivePolicyID: 3, MaxSourceBytes: 1}, true},
		{"zero_policy", config.Config{SubmissionBackend: config.BackendMemory, MaxSourceBytes: 1}, true},
		{"zero_source_limit", config.Config{SubmissionBackend: config.BackendMemory, ActivePolicyID: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
