// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/core/category"
	"github.com/taibuivan/arxsub/internal/platform/constants"
	"github.com/taibuivan/arxsub/internal/platform/sec"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestWorkflowStages(t *testing.T) {
	out, err := run(t, "workflow", "stages")
	require.NoError(t, err)
	assert.Contains(t, out, `Workflow "submission"`)
	assert.Contains(t, out, "classification")
	assert.Contains(t, out, "confirm")

	out, err = run(t, "workflow", "stages", "--type", "replacement", "--json")
	require.NoError(t, err)

	var body struct {
		Workflow     string `json:"workflow"`
		Confirmation string `json:"confirmation"`
		Stages       []struct {
			Label string `json:"label"`
		} `json:"stages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "replacement", body.Workflow)
	assert.Equal(t, "confirm", body.Confirmation)
	for _, stage := range body.Stages {
		assert.NotEqual(t, "classification", stage.Label)
	}

	_, err = run(t, "workflow", "stages", "--type", "bogus")
	assert.ErrorContains(t, err, "bogus")
}

func TestCategories(t *testing.T) {
	out, err := run(t, "categories", "--archive", "astro-ph", "--json")
	require.NoError(t, err)

	var entries []category.Category
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 6)
	for _, entry := range entries {
		assert.Equal(t, "astro-ph", entry.Archive)
		assert.True(t, entry.Active)
	}

	out, err = run(t, "categories", "--archive", "astro-ph", "--all", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 7)

	out, err = run(t, "categories", "--archive", "astro-ph")
	require.NoError(t, err)
	assert.Contains(t, out, "astro-ph.EP")
	assert.NotContains(t, out, "cond-mat")
}

/*
TestKeygenAndToken writes a key pair, mints a token with it and verifies the
token the way the API does.
*/
func TestKeygenAndToken(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JWT_PRIVATE_KEY_PATH", filepath.Join(dir, "private.pem"))

	out, err := run(t, "keygen", "--dir", dir, "--bits", "1024")
	require.NoError(t, err)
	assert.Contains(t, out, "JWT_PUBLIC_KEY_PATH=")

	publicKey := filepath.Join(dir, "public.pem")
	out, err = run(t, "token",
		"--user", "1234",
		"--forename", "Jane",
		"--surname", "Doe",
		"--endorse", "astro-ph.EP",
		"--jwt-public-key-path", publicKey,
	)
	require.NoError(t, err)

	verifier, err := sec.NewTokenVerifier(publicKey, constants.AuthIssuer)
	require.NoError(t, err)
	claims, err := verifier.VerifyToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "1234", claims.UserID)
	assert.Equal(t, string(sec.RoleSubmitter), claims.Role)
	assert.Equal(t, []string{"astro-ph.EP"}, claims.Endorsements)

	_, err = run(t, "token", "--user", "1234", "--role", "emperor", "--jwt-public-key-path", publicKey)
	assert.ErrorContains(t, err, "emperor")

	_, err = run(t, "token", "--jwt-public-key-path", publicKey)
	assert.Error(t, err, "--user is required")
}

func TestMigrate_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := run(t, "migrate", "status")
	assert.ErrorIs(t, err, errNoDatabase)

	_, err = run(t, "migrate", "up")
	assert.ErrorIs(t, err, errNoDatabase)
}
