// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/platform/sec"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

/*
TestTokenService_RoundTrip signs a token and resolves it back to the same user.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	key := newKey(t)
	service := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "arxsub")

	user := sec.User{
		Identifier:   "1234",
		Username:     "jdoe",
		Role:         sec.RoleSubmitter,
		AgentType:    sec.AgentUser,
		Forename:     "Jane",
		Surname:      "Doe",
		Email:        "jane@example.org",
		Endorsements: []string{"cs.AI"},
	}

	token, err := service.GenerateAccessToken(user, time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)

	resolved := sec.UserFromClaims(claims)
	assert.Equal(t, user, resolved)
	assert.Equal(t, "Jane Doe", resolved.Name())
}

/*
TestTokenService_Rejects covers the failure paths of verification.
*/
func TestTokenService_Rejects(t *testing.T) {
	key := newKey(t)
	service := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "arxsub")
	user := sec.User{Identifier: "1", Role: sec.RoleSubmitter}

	t.Run("expired", func(t *testing.T) {
		token, err := service.GenerateAccessToken(user, -time.Minute)
		require.NoError(t, err)
		_, err = service.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong_issuer", func(t *testing.T) {
		other := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "elsewhere")
		token, err := other.GenerateAccessToken(user, time.Minute)
		require.NoError(t, err)
		_, err = service.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong_key", func(t *testing.T) {
		other := newKey(t)
		forger := sec.NewTokenServiceFromKeys(other, &other.PublicKey, "arxsub")
		token, err := forger.GenerateAccessToken(user, time.Minute)
		require.NoError(t, err)
		_, err = service.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("missing_user_id", func(t *testing.T) {
		token, err := service.GenerateAccessToken(sec.User{}, time.Minute)
		require.NoError(t, err)
		_, err = service.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("verify_only_cannot_sign", func(t *testing.T) {
		verifier := sec.NewTokenServiceFromKeys(nil, &key.PublicKey, "arxsub")
		_, err := verifier.GenerateAccessToken(user, time.Minute)
		assert.ErrorIs(t, err, sec.ErrSigningDisabled)
	})
}

/*
TestUserFromClaims_Defaults degrades unknown roles and agent types.
*/
func TestUserFromClaims_Defaults(t *testing.T) {
	user := sec.UserFromClaims(&sec.AuthClaims{UserID: "9", Role: "wizard", AgentType: "robot"})
	assert.Equal(t, sec.RoleSubmitter, user.Role)
	assert.Equal(t, sec.AgentUser, user.AgentType)
}

func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleModerator))
	assert.True(t, sec.RoleAutomation.AtLeast(sec.RoleSubmitter))
	assert.False(t, sec.RoleSubmitter.AtLeast(sec.RoleAutomation))
	assert.False(t, sec.UserRole("").Valid())
}
