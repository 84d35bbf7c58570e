// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec resolves bearer credentials into identities.
//
// # Architecture
//
// Tokens are issued by the identity provider in front of the submission
// system. This package only verifies their RS256 signature and maps the
// claims to a [User]. Minting is kept for operator tooling (submitctl) and
// tests, and is only available when a private key is loaded.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSigningDisabled is returned by [TokenService.GenerateAccessToken] when
// the service was built without a private key.
var ErrSigningDisabled = errors.New("auth: token signing is disabled (no private key)")

// AuthClaims represents the payload embedded inside a JWT Access Token.
//
// # Profile claims
//
// The submitter's profile (name, email, endorsements) travels inside the token
// so the API can stamp agents on submissions without calling the identity
// provider on every request.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID       string   `json:"uid"`
	Username     string   `json:"unm"`
	Role         string   `json:"rol"`
	AgentType    string   `json:"typ,omitempty"`
	Forename     string   `json:"fn,omitempty"`
	Surname      string   `json:"sn,omitempty"`
	Suffix       string   `json:"sfx,omitempty"`
	Email        string   `json:"eml,omitempty"`
	Affiliation  string   `json:"aff,omitempty"`
	Endorsements []string `json:"end,omitempty"`
}

// TokenService handles generation and verification of JWT tokens using RS256.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

// NewTokenVerifier creates a verify-only [TokenService] from a public key file.
func NewTokenVerifier(publicKeyPath, issuer string) (*TokenService, error) {
	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to parse public key: %w", err)
	}

	return NewTokenServiceFromKeys(nil, publicKey, issuer), nil
}

// NewTokenService creates a signing and verifying [TokenService].
// It reads RSA keys from the provided filesystem paths.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	service, err := NewTokenVerifier(publicKeyPath, issuer)
	if err != nil {
		return nil, err
	}

	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to parse private key: %w", err)
	}

	service.privateKey = privateKey
	return service, nil
}

// NewTokenServiceFromKeys builds a [TokenService] from parsed keys.
// privateKey may be nil for a verify-only service.
func NewTokenServiceFromKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string) *TokenService {
	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
	}
}

// GenerateAccessToken signs a token carrying the given user's profile.
func (service *TokenService) GenerateAccessToken(user User, timeToLive time.Duration) (string, error) {
	if service.privateKey == nil {
		return "", ErrSigningDisabled
	}

	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Identifier,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID:       user.Identifier,
		Username:     user.Username,
		Role:         string(user.Role),
		AgentType:    string(user.AgentType),
		Forename:     user.Forename,
		Surname:      user.Surname,
		Suffix:       user.Suffix,
		Email:        user.Email,
		Affiliation:  user.Affiliation,
		Endorsements: user.Endorsements,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature, issuer and validity of a JWT string.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
		}
		return service.publicKey, nil
	}, jwt.WithIssuer(service.issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("auth: token has no user id")
	}

	return claims, nil
}
