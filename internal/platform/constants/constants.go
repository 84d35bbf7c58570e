// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and identity headers.
  - Storage: Retry budget for lock contention, Redis key prefixes.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "arxsub-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Source packages are streamed through the request body, so this is generous.
	DefaultReadTimeout = 60 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "arxsub"

	// DevTokenTTL is the lifetime of tokens minted by submitctl.
	DevTokenTTL = 12 * time.Hour
)

// # HTTP Headers

const (
	HeaderXRequestID     = "X-Request-ID"
	HeaderXRealIP        = "X-Real-IP"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderXForwardedHost = "X-Forwarded-Host"
	HeaderOrigin         = "Origin"
	HeaderContentType    = "Content-Type"
	HeaderAgentVersion   = "X-Agent-Version"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Storage

const (
	// StorageMaxAttempts bounds retries on lock timeouts and serialization failures.
	StorageMaxAttempts = 3

	// StorageRetryBaseDelay is doubled after each failed attempt.
	StorageRetryBaseDelay = 50 * time.Millisecond

	// StorageLockTimeout is applied with SET LOCAL before SELECT ... FOR UPDATE.
	StorageLockTimeout = 5 * time.Second

	// FileLockRetryDelay is the poll interval while waiting for a file-store lock.
	FileLockRetryDelay = 25 * time.Millisecond
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixWorkflowSeen = "workflow:seen:"
)

// # Event Bus Topics

const (
	TopicSubmissionEvents = "submission.events"
)
