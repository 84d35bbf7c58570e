// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/arxsub/internal/platform/constants"
	"github.com/taibuivan/arxsub/internal/platform/respond"
)

// HealthDependencies holds the injectable dependency checkers for the /ready
// and /status endpoints. A nil checker is skipped.
type HealthDependencies struct {
	// Backend names the configured submission storage.
	Backend string

	// CheckDatabase pings the PostgreSQL pool. Nil for the memory backend.
	CheckDatabase func() error

	// CheckCache pings the Redis client.
	CheckCache func() error

	// CheckFileStore reports whether the source package root is mounted.
	CheckFileStore func() bool
}

var errFileStoreUnavailable = errors.New("file store root is not mounted")

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewHealthHandlers creates the /health, /ready and /status handlers.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness, status http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness, handler.status
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

// readiness handles GET /ready (Readiness probe).
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	results, ready := handler.check(request)

	if !ready {
		respond.WithStatus(writer, http.StatusServiceUnavailable, map[string]any{
			constants.FieldStatus: "degraded",
			constants.FieldChecks: results,
		})
		return
	}

	respond.OK(writer, map[string]any{
		constants.FieldStatus: "ready",
		constants.FieldChecks: results,
	})
}

/*
GET /api/v1/status.

Reports the application, its version, the storage backend and whether the
file store volume is mounted. Always 200; use /ready for gating traffic.
*/
func (handler *healthHandler) status(writer http.ResponseWriter, request *http.Request) {
	results, ready := handler.check(request)

	respond.OK(writer, map[string]any{
		constants.FieldApp:     constants.AppName,
		constants.FieldVersion: constants.AppVersion,
		"backend":              handler.dependencies.Backend,
		"ready":                ready,
		constants.FieldChecks:  results,
	})
}

func (handler *healthHandler) check(request *http.Request) ([]checkResult, bool) {
	results := make([]checkResult, 0, 3)
	ready := true

	record := func(name string, err error) {
		result := checkResult{Name: name, IsOK: err == nil}
		if err != nil {
			result.Error = err.Error()
			ready = false
			handler.logger.ErrorContext(request.Context(), "readiness_check_failed",
				slog.String("dependency", name),
				slog.Any("error", err),
			)
		}
		results = append(results, result)
	}

	if handler.dependencies.CheckDatabase != nil {
		record("postgres", handler.dependencies.CheckDatabase())
	}

	if handler.dependencies.CheckCache != nil {
		record("redis", handler.dependencies.CheckCache())
	}

	if handler.dependencies.CheckFileStore != nil {
		var err error
		if !handler.dependencies.CheckFileStore() {
			err = errFileStoreUnavailable
		}
		record("filestore", err)
	}

	return results, ready
}
