// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/platform/apperr"
)

/*
TestConstructors_StatusAndCode pins the HTTP mapping of every error class.
*/
func TestConstructors_StatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		status int
		code   string
	}{
		{"not_found", apperr.NotFound("Submission"), http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", apperr.Unauthorized("no"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", apperr.Forbidden("no"), http.StatusForbidden, "FORBIDDEN"},
		{"invalid_policy", apperr.InvalidPolicy(2, 3), http.StatusBadRequest, "INVALID_POLICY"},
		{"invalid_category", apperr.InvalidCategory(), http.StatusBadRequest, "INVALID_CATEGORY"},
		{"invalid_identifier", apperr.InvalidIdentifier("Submission", "abc"), http.StatusBadRequest, "INVALID_IDENTIFIER"},
		{"invalid_transition", apperr.InvalidTransition("working", "announced"), http.StatusConflict, "INVALID_TRANSITION"},
		{"storage_conflict", apperr.StorageConflict(nil), http.StatusConflict, "STORAGE_CONFLICT"},
		{"unprocessable", apperr.Unprocessable("bad"), http.StatusUnprocessableEntity, "UNPROCESSABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

/*
TestAs_TraversesWrappedChain ensures wrapped AppErrors are still recognised.
*/
func TestAs_TraversesWrappedChain(t *testing.T) {
	cause := errors.New("lock timeout")
	wrapped := fmt.Errorf("save submission: %w", apperr.StorageConflict(cause))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "STORAGE_CONFLICT", ae.Code)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, apperr.IsAppError(wrapped))

	assert.Nil(t, apperr.As(errors.New("plain")))
}
