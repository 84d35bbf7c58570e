// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/platform/apperr"
	"github.com/taibuivan/arxsub/internal/platform/dberr"
)

/*
TestWrap_Classification maps driver errors to application error codes.
*/
func TestWrap_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no_rows", pgx.ErrNoRows, "NOT_FOUND"},
		{"lock_timeout", &pgconn.PgError{Code: pgerrcode.LockNotAvailable}, "STORAGE_CONFLICT"},
		{"serialization", fmt.Errorf("commit: %w", &pgconn.PgError{Code: pgerrcode.SerializationFailure}), "STORAGE_CONFLICT"},
		{"unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, "CONFLICT"},
		{"other", errors.New("connection reset"), "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := apperr.As(dberr.Wrap(tt.err, "Submission"))
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "Submission"))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, dberr.IsRetryable(&pgconn.PgError{Code: pgerrcode.DeadlockDetected}))
	assert.True(t, dberr.IsRetryable(apperr.StorageConflict(nil)))
	assert.False(t, dberr.IsRetryable(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, dberr.IsRetryable(errors.New("boom")))
}
