// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/platform/postgres"
)

type countRow struct {
	total int
	err   error
}

func (row countRow) Scan(dest ...any) error {
	if row.err != nil {
		return row.err
	}
	*(dest[0].(*int)) = row.total
	return nil
}

type countQuerier struct {
	row   countRow
	calls int
	sql   string
	args  []any
}

func (querier *countQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	querier.calls++
	querier.sql = sql
	querier.args = args
	return querier.row
}

func TestPageTotal(t *testing.T) {
	ctx := context.Background()
	args := []any{"1234"}

	tests := []struct {
		name        string
		pageLen     int
		windowTotal int
		offset      int
		want        int
		wantCount   bool
	}{
		{"page_with_rows", 2, 5, 0, 5, false},
		{"later_page_with_rows", 1, 5, 4, 5, false},
		{"empty_first_page", 0, 0, 0, 0, false},
		{"past_last_row", 0, 0, 20, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier := &countQuerier{row: countRow{total: 5}}

			total, err := postgres.PageTotal(ctx, querier, "SELECT COUNT(*) FROM intake.submission WHERE ownerid = $1", args, tt.pageLen, tt.windowTotal, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)

			if tt.wantCount {
				assert.Equal(t, 1, querier.calls)
				assert.Equal(t, args, querier.args)
			} else {
				assert.Zero(t, querier.calls)
			}
		})
	}
}

func TestPageTotal_CountFails(t *testing.T) {
	querier := &countQuerier{row: countRow{err: errors.New("connection reset")}}

	_, err := postgres.PageTotal(context.Background(), querier, "SELECT 1", nil, 0, 0, 10)
	assert.ErrorContains(t, err, "connection reset")
}
