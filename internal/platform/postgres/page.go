// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// RowQuerier is satisfied by *pgxpool.Pool and pgx.Tx.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

/*
PageTotal settles the total for a page read with COUNT(*) OVER().

Description: The window count rides on the returned rows, so a page past the
last row carries no total. Only then countQuery runs with args.

Parameters:
  - pageLen: Rows scanned for the page
  - windowTotal: The total scanned from the window column
  - offset: The page offset
*/
func PageTotal(ctx context.Context, querier RowQuerier, countQuery string, args []any, pageLen, windowTotal, offset int) (int, error) {
	if pageLen > 0 || offset == 0 {
		return windowTotal, nil
	}

	var total int
	if err := querier.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("postgres: failed to count rows: %w", err)
	}
	return total, nil
}
