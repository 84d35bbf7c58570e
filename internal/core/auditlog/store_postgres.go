// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auditlog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/arxsub/internal/platform/database/schema"
	"github.com/taibuivan/arxsub/internal/platform/dberr"
	"github.com/taibuivan/arxsub/internal/platform/postgres"
	"github.com/taibuivan/arxsub/internal/platform/sec"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) Append(context context.Context, entry Entry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (%s) DO NOTHING;
	`,
		schema.IntakeAdminLog.Table,
		schema.IntakeAdminLog.ID,
		schema.IntakeAdminLog.SubmissionID,
		schema.IntakeAdminLog.EventType,
		schema.IntakeAdminLog.AgentID,
		schema.IntakeAdminLog.AgentType,
		schema.IntakeAdminLog.ClientAddress,
		schema.IntakeAdminLog.ClientHost,
		schema.IntakeAdminLog.Payload,
		schema.IntakeAdminLog.CreatedAt,
		schema.IntakeAdminLog.ID,
	)

	payload := entry.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	_, err := repository.db.Exec(context, query,
		entry.ID,
		entry.SubmissionID,
		entry.EventType,
		entry.AgentID,
		string(entry.AgentType),
		entry.ClientAddress,
		entry.ClientHost,
		payload,
		entry.Created,
	)
	return dberr.Wrap(err, "append_adminlog")
}

func (repository *PostgresRepository) ListBySubmission(context context.Context, submissionID int64, limit, offset int) ([]*Entry, int, error) {
	query := fmt.Sprintf(`
		SELECT %s::text, %s, %s, %s, %s, %s, %s, %s, %s, COUNT(*) OVER()
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC, %s ASC
		LIMIT $2 OFFSET $3;
	`,
		schema.IntakeAdminLog.ID,
		schema.IntakeAdminLog.SubmissionID,
		schema.IntakeAdminLog.EventType,
		schema.IntakeAdminLog.AgentID,
		schema.IntakeAdminLog.AgentType,
		schema.IntakeAdminLog.ClientAddress,
		schema.IntakeAdminLog.ClientHost,
		schema.IntakeAdminLog.Payload,
		schema.IntakeAdminLog.CreatedAt,
		schema.IntakeAdminLog.Table,
		schema.IntakeAdminLog.SubmissionID,
		schema.IntakeAdminLog.CreatedAt,
		schema.IntakeAdminLog.ID,
	)

	rows, err := repository.db.Query(context, query, submissionID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_adminlog")
	}
	defer rows.Close()

	entries := []*Entry{}
	total := 0
	for rows.Next() {
		entry := &Entry{}
		var agentType string
		var payload []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.SubmissionID,
			&entry.EventType,
			&entry.AgentID,
			&agentType,
			&entry.ClientAddress,
			&entry.ClientHost,
			&payload,
			&entry.Created,
			&total,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_adminlog")
		}
		entry.AgentType = sec.AgentType(agentType)
		entry.Payload = payload
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_adminlog")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1", schema.IntakeAdminLog.Table, schema.IntakeAdminLog.SubmissionID)
	total, err = postgres.PageTotal(context, repository.db, countQuery, []any{submissionID}, len(entries), total, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "count_adminlog")
	}

	return entries, total, nil
}
