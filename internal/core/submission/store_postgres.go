// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/arxsub/internal/core/category"
	"github.com/taibuivan/arxsub/internal/platform/apperr"
	"github.com/taibuivan/arxsub/internal/platform/constants"
	"github.com/taibuivan/arxsub/internal/platform/database/schema"
	"github.com/taibuivan/arxsub/internal/platform/dberr"
	"github.com/taibuivan/arxsub/internal/platform/postgres"
	"github.com/taibuivan/arxsub/pkg/slice"
)

// errLostUpdate marks an optimistic save that lost to a concurrent writer.
var errLostUpdate = errors.New("postgres: submission changed since it was loaded")

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// # PostgreSQL Repository

// postgresRepository stores the aggregate as a JSONB document in
// intake.submission. Classification rows in intake.submissioncategory are
// authoritative and overlay the document on every load.
type postgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresRepository constructs a PostgreSQL backed submission store.
func NewPostgresRepository(pool *pgxpool.Pool, logger *slog.Logger) Repository {
	return &postgresRepository{pool: pool, logger: logger}
}

/*
Create inserts a new submission and assigns its id.

Description: The document and its initial classification rows are written in
one transaction.
*/
func (repository *postgresRepository) Create(context context.Context, s *Submission) error {

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to begin transaction: %w", err), "Submission")
	}
	defer transaction.Rollback(context)

	document, err := json.Marshal(s)
	if err != nil {
		return apperr.Internal(fmt.Errorf("postgres: failed to encode submission: %w", err))
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`,
		schema.IntakeSubmission.Table,
		schema.IntakeSubmission.Status, schema.IntakeSubmission.Type, schema.IntakeSubmission.OwnerID, schema.IntakeSubmission.ArxivID,
		schema.IntakeSubmission.Version, schema.IntakeSubmission.Document, schema.IntakeSubmission.CreatedAt, schema.IntakeSubmission.UpdatedAt,
		schema.IntakeSubmission.ID,
	)

	err = transaction.QueryRow(context, query,
		s.Status, s.Type, s.Owner.Identifier, nullable(s.ArxivID),
		s.Version, document, s.Created, s.Updated,
	).Scan(&s.ID)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to create submission: %w", err), "Submission")
	}

	// Initial classification, if the caller set one
	delta, _ := category.Reconcile(nil, category.Target{Primary: s.PrimaryCategory(), Secondaries: s.SecondaryCategories()})
	if !delta.IsEmpty() {
		tx := &postgresTx{transaction: transaction, submissionID: s.ID}
		if err := tx.ApplyCategoryDelta(context, delta); err != nil {
			return err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to commit submission: %w", err), "Submission")
	}
	return nil
}

// FindByID loads one submission with its classification rows.
func (repository *postgresRepository) FindByID(context context.Context, id int64) (*Submission, error) {
	s, _, err := loadSubmission(context, repository.pool, id, "")
	if err != nil {
		return nil, dberr.Wrap(err, "Submission")
	}
	return s, nil
}

/*
ListByOwner returns one page of an owner's submissions, newest first.

Description: Deleted submissions are hidden unless the filter asks for them.
The total count comes from a window function; a separate COUNT runs only
when the offset is past the last row.
*/
func (repository *postgresRepository) ListByOwner(context context.Context, ownerID string, filter Filter, limit, offset int) ([]*Submission, int, error) {

	var whereBuilder strings.Builder
	args := []any{ownerID}
	argID := 2

	whereBuilder.WriteString(fmt.Sprintf(" WHERE %s = $1", schema.IntakeSubmission.OwnerID))

	// Status filter injection
	if len(filter.Statuses) > 0 {
		statuses := slice.Map(filter.Statuses, func(status Status) string { return string(status) })
		whereBuilder.WriteString(fmt.Sprintf(" AND %s = ANY($%d)", schema.IntakeSubmission.Status, argID))
		args = append(args, statuses)
		argID++
	} else {
		whereBuilder.WriteString(fmt.Sprintf(" AND %s <> '%s'", schema.IntakeSubmission.Status, StatusDeleted))
	}
	where := whereBuilder.String()

	query := fmt.Sprintf(`
		SELECT %s, %s, COUNT(*) OVER() AS total_count
		FROM %s%s
		ORDER BY %s DESC LIMIT $%d OFFSET $%d
	`,
		schema.IntakeSubmission.ID, schema.IntakeSubmission.Document,
		schema.IntakeSubmission.Table, where,
		schema.IntakeSubmission.ID, argID, argID+1,
	)

	rows, err := repository.pool.Query(context, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres: failed to list submissions: %w", err), "Submission")
	}
	defer rows.Close()

	var (
		submissions []*Submission
		ids         []int64
		totalCount  int
	)
	for rows.Next() {
		var id int64
		var document []byte
		if err := rows.Scan(&id, &document, &totalCount); err != nil {
			return nil, 0, dberr.Wrap(fmt.Errorf("postgres: failed to scan submission: %w", err), "Submission")
		}

		s, err := decodeSubmission(id, document)
		if err != nil {
			return nil, 0, err
		}
		submissions = append(submissions, s)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Submission")
	}

	if len(submissions) == 0 {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", schema.IntakeSubmission.Table, where)
		totalCount, err = postgres.PageTotal(context, repository.pool, countQuery, args, 0, totalCount, offset)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Submission")
		}
		return []*Submission{}, totalCount, nil
	}

	// Overlay classification rows for the whole page in one round-trip
	byID, err := categoryRowsFor(context, repository.pool, ids)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Submission")
	}
	for _, s := range submissions {
		primary, secondaries := category.Split(byID[s.ID])
		s.SetClassification(primary, secondaries)
	}

	return submissions, totalCount, nil
}

// FindDocument resolves an announced paper by arXiv id.
func (repository *postgresRepository) FindDocument(context context.Context, paperID string) (*Document, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.IntakeDocument.ID, schema.IntakeDocument.PaperID, schema.IntakeDocument.SubmitterID,
		schema.IntakeDocument.Title, schema.IntakeDocument.CreatedAt,
		schema.IntakeDocument.Table,
		schema.IntakeDocument.PaperID,
	)

	var document Document
	err := repository.pool.QueryRow(context, query, paperID).Scan(
		&document.ID,
		&document.PaperID,
		&document.SubmitterID,
		&document.Title,
		&document.Created,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Document")
	}
	return &document, nil
}

// FindSnapshot loads an announced snapshot from the version arena.
func (repository *postgresRepository) FindSnapshot(context context.Context, snapshotID int64) (*Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.IntakeSubmissionVersion.ID, schema.IntakeSubmissionVersion.SubmissionID, schema.IntakeSubmissionVersion.Version,
		schema.IntakeSubmissionVersion.Snapshot, schema.IntakeSubmissionVersion.CreatedAt,
		schema.IntakeSubmissionVersion.Table,
		schema.IntakeSubmissionVersion.ID,
	)

	var snapshot Snapshot
	var frozen []byte
	err := repository.pool.QueryRow(context, query, snapshotID).Scan(
		&snapshot.ID,
		&snapshot.SubmissionID,
		&snapshot.Version,
		&frozen,
		&snapshot.Created,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Snapshot")
	}

	snapshot.Submission, err = decodeSubmission(snapshot.SubmissionID, frozen)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

/*
Mutate runs fn against a freshly loaded submission inside one transaction.

Retry policy:
  - Lock timeouts, serialization failures, deadlocks and lost optimistic
    updates are retried up to [constants.StorageMaxAttempts] times with a
    doubling delay. Exhaustion surfaces apperr.StorageConflict.
  - A locked mutation is replayed only while acquiring the lock. Once fn has
    run it may have written files outside the transaction, so a later failure
    is final.
*/
func (repository *postgresRepository) Mutate(context context.Context, id int64, options MutateOptions, fn MutateFunc) (*Submission, error) {
	delay := constants.StorageRetryBaseDelay

	for attempt := 1; ; attempt++ {
		s, invoked, err := repository.mutateOnce(context, id, options, fn)
		if err == nil || errors.Is(err, ErrNothingToDo) {
			return s, err
		}

		replayable := !options.Lock || !invoked
		if !dberr.IsRetryable(err) || !replayable {
			return nil, dberr.Wrap(err, "Submission")
		}
		if attempt >= constants.StorageMaxAttempts {
			return nil, apperr.StorageConflict(err)
		}

		repository.logger.WarnContext(context, "submission_mutation_retry",
			slog.Int64("submission_id", id),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)

		select {
		case <-context.Done():
			return nil, context.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (repository *postgresRepository) mutateOnce(context context.Context, id int64, options MutateOptions, fn MutateFunc) (*Submission, bool, error) {

	// ── 1. Transaction ──
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return nil, false, fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	// ── 2. Load, locking the row when asked ──
	lockClause := ""
	if options.Lock {
		timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", constants.StorageLockTimeout.Milliseconds())
		if _, err := transaction.Exec(context, timeout); err != nil {
			return nil, false, fmt.Errorf("postgres: failed to set lock timeout: %w", err)
		}
		lockClause = " FOR UPDATE"
	}

	s, loadedAt, err := loadSubmission(context, transaction, id, lockClause)
	if err != nil {
		return nil, false, err
	}

	// ── 3. Domain change ──
	tx := &postgresTx{transaction: transaction, submissionID: id}
	if err := fn(context, tx, s); err != nil {
		if errors.Is(err, ErrNothingToDo) {
			unchanged, _, loadErr := loadSubmission(context, transaction, id, "")
			if loadErr != nil {
				return nil, true, loadErr
			}
			return unchanged, true, err
		}
		return nil, true, err
	}

	// ── 4. Re-project classification from the rows fn may have rewritten ──
	rows, err := tx.CategoryRows(context)
	if err != nil {
		return nil, true, err
	}
	primary, secondaries := category.Split(rows)
	s.SetClassification(primary, secondaries)

	// ── 5. Save ──
	document, err := json.Marshal(s)
	if err != nil {
		return nil, true, apperr.Internal(fmt.Errorf("postgres: failed to encode submission: %w", err))
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8
		WHERE %s = $1
	`,
		schema.IntakeSubmission.Table,
		schema.IntakeSubmission.Status, schema.IntakeSubmission.Type, schema.IntakeSubmission.OwnerID, schema.IntakeSubmission.ArxivID,
		schema.IntakeSubmission.Version, schema.IntakeSubmission.Document, schema.IntakeSubmission.UpdatedAt,
		schema.IntakeSubmission.ID,
	)
	args := []any{id, s.Status, s.Type, s.Owner.Identifier, nullable(s.ArxivID), s.Version, document, s.Updated}
	if !options.Lock {
		query += fmt.Sprintf(" AND %s = $9", schema.IntakeSubmission.UpdatedAt)
		args = append(args, loadedAt)
	}

	result, err := transaction.Exec(context, query, args...)
	if err != nil {
		return nil, true, fmt.Errorf("postgres: failed to save submission: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, true, apperr.StorageConflict(errLostUpdate)
	}

	// ── 6. Commit ──
	if err := transaction.Commit(context); err != nil {
		return nil, true, fmt.Errorf("postgres: failed to commit submission: %w", err)
	}

	return s, true, nil
}

// Ping checks connectivity.
func (repository *postgresRepository) Ping(context context.Context) error {
	return repository.pool.Ping(context)
}

// # Transaction-Scoped Rows

type postgresTx struct {
	transaction  pgx.Tx
	submissionID int64
}

func (tx *postgresTx) CategoryRows(context context.Context) ([]category.Row, error) {
	byID, err := categoryRowsFor(context, tx.transaction, []int64{tx.submissionID})
	if err != nil {
		return nil, err
	}
	return byID[tx.submissionID], nil
}

/*
ApplyCategoryDelta writes a reconciliation delta.

Description: Statements run removes first, then flags going false, then flags
going true, then inserts. At no point do two rows hold the primary flag, which
the partial unique index would reject.
*/
func (tx *postgresTx) ApplyCategoryDelta(context context.Context, delta category.Delta) error {
	table := schema.IntakeSubmissionCategory

	// 1. Removes
	if len(delta.ToRemove) > 0 {
		query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = ANY($2)", table.Table, table.SubmissionID, table.Category)
		if _, err := tx.transaction.Exec(context, query, tx.submissionID, delta.ToRemove); err != nil {
			return fmt.Errorf("postgres: failed to remove categories: %w", err)
		}
	}

	// 2. Role flips, demotions before promotions
	update := fmt.Sprintf("UPDATE %s SET %s = $3 WHERE %s = $1 AND %s = $2", table.Table, table.IsPrimary, table.SubmissionID, table.Category)
	for _, promote := range []bool{false, true} {
		for _, row := range delta.Reflag {
			if row.IsPrimary != promote {
				continue
			}
			if _, err := tx.transaction.Exec(context, update, tx.submissionID, row.Code, row.IsPrimary); err != nil {
				return fmt.Errorf("postgres: failed to reflag category %s: %w", row.Code, err)
			}
		}
	}

	// 3. Inserts
	insert := fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)", table.Table, table.SubmissionID, table.Category, table.IsPrimary)
	for _, row := range delta.ToAdd {
		if _, err := tx.transaction.Exec(context, insert, tx.submissionID, row.Code, row.IsPrimary); err != nil {
			return fmt.Errorf("postgres: failed to add category %s: %w", row.Code, err)
		}
	}

	return nil
}

func (tx *postgresTx) SaveSnapshot(context context.Context, s *Submission) (int64, error) {
	frozen, err := json.Marshal(s)
	if err != nil {
		return 0, apperr.Internal(fmt.Errorf("postgres: failed to encode snapshot: %w", err))
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`,
		schema.IntakeSubmissionVersion.Table,
		schema.IntakeSubmissionVersion.SubmissionID, schema.IntakeSubmissionVersion.Version,
		schema.IntakeSubmissionVersion.Snapshot, schema.IntakeSubmissionVersion.CreatedAt,
		schema.IntakeSubmissionVersion.ID,
	)

	var id int64
	if err := tx.transaction.QueryRow(context, query, s.ID, s.Version, frozen, s.Updated).Scan(&id); err != nil {
		return 0, fmt.Errorf("postgres: failed to save snapshot: %w", err)
	}
	return id, nil
}

func (tx *postgresTx) RecordDocument(context context.Context, document Document) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s
	`,
		schema.IntakeDocument.Table,
		schema.IntakeDocument.PaperID, schema.IntakeDocument.SubmitterID, schema.IntakeDocument.Title,
		schema.IntakeDocument.ID,
	)

	var id int64
	if err := tx.transaction.QueryRow(context, query, document.PaperID, document.SubmitterID, document.Title).Scan(&id); err != nil {
		return 0, dberr.Wrap(fmt.Errorf("postgres: failed to record document: %w", err), "Document")
	}
	return id, nil
}

// # Helpers

func loadSubmission(context context.Context, db querier, id int64, lockClause string) (*Submission, time.Time, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s
		WHERE %s = $1%s
	`,
		schema.IntakeSubmission.Document, schema.IntakeSubmission.UpdatedAt,
		schema.IntakeSubmission.Table,
		schema.IntakeSubmission.ID, lockClause,
	)

	var document []byte
	var updatedAt time.Time
	if err := db.QueryRow(context, query, id).Scan(&document, &updatedAt); err != nil {
		return nil, time.Time{}, err
	}

	s, err := decodeSubmission(id, document)
	if err != nil {
		return nil, time.Time{}, err
	}

	byID, err := categoryRowsFor(context, db, []int64{id})
	if err != nil {
		return nil, time.Time{}, err
	}
	primary, secondaries := category.Split(byID[id])
	s.SetClassification(primary, secondaries)

	return s, updatedAt, nil
}

func categoryRowsFor(context context.Context, db querier, ids []int64) (map[int64][]category.Row, error) {
	table := schema.IntakeSubmissionCategory
	query := fmt.Sprintf(
		"SELECT %s, %s, %s FROM %s WHERE %s = ANY($1) ORDER BY %s",
		table.SubmissionID, table.Category, table.IsPrimary, table.Table, table.SubmissionID, table.Category,
	)

	rows, err := db.Query(context, query, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to load categories: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]category.Row, len(ids))
	for rows.Next() {
		var submissionID int64
		var row category.Row
		if err := rows.Scan(&submissionID, &row.Code, &row.IsPrimary); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan category: %w", err)
		}
		result[submissionID] = append(result[submissionID], row)
	}
	return result, rows.Err()
}

func decodeSubmission(id int64, document []byte) (*Submission, error) {
	var s Submission
	if err := json.Unmarshal(document, &s); err != nil {
		return nil, apperr.Internal(fmt.Errorf("postgres: failed to decode submission %d: %w", id, err))
	}
	s.ID = id
	s.EnsureCollections()
	return &s, nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
