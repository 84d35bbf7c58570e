// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"context"
	"slices"
	"time"

	"github.com/taibuivan/arxsub/internal/core/category"
)

// # Data Access Interfaces

// Document is an announced paper that an alteration may target.
type Document struct {
	ID          int64     `json:"document_id"`
	PaperID     string    `json:"paper_id"`
	SubmitterID string    `json:"submitter_id"`
	Title       string    `json:"title"`
	Created     time.Time `json:"created"`
}

// Filter narrows [Repository.ListByOwner]. An empty filter lists every
// status except deleted.
type Filter struct {
	Statuses []Status
}

// Matches reports whether a submission in status passes the filter.
func (filter Filter) Matches(status Status) bool {
	if len(filter.Statuses) == 0 {
		return status != StatusDeleted
	}
	return slices.Contains(filter.Statuses, status)
}

// MutateOptions tunes one [Repository.Mutate] call.
type MutateOptions struct {
	// Lock loads the row with SELECT ... FOR UPDATE. Without it the save is
	// guarded by an optimistic check on the last update time.
	Lock bool
}

// MutateFunc changes s inside the storage transaction. Returning an error
// rolls the transaction back; [ErrNothingToDo] rolls back silently.
//
// An unlocked mutation may run fn again on a freshly loaded submission after
// a lost update, so fn must not consume its inputs twice.
type MutateFunc func(ctx context.Context, tx Tx, s *Submission) error

// Tx exposes the rows that live beside the aggregate document. Everything it
// writes commits or rolls back with the submission.
type Tx interface {
	// CategoryRows returns the authoritative classification rows.
	CategoryRows(ctx context.Context) ([]category.Row, error)

	// ApplyCategoryDelta writes a reconciliation delta.
	ApplyCategoryDelta(ctx context.Context, delta category.Delta) error

	// SaveSnapshot freezes the submission and returns the snapshot id.
	SaveSnapshot(ctx context.Context, s *Submission) (int64, error)

	// RecordDocument registers an announced paper.
	RecordDocument(ctx context.Context, document Document) (int64, error)
}

// Repository is the storage collaborator for submissions.
type Repository interface {
	// Create assigns an id and stores a new submission.
	Create(ctx context.Context, s *Submission) error

	// FindByID returns NotFound for unknown ids.
	FindByID(ctx context.Context, id int64) (*Submission, error)

	// ListByOwner returns one page of the owner's submissions and the total.
	ListByOwner(ctx context.Context, ownerID string, filter Filter, limit, offset int) ([]*Submission, int, error)

	// FindDocument looks up an announced paper by its arXiv id.
	FindDocument(ctx context.Context, paperID string) (*Document, error)

	// FindSnapshot returns an announced snapshot.
	FindSnapshot(ctx context.Context, snapshotID int64) (*Snapshot, error)

	// Mutate loads, changes and saves one submission in a single transaction.
	// The returned submission is the saved state, or the loaded state when fn
	// returned [ErrNothingToDo].
	Mutate(ctx context.Context, id int64, options MutateOptions, fn MutateFunc) (*Submission, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
