// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"context"
	"fmt"
	"strings"

	"github.com/taibuivan/arxsub/internal/platform/apperr"
	"github.com/taibuivan/arxsub/internal/platform/validate"
	"github.com/taibuivan/arxsub/pkg/pointer"
)

// # Lifecycle Operations

// Finalize submits a working submission once every prior stage is done.
func (service *Service) Finalize(ctx context.Context, actor Actor, id int64) (*Submission, error) {
	return service.mutate(ctx, actor, id, MutateOptions{}, EventFinalized, func(ctx context.Context, _ Tx, s *Submission) (any, error) {
		if s.Status == StatusSubmitted {
			return nil, ErrNothingToDo
		}
		if s.Status != StatusWorking {
			return nil, apperr.InvalidTransition(string(s.Status), string(StatusSubmitted))
		}
		if err := service.gate.ReadyToFinalize(ctx, s); err != nil {
			return nil, err
		}
		if err := s.Transition(StatusSubmitted); err != nil {
			return nil, err
		}

		s.Submitted = pointer.To(service.now())
		return map[string]string{"status": string(s.Status)}, nil
	})
}

// Unfinalize returns a submitted, not yet scheduled, submission to working.
func (service *Service) Unfinalize(ctx context.Context, actor Actor, id int64) (*Submission, error) {
	return service.mutate(ctx, actor, id, MutateOptions{}, EventUnfinalized, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		if s.Status == StatusWorking {
			return nil, ErrNothingToDo
		}
		if s.Status != StatusSubmitted {
			return nil, apperr.InvalidTransition(string(s.Status), string(StatusWorking))
		}
		if err := s.Transition(StatusWorking); err != nil {
			return nil, err
		}

		s.Submitted = nil
		return map[string]string{"status": string(s.Status)}, nil
	})
}

// MarkProcessingForDeposit schedules a submitted submission for announcement.
// Submissions on hold are refused.
func (service *Service) MarkProcessingForDeposit(ctx context.Context, actor Actor, id int64) (*Submission, error) {
	return service.mutate(ctx, actor, id, MutateOptions{}, EventProcessingMarked, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		if s.Status == StatusScheduled {
			return nil, ErrNothingToDo
		}
		if s.IsOnHold() {
			return nil, apperr.Conflict(fmt.Sprintf("Submission is on hold (%s)", joinHoldTypes(s.UnwaivedHoldTypes())))
		}
		if err := s.Transition(StatusScheduled); err != nil {
			return nil, err
		}
		return map[string]string{"status": string(s.Status)}, nil
	})
}

// UnmarkProcessingForDeposit returns a scheduled submission to submitted.
func (service *Service) UnmarkProcessingForDeposit(ctx context.Context, actor Actor, id int64) (*Submission, error) {
	return service.mutate(ctx, actor, id, MutateOptions{}, EventProcessingUnmarked, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		if s.Status == StatusSubmitted {
			return nil, ErrNothingToDo
		}
		if s.Status != StatusScheduled {
			return nil, apperr.InvalidTransition(string(s.Status), string(StatusSubmitted))
		}
		if err := s.Transition(StatusSubmitted); err != nil {
			return nil, err
		}
		return map[string]string{"status": string(s.Status)}, nil
	})
}

// DepositInput carries the identifier assigned at announcement.
type DepositInput struct {
	ArxivID string `json:"arxiv_id"`
}

/*
MarkDeposited announces a scheduled submission.

Description: The submission receives its arXiv id (alterations keep the id of
the paper they alter), is frozen into a version snapshot, and new papers are
registered as documents that later alterations can target.
*/
func (service *Service) MarkDeposited(ctx context.Context, actor Actor, id int64, input DepositInput) (*Submission, error) {
	return service.mutate(ctx, actor, id, MutateOptions{}, EventDeposited, func(ctx context.Context, tx Tx, s *Submission) (any, error) {
		if s.Status == StatusAnnounced {
			return nil, ErrNothingToDo
		}
		if s.Status != StatusScheduled {
			return nil, apperr.InvalidTransition(string(s.Status), string(StatusAnnounced))
		}

		// ── 1. Identifier ──
		if err := (&validate.Validator{}).Custom("arxiv_id", s.ArxivID == "" && input.ArxivID == "", "A new paper needs an arXiv id").Err(); err != nil {
			return nil, err
		}
		switch {
		case s.ArxivID != "" && input.ArxivID != "" && input.ArxivID != s.ArxivID:
			return nil, apperr.Conflict(fmt.Sprintf("Submission alters %s, not %s", s.ArxivID, input.ArxivID))
		case s.ArxivID == "":
			s.ArxivID = input.ArxivID
		}

		if err := s.Transition(StatusAnnounced); err != nil {
			return nil, err
		}
		s.Updated = service.now()

		// ── 2. Document registry ──
		if s.Type == TypeNew {
			documentID, err := tx.RecordDocument(ctx, Document{
				PaperID:     s.ArxivID,
				SubmitterID: s.Owner.Identifier,
				Title:       s.Metadata.Title,
			})
			if err != nil {
				return nil, err
			}
			s.DocumentID = &documentID
		}

		// ── 3. Version snapshot ──
		snapshotID, err := tx.SaveSnapshot(ctx, s)
		if err != nil {
			return nil, err
		}
		s.Versions = append(s.Versions, VersionRef{Version: s.Version, SnapshotID: snapshotID, Announced: s.Updated})

		return map[string]any{"arxiv_id": s.ArxivID, "version": s.Version, "snapshot_id": snapshotID}, nil
	})
}

func joinHoldTypes(types []HoldType) string {
	names := make([]string, 0, len(types))
	for _, holdType := range types {
		names = append(names, string(holdType))
	}
	return strings.Join(names, ", ")
}
