// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/taibuivan/arxsub/internal/core/category"
	"github.com/taibuivan/arxsub/internal/platform/apperr"
	"github.com/taibuivan/arxsub/internal/platform/constants"
	"github.com/taibuivan/arxsub/internal/platform/eventbus"
	"github.com/taibuivan/arxsub/internal/platform/filestore"
	"github.com/taibuivan/arxsub/internal/platform/sec"
	"github.com/taibuivan/arxsub/internal/platform/validate"
	"github.com/taibuivan/arxsub/pkg/uuidv7"
)

// # Collaborators

// FileStore is the part of the file store the service writes through.
type FileStore interface {
	StoreSourcePackage(ctx context.Context, submissionID int64, content io.Reader) (filestore.Receipt, error)
	StorePreview(ctx context.Context, submissionID int64, content io.Reader) (filestore.Receipt, error)
	IsAvailable() bool
}

// FinalizeGate decides whether every stage before confirmation is done.
type FinalizeGate interface {
	ReadyToFinalize(ctx context.Context, s *Submission) error
}

// Options are the policy knobs read from configuration.
type Options struct {
	ActivePolicyID          int
	MaxSourceBytes          int64
	SerializeFileOperations bool
}

// Actor is the agent performing an operation and the client they used.
type Actor struct {
	User   sec.User
	Client sec.Client
}

// Agent returns the actor as a submission [Agent].
func (actor Actor) Agent() Agent {
	return AgentFromUser(actor.User)
}

// # Service Layer

// Service orchestrates every operation on submissions.
type Service struct {
	repo      Repository
	taxonomy  *category.Taxonomy
	files     FileStore
	gate      FinalizeGate
	publisher eventbus.Publisher
	options   Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs a new [Service] with its collaborators.
func NewService(
	repo Repository,
	taxonomy *category.Taxonomy,
	files FileStore,
	gate FinalizeGate,
	publisher eventbus.Publisher,
	options Options,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		taxonomy:  taxonomy,
		files:     files,
		gate:      gate,
		publisher: publisher,
		options:   options,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// # Creation & Retrieval

// StartInput opens a new submission or an alteration of an announced paper.
type StartInput struct {
	Type    Type   `json:"submission_type" validate:"required,oneof=new replacement withdrawal cross jref"`
	PaperID string `json:"paper_id"`
}

/*
Start creates a working submission owned by the actor.

Description: Alterations (replacement, withdrawal, cross-list, journal ref)
must name an announced paper, and only that paper's submitter may alter it.

Returns:
  - *Submission: The stored submission with its assigned id
  - error: apperr.NotFound for an unknown paper, apperr.Unauthorized when the
    actor did not submit it
*/
func (service *Service) Start(ctx context.Context, actor Actor, input StartInput) (*Submission, error) {
	v := &validate.Validator{}
	v.OneOf("submission_type", string(input.Type), typeNames...)
	if input.Type.AltersExisting() {
		v.Custom("paper_id", input.PaperID == "", "An alteration must name the announced paper")
		if input.PaperID != "" {
			v.ArxivID("paper_id", input.PaperID)
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	s := New(input.Type, actor.Agent(), &actor.Client, service.now())

	// Alterations target an announced paper submitted by the same agent
	if input.Type.AltersExisting() {
		document, err := service.repo.FindDocument(ctx, input.PaperID)
		if err != nil {
			return nil, err
		}
		if document.SubmitterID != actor.User.Identifier {
			return nil, apperr.Unauthorized("Only the submitter of the announced paper may alter it")
		}

		s.ArxivID = document.PaperID
		s.DocumentID = &document.ID
	}

	if err := service.repo.Create(ctx, s); err != nil {
		return nil, err
	}

	service.logger.Info("submission_started",
		slog.Int64("submission_id", s.ID),
		slog.String("submission_type", string(s.Type)),
		slog.String("owner_id", s.Owner.Identifier),
	)
	service.publish(ctx, EventStarted, actor, s, input)

	return s, nil
}

// Get returns a submission the actor may see.
func (service *Service) Get(ctx context.Context, actor Actor, id int64) (*Submission, error) {
	s, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, s); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns one page of the actor's own submissions.
func (service *Service) List(ctx context.Context, actor Actor, filter Filter, limit, offset int) ([]*Submission, int, error) {
	v := &validate.Validator{}
	for _, status := range filter.Statuses {
		v.Custom("status", !status.IsValid(), "Unknown status "+string(status))
	}
	if err := v.Err(); err != nil {
		return nil, 0, err
	}
	return service.repo.ListByOwner(ctx, actor.User.Identifier, filter, limit, offset)
}

// Snapshot returns an announced version of a submission.
func (service *Service) Snapshot(ctx context.Context, actor Actor, id int64, version int) (*Snapshot, error) {
	s, err := service.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	for _, ref := range s.Versions {
		if ref.Version == version {
			return service.repo.FindSnapshot(ctx, ref.SnapshotID)
		}
	}
	return nil, apperr.NotFound("Version")
}

// Delete moves a submission to deleted. Records are never destroyed.
func (service *Service) Delete(ctx context.Context, actor Actor, id int64) (*Submission, error) {
	return service.mutate(ctx, actor, id, MutateOptions{}, EventDeleted, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		if s.IsDeleted() {
			return nil, ErrNothingToDo
		}
		if err := s.Transition(StatusDeleted); err != nil {
			return nil, err
		}
		return map[string]string{"status": string(StatusDeleted)}, nil
	})
}

// # Helpers

// changeFunc applies one operation and returns the event payload.
type changeFunc func(ctx context.Context, tx Tx, s *Submission) (any, error)

/*
mutate runs change inside one storage transaction and publishes the event
after commit. ErrNothingToDo is swallowed and the unchanged state returned.
*/
func (service *Service) mutate(ctx context.Context, actor Actor, id int64, options MutateOptions, eventType string, change changeFunc) (*Submission, error) {
	var payload any

	s, err := service.repo.Mutate(ctx, id, options, func(ctx context.Context, tx Tx, s *Submission) error {
		if err := authorize(actor, s); err != nil {
			return err
		}

		result, err := change(ctx, tx, s)
		if err != nil {
			return err
		}

		payload = result
		s.Updated = service.now()
		return nil
	})

	if errors.Is(err, ErrNothingToDo) {
		service.logger.Debug("submission_unchanged",
			slog.Int64("submission_id", id),
			slog.String("event_type", eventType),
		)
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	service.logger.Info(eventType, slog.Int64("submission_id", s.ID))
	service.publish(ctx, eventType, actor, s, payload)
	return s, nil
}

// publish hands the event to the bus. A lost event is logged, never surfaced:
// the change is already committed.
func (service *Service) publish(ctx context.Context, eventType string, actor Actor, s *Submission, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		service.logger.Error("event_encode_failed", slog.String("event_type", eventType), slog.Any("error", err))
		return
	}

	client := actor.Client
	event := Event{
		ID:           uuidv7.New(),
		Type:         eventType,
		SubmissionID: s.ID,
		Creator:      actor.Agent(),
		Client:       &client,
		Created:      service.now(),
		Payload:      body,
	}

	if err := service.publisher.Publish(ctx, constants.TopicSubmissionEvents, eventType, event); err != nil {
		service.logger.Error("event_publish_failed",
			slog.Int64("submission_id", s.ID),
			slog.String("event_type", eventType),
			slog.Any("error", err),
		)
	}
}

// authorize lets the owner, and any pipeline or moderation role, act.
func authorize(actor Actor, s *Submission) error {
	if s.OwnedBy(actor.User) || actor.User.Role.AtLeast(sec.RoleAutomation) {
		return nil
	}
	return apperr.Forbidden("You do not own this submission")
}

// ensureWorking rejects edits once the submission left the working status.
func ensureWorking(s *Submission) error {
	if s.Status != StatusWorking {
		return apperr.Conflict(fmt.Sprintf("Submission is %s and can no longer be edited", s.Status))
	}
	return nil
}
