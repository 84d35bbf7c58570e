// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/arxsub/internal/core/submission"
	"github.com/taibuivan/arxsub/internal/platform/apperr"
	"github.com/taibuivan/arxsub/pkg/slice"
)

// # Views

// StageView is the processor's verdict on one stage.
type StageView struct {
	*Stage
	Index      int  `json:"index"`
	Seen       bool `json:"seen"`
	Complete   bool `json:"complete"`
	Done       bool `json:"done"`
	CanProceed bool `json:"can_proceed"`
}

// View summarizes where a submission stands in its workflow.
type View struct {
	Workflow     string      `json:"workflow"`
	SubmissionID int64       `json:"submission_id"`
	CurrentStage *string     `json:"current_stage"`
	Complete     bool        `json:"complete"`
	Stages       []StageView `json:"stages"`
}

// StageCheck answers whether one stage may be entered.
type StageCheck struct {
	Stage      string   `json:"stage"`
	CanProceed bool     `json:"can_proceed"`
	Blocking   []string `json:"blocking"`
}

// # Service

// Service builds processors from persisted seen state.
type Service struct {
	catalog *Catalog
	seen    SeenStore
	logger  *slog.Logger
}

// NewService constructs a new workflow [Service].
func NewService(catalog *Catalog, seen SeenStore, logger *slog.Logger) *Service {
	return &Service{catalog: catalog, seen: seen, logger: logger}
}

// Processor loads the seen map and wraps s.
func (service *Service) Processor(ctx context.Context, s *submission.Submission) (*Processor, error) {
	seen, err := service.seen.Load(ctx, s.ID)
	if err != nil {
		return nil, apperr.ServiceUnavailable("Workflow state is not available").WithCause(err)
	}
	return NewProcessor(service.catalog.For(s.Type), s, seen), nil
}

/*
ReadyToFinalize checks that every stage before confirmation is done.

Description: Called inside the finalize transaction, so the submission state
it judges is the one about to be committed.

Returns:
  - error: apperr.Conflict naming the stages still open
*/
func (service *Service) ReadyToFinalize(ctx context.Context, s *submission.Submission) error {
	processor, err := service.Processor(ctx, s)
	if err != nil {
		return err
	}

	definition := processor.Definition()
	open := slice.Map(slice.Filter(definition.IterPrior(definition.Confirmation()), func(stage *Stage) bool {
		return !processor.IsDone(stage)
	}), labelOf)

	if len(open) > 0 {
		service.logger.Info("finalize_blocked",
			slog.Int64("submission_id", s.ID),
			slog.Any("open_stages", open),
		)
		return apperr.Conflict(fmt.Sprintf("Stages not done: %s", strings.Join(open, ", ")))
	}
	return nil
}

// View evaluates every stage of the submission's workflow.
func (service *Service) View(ctx context.Context, s *submission.Submission) (*View, error) {
	processor, err := service.Processor(ctx, s)
	if err != nil {
		return nil, err
	}
	return viewOf(processor, s), nil
}

// Check reports whether the stage with the given label may be entered.
func (service *Service) Check(ctx context.Context, s *submission.Submission, label string) (*StageCheck, error) {
	processor, err := service.Processor(ctx, s)
	if err != nil {
		return nil, err
	}

	stage, ok := processor.Definition().StageByLabel(label)
	if !ok {
		return nil, apperr.NotFound("Stage")
	}

	blocking := slice.Map(processor.Blocking(stage), labelOf)
	if blocking == nil {
		blocking = []string{}
	}

	return &StageCheck{Stage: stage.Label, CanProceed: len(blocking) == 0, Blocking: blocking}, nil
}

// MarkSeen records that the submitter displayed a stage and returns the new view.
func (service *Service) MarkSeen(ctx context.Context, s *submission.Submission, label string) (*View, error) {
	processor, err := service.Processor(ctx, s)
	if err != nil {
		return nil, err
	}

	stage, ok := processor.Definition().StageByLabel(label)
	if !ok {
		return nil, apperr.NotFound("Stage")
	}

	if !processor.IsSeen(stage) {
		if err := service.seen.MarkSeen(ctx, s.ID, processor.SeenKey(stage)); err != nil {
			return nil, apperr.ServiceUnavailable("Workflow state is not available").WithCause(err)
		}
		processor.MarkSeen(stage)

		service.logger.Info("workflow_stage_seen",
			slog.Int64("submission_id", s.ID),
			slog.String("workflow", processor.Definition().Name()),
			slog.String("stage", stage.Label),
		)
	}

	return viewOf(processor, s), nil
}

// Workflows lists every variant for operator tooling.
func (service *Service) Workflows() []*Definition {
	return service.catalog.All()
}

func viewOf(processor *Processor, s *submission.Submission) *View {
	view := &View{
		Workflow:     processor.Definition().Name(),
		SubmissionID: s.ID,
		Complete:     processor.IsComplete(),
	}

	if current := processor.CurrentStage(); current != nil {
		label := current.Label
		view.CurrentStage = &label
	}

	for _, stage := range processor.Definition().Order() {
		view.Stages = append(view.Stages, StageView{
			Stage:      stage,
			Index:      processor.Index(stage),
			Seen:       processor.IsSeen(stage),
			Complete:   stage.IsComplete(s),
			Done:       processor.IsDone(stage),
			CanProceed: processor.CanProceedTo(stage),
		})
	}
	return view
}

func labelOf(stage *Stage) string {
	return stage.Label
}
