// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package workflow

import (
	"maps"

	"github.com/taibuivan/arxsub/internal/core/submission"
	"github.com/taibuivan/arxsub/pkg/slice"
)

// Processor evaluates one submission against one workflow. It is built per
// request and never persists anything; the seen map is loaded and saved by
// the caller.
type Processor struct {
	definition *Definition
	submission *submission.Submission
	seen       map[string]bool
}

// NewProcessor wraps a submission snapshot. A nil seen map starts empty.
func NewProcessor(definition *Definition, s *submission.Submission, seen map[string]bool) *Processor {
	if seen == nil {
		seen = map[string]bool{}
	}
	return &Processor{definition: definition, submission: s, seen: seen}
}

// Definition returns the workflow being evaluated.
func (processor *Processor) Definition() *Definition {
	return processor.definition
}

// SeenKey is "<workflow>---<kind>---<label>---".
func (processor *Processor) SeenKey(stage *Stage) string {
	return processor.definition.name + "---" + string(stage.Kind) + "---" + stage.Label + "---"
}

// IsComplete reports whether the submission has been finalized. Stage state
// does not enter into it.
func (processor *Processor) IsComplete() bool {
	return processor.submission.IsFinalized()
}

// IsSeen reports whether the user displayed stage. A nil stage counts as seen.
func (processor *Processor) IsSeen(stage *Stage) bool {
	if stage == nil {
		return true
	}
	return processor.seen[processor.SeenKey(stage)]
}

// MarkSeen records that the user displayed stage.
func (processor *Processor) MarkSeen(stage *Stage) {
	if stage != nil {
		processor.seen[processor.SeenKey(stage)] = true
	}
}

// Seen returns a copy of the seen map.
func (processor *Processor) Seen() map[string]bool {
	return maps.Clone(processor.seen)
}

// IsDone is (!MustSee || seen) && (!Required || complete). A nil stage is done.
func (processor *Processor) IsDone(stage *Stage) bool {
	if stage == nil {
		return true
	}

	seenOK := !stage.MustSee || processor.IsSeen(stage)
	completeOK := !stage.Required || stage.IsComplete(processor.submission)
	return seenOK && completeOK
}

/*
CanProceedTo reports whether every prerequisite of stage is done.

Description: A nil target is always allowed. The confirmation stage requires
every stage of the workflow, itself included; any other stage requires the
stages declared before it.
*/
func (processor *Processor) CanProceedTo(stage *Stage) bool {
	return len(processor.Blocking(stage)) == 0
}

// Blocking returns the prerequisites of stage that are not done, in order.
func (processor *Processor) Blocking(stage *Stage) []*Stage {
	if stage == nil {
		return nil
	}

	required := processor.definition.IterPrior(stage)
	if stage == processor.definition.confirmation {
		required = processor.definition.Order()
	}

	return slice.Filter(required, func(prior *Stage) bool {
		return !processor.IsDone(prior)
	})
}

// CurrentStage returns the first stage that is not done, or nil when every
// stage is.
func (processor *Processor) CurrentStage() *Stage {
	for _, stage := range processor.definition.order {
		if !processor.IsDone(stage) {
			return stage
		}
	}
	return nil
}

// NextStage returns the stage after stage in the workflow.
func (processor *Processor) NextStage(stage *Stage) *Stage {
	return processor.definition.NextStage(stage)
}

// Index returns the position of stage for breadcrumbs.
func (processor *Processor) Index(stage *Stage) int {
	return processor.definition.Index(stage)
}
