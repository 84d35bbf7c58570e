// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package workflow describes the intake stages a submission passes through and
evaluates where a given submission stands.

A [Definition] is the static, ordered list of stages for one workflow variant.
A [Processor] combines a definition with a submission snapshot and the per
user "seen" record to answer which stage is current and which may be entered.

Core Responsibility:

  - Order: stage order is fixed at construction and doubles as the
    prerequisite set of every stage.
  - Predicates: a stage is done when it was seen (if it must be) and its data
    is complete (if it is required).
  - No cache: the current stage is recomputed on every call, so a submission
    whose data regresses falls back to the earlier stage.
*/
package workflow

import (
	"errors"
	"fmt"

	"github.com/taibuivan/arxsub/internal/core/submission"
)

// # Domain Types

// StageKind identifies the class of a stage. It is part of the seen key, so
// two workflows may share labels without sharing seen state.
type StageKind string

// CompletionFunc reports whether the data a stage collects is present.
type CompletionFunc func(s *submission.Submission) bool

// Stage is one named step of the intake workflow.
type Stage struct {
	Kind     StageKind `json:"kind"`
	Label    string    `json:"label"`
	Title    string    `json:"title"`
	MustSee  bool      `json:"must_see"`
	Required bool      `json:"required"`

	complete CompletionFunc
}

// IsComplete evaluates the completion predicate. A stage without one is
// always complete.
func (stage *Stage) IsComplete(s *submission.Submission) bool {
	if stage.complete == nil {
		return true
	}
	return stage.complete(s)
}

// # Definition

// ErrInvalidDefinition is returned by [NewDefinition] for malformed input.
var ErrInvalidDefinition = errors.New("workflow: invalid definition")

// Definition is an immutable ordered sequence of stages with a designated
// confirmation stage in last position.
type Definition struct {
	name         string
	order        []*Stage
	confirmation *Stage
	positions    map[string]int
}

/*
NewDefinition validates and freezes a workflow.

Returns:
  - *Definition: The immutable workflow
  - error: ErrInvalidDefinition when the name is empty, there are no stages,
    a label repeats, or the confirmation stage is not the last one
*/
func NewDefinition(name string, stages []*Stage, confirmation *Stage) (*Definition, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidDefinition)
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: %s has no stages", ErrInvalidDefinition, name)
	}

	positions := make(map[string]int, len(stages))
	for index, stage := range stages {
		if stage == nil || stage.Label == "" {
			return nil, fmt.Errorf("%w: %s stage %d has no label", ErrInvalidDefinition, name, index)
		}
		if _, exists := positions[stage.Label]; exists {
			return nil, fmt.Errorf("%w: %s repeats stage %q", ErrInvalidDefinition, name, stage.Label)
		}
		positions[stage.Label] = index
	}

	if confirmation == nil || stages[len(stages)-1] != confirmation {
		return nil, fmt.Errorf("%w: %s confirmation stage must be last", ErrInvalidDefinition, name)
	}

	order := make([]*Stage, len(stages))
	copy(order, stages)

	return &Definition{
		name:         name,
		order:        order,
		confirmation: confirmation,
		positions:    positions,
	}, nil
}

// Name returns the workflow name.
func (definition *Definition) Name() string {
	return definition.name
}

// Order returns the stages in declared order.
func (definition *Definition) Order() []*Stage {
	order := make([]*Stage, len(definition.order))
	copy(order, definition.order)
	return order
}

// Confirmation returns the designated last stage.
func (definition *Definition) Confirmation() *Stage {
	return definition.confirmation
}

// NextStage returns the stage after current, the first stage for nil, and
// nil past the end or for a stage of another workflow.
func (definition *Definition) NextStage(current *Stage) *Stage {
	if current == nil {
		return definition.order[0]
	}

	index := definition.Index(current)
	if index < 0 || index+1 >= len(definition.order) {
		return nil
	}
	return definition.order[index+1]
}

// IterPrior returns every stage declared strictly before stage.
func (definition *Definition) IterPrior(stage *Stage) []*Stage {
	index := definition.Index(stage)
	if index <= 0 {
		return []*Stage{}
	}

	prior := make([]*Stage, index)
	copy(prior, definition.order[:index])
	return prior
}

// Index returns the position of stage, or -1 when it is not part of the workflow.
func (definition *Definition) Index(stage *Stage) int {
	if stage == nil {
		return -1
	}

	index, ok := definition.positions[stage.Label]
	if !ok || definition.order[index] != stage {
		return -1
	}
	return index
}

// StageByLabel looks a stage up by its label.
func (definition *Definition) StageByLabel(label string) (*Stage, bool) {
	index, ok := definition.positions[label]
	if !ok {
		return nil, false
	}
	return definition.order[index], true
}
