// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package workflow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/core/submission"
	"github.com/taibuivan/arxsub/internal/core/workflow"
	"github.com/taibuivan/arxsub/pkg/pointer"
)

// # Fixtures

func working() *submission.Submission {
	s := submission.New(submission.TypeNew, submission.Agent{Identifier: "1234"}, nil, time.Now())
	s.ID = 7
	return s
}

// ready returns a submission whose every required stage before confirmation
// is complete.
func ready() *submission.Submission {
	s := working()
	s.SubmitterContactVerified = true
	s.SubmitterIsAuthor = pointer.To(true)
	s.License = &submission.License{URI: "http://creativecommons.org/licenses/by/4.0/"}
	s.SubmitterAcceptsPolicy = pointer.To(true)
	s.SetClassification("astro-ph.EP", nil)
	s.SourceContent = &submission.SourceContent{Identifier: "7", Checksum: "abc"}
	s.IsSourceProcessed = true
	s.Metadata.Title = "Orbits"
	s.Metadata.Abstract = "We study orbits."
	s.Metadata.Authors = []submission.Author{{Forename: "Jane", Surname: "Doe"}}
	s.SubmitterConfirmedPreview = true
	return s
}

func definitionFor(t *testing.T) *workflow.Definition {
	t.Helper()
	catalog, err := workflow.NewCatalog()
	require.NoError(t, err)
	return catalog.For(submission.TypeNew)
}

func stage(t *testing.T, definition *workflow.Definition, label string) *workflow.Stage {
	t.Helper()
	found, ok := definition.StageByLabel(label)
	require.True(t, ok, label)
	return found
}

// seeAll marks every must-see stage before confirmation as seen.
func seeAll(processor *workflow.Processor) {
	definition := processor.Definition()
	for _, prior := range definition.IterPrior(definition.Confirmation()) {
		if prior.MustSee {
			processor.MarkSeen(prior)
		}
	}
}

// # Tests

/*
TestProcessor_IsDone covers the four combinations of the must-see and
required flags.
*/
func TestProcessor_IsDone(t *testing.T) {
	neither := &workflow.Stage{Kind: "N", Label: "neither"}
	mustSee := &workflow.Stage{Kind: "S", Label: "must_see", MustSee: true}
	required := &workflow.Stage{Kind: "R", Label: "required", Required: true}
	confirm := &workflow.Stage{Kind: "C", Label: "confirm"}

	definition, err := workflow.NewDefinition("w", []*workflow.Stage{neither, mustSee, required, confirm}, confirm)
	require.NoError(t, err)

	processor := workflow.NewProcessor(definition, working(), nil)

	assert.True(t, processor.IsDone(nil))
	assert.True(t, processor.IsDone(neither))
	assert.False(t, processor.IsDone(mustSee))
	assert.True(t, processor.IsDone(required), "a stage without a predicate is complete")

	processor.MarkSeen(mustSee)
	assert.True(t, processor.IsSeen(mustSee))
	assert.True(t, processor.IsDone(mustSee))
	assert.True(t, processor.IsSeen(nil))
}

func TestProcessor_SeenKey(t *testing.T) {
	definition := definitionFor(t)
	processor := workflow.NewProcessor(definition, working(), nil)

	verify := stage(t, definition, "verify_user")
	assert.Equal(t, "submission---VerifyUser---verify_user---", processor.SeenKey(verify))

	processor.MarkSeen(verify)
	assert.Equal(t, map[string]bool{"submission---VerifyUser---verify_user---": true}, processor.Seen())

	// Seen state from another workflow does not leak
	replacement := workflow.NewProcessor(mustCatalog(t).For(submission.TypeReplacement), working(), processor.Seen())
	replacementVerify, _ := replacement.Definition().StageByLabel("verify_user")
	assert.False(t, replacement.IsSeen(replacementVerify))
}

func mustCatalog(t *testing.T) *workflow.Catalog {
	t.Helper()
	catalog, err := workflow.NewCatalog()
	require.NoError(t, err)
	return catalog
}

func TestProcessor_CurrentStageWalksForward(t *testing.T) {
	definition := definitionFor(t)
	s := working()
	processor := workflow.NewProcessor(definition, s, nil)

	assert.Equal(t, "verify_user", processor.CurrentStage().Label)

	s.SubmitterContactVerified = true
	assert.Equal(t, "verify_user", processor.CurrentStage().Label, "must also be seen")

	processor.MarkSeen(stage(t, definition, "verify_user"))
	assert.Equal(t, "authorship", processor.CurrentStage().Label)

	s.SubmitterIsAuthor = pointer.To(true)
	s.License = &submission.License{URI: "x"}
	s.SubmitterAcceptsPolicy = pointer.To(true)
	assert.Equal(t, "classification", processor.CurrentStage().Label)

	s.SetClassification("astro-ph.EP", nil)
	assert.Equal(t, "cross_list", processor.CurrentStage().Label)
}

func TestProcessor_MonotonicWithoutChanges(t *testing.T) {
	definition := definitionFor(t)
	processor := workflow.NewProcessor(definition, ready(), nil)

	first := processor.CurrentStage()
	second := processor.CurrentStage()
	assert.Same(t, first, second)
}

func TestProcessor_Regression(t *testing.T) {
	definition := definitionFor(t)
	s := ready()
	processor := workflow.NewProcessor(definition, s, nil)
	seeAll(processor)

	assert.Equal(t, "confirm", processor.CurrentStage().Label)

	// An operator removes the primary category after the stage was passed
	s.SetClassification("", nil)
	assert.Equal(t, "classification", processor.CurrentStage().Label)
	assert.False(t, processor.CanProceedTo(stage(t, definition, "file_upload")))
	assert.True(t, processor.CanProceedTo(stage(t, definition, "classification")))
}

func TestProcessor_CanProceedTo(t *testing.T) {
	definition := definitionFor(t)
	s := ready()
	processor := workflow.NewProcessor(definition, s, nil)
	confirm := definition.Confirmation()

	assert.True(t, processor.CanProceedTo(nil))
	assert.True(t, processor.CanProceedTo(stage(t, definition, "verify_user")))
	assert.False(t, processor.CanProceedTo(stage(t, definition, "authorship")), "verify_user not seen")

	seeAll(processor)
	assert.True(t, processor.CanProceedTo(stage(t, definition, "final_preview")))

	// Confirmation needs every stage, itself included
	assert.False(t, processor.CanProceedTo(confirm))
	assert.Equal(t, []*workflow.Stage{confirm}, processor.Blocking(confirm))

	s.Status = submission.StatusSubmitted
	assert.True(t, processor.CanProceedTo(confirm))
	assert.True(t, processor.IsComplete())
	assert.Nil(t, processor.CurrentStage())
}

func TestProcessor_IsCompleteFollowsFinalization(t *testing.T) {
	definition := definitionFor(t)
	s := working()
	processor := workflow.NewProcessor(definition, s, nil)
	assert.False(t, processor.IsComplete())

	s.Status = submission.StatusScheduled
	assert.True(t, processor.IsComplete(), "finalization is authoritative even with open stages")
}
