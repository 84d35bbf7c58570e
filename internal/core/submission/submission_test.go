// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/core/submission"
	"github.com/taibuivan/arxsub/internal/platform/apperr"
)

func newSubmission() *submission.Submission {
	agent := submission.AgentFromUser(submitter.User)
	return submission.New(submission.TypeNew, agent, &submitter.Client, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
}

/*
TestSubmission_IsOnHold matches holds against waivers by type and only counts
them while the submission is submitted.
*/
func TestSubmission_IsOnHold(t *testing.T) {
	tests := []struct {
		name    string
		status  submission.Status
		holds   []submission.HoldType
		waivers []submission.HoldType
		want    bool
	}{
		{"no_holds", submission.StatusSubmitted, nil, nil, false},
		{"one_hold", submission.StatusSubmitted, []submission.HoldType{submission.HoldPatch}, nil, true},
		{"waived", submission.StatusSubmitted, []submission.HoldType{submission.HoldPatch}, []submission.HoldType{submission.HoldPatch}, false},
		{"other_type_waived", submission.StatusSubmitted, []submission.HoldType{submission.HoldPatch}, []submission.HoldType{submission.HoldPDFOversize}, true},
		{"two_holds_one_waiver", submission.StatusSubmitted, []submission.HoldType{submission.HoldPatch, submission.HoldPatch}, []submission.HoldType{submission.HoldPatch}, false},
		{"working", submission.StatusWorking, []submission.HoldType{submission.HoldPatch}, nil, false},
		{"scheduled", submission.StatusScheduled, []submission.HoldType{submission.HoldSourceOversize}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSubmission()
			s.Status = tt.status
			for i, holdType := range tt.holds {
				s.Holds[string(rune('a'+i))] = submission.Hold{EventID: string(rune('a' + i)), HoldType: holdType}
			}
			for i, waiverType := range tt.waivers {
				s.Waivers[string(rune('a'+i))] = submission.Waiver{EventID: string(rune('a' + i)), WaiverType: waiverType}
			}
			assert.Equal(t, tt.want, s.IsOnHold())
		})
	}
}

func TestSubmission_DerivedPredicates(t *testing.T) {
	tests := []struct {
		status    submission.Status
		active    bool
		finalized bool
		deleted   bool
	}{
		{submission.StatusWorking, true, false, false},
		{submission.StatusSubmitted, true, true, false},
		{submission.StatusScheduled, true, true, false},
		{submission.StatusAnnounced, false, true, false},
		{submission.StatusDeleted, false, false, true},
		{submission.StatusError, true, true, false},
		{submission.StatusWithdrawn, true, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			s := newSubmission()
			s.Status = tt.status
			s.ArxivID = "2101.00001"
			assert.Equal(t, tt.active, s.IsActive())
			assert.Equal(t, tt.finalized, s.IsFinalized())
			assert.Equal(t, tt.deleted, s.IsDeleted())
		})
	}
}

func TestSubmission_IsAnnouncedWithoutIdentifier(t *testing.T) {
	s := newSubmission()
	s.Status = submission.StatusAnnounced

	_, err := s.IsAnnounced()
	assert.ErrorIs(t, err, submission.ErrIntegrity)

	s.ArxivID = "2101.00001"
	announced, err := s.IsAnnounced()
	require.NoError(t, err)
	assert.True(t, announced)
}

func TestSubmission_SetClassificationDropsPrimaryFromSecondaries(t *testing.T) {
	s := newSubmission()

	s.SetClassification("cs.AI", []string{"cs.AI", "cs.CL"})
	assert.Equal(t, "cs.AI", s.PrimaryCategory())
	assert.Equal(t, []string{"cs.CL"}, s.SecondaryCategories())

	s.SetClassification("", nil)
	assert.Nil(t, s.PrimaryClassification)
	assert.Empty(t, s.SecondaryCategories())
}

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to submission.Status
		ok       bool
	}{
		{submission.StatusWorking, submission.StatusSubmitted, true},
		{submission.StatusWorking, submission.StatusScheduled, false},
		{submission.StatusSubmitted, submission.StatusWorking, true},
		{submission.StatusSubmitted, submission.StatusScheduled, true},
		{submission.StatusScheduled, submission.StatusAnnounced, true},
		{submission.StatusScheduled, submission.StatusWorking, false},
		{submission.StatusAnnounced, submission.StatusWorking, false},
		{submission.StatusDeleted, submission.StatusWorking, false},
		{submission.StatusError, submission.StatusWorking, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			s := newSubmission()
			s.Status = tt.from

			err := s.Transition(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, s.Status)
				return
			}

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "INVALID_TRANSITION", ae.Code)
			assert.Equal(t, tt.from, s.Status)
		})
	}

	assert.True(t, submission.StatusAnnounced.IsTerminal())
	assert.True(t, submission.StatusDeleted.IsTerminal())
	assert.False(t, submission.StatusScheduled.IsTerminal())
}

func TestAuthor_Normalize(t *testing.T) {
	composed := submission.Author{Forename: "José", Surname: "Núñez"}.Normalize()
	decomposed := submission.Author{Forename: "Jose\u0301", Surname: " Nu\u0301n\u0303ez "}.Normalize()

	assert.Equal(t, composed.Identifier, decomposed.Identifier)
	assert.Equal(t, "Núñez", decomposed.Surname)
	assert.Len(t, composed.Identifier, 40)

	display := submission.AuthorsDisplay([]submission.Author{
		composed,
		{Forename: "Ada", Initials: "K.", Surname: "Lovelace", Affiliation: "Analytical Society"},
	})
	assert.Equal(t, "José Núñez, Ada K. Lovelace (Analytical Society)", display)
}

func TestLicenseFor(t *testing.T) {
	license, err := submission.LicenseFor(ccBy)
	require.NoError(t, err)
	assert.NotEmpty(t, license.Name)

	_, err = submission.LicenseFor("https://creativecommons.org/licenses/by/4.0/")
	assert.Error(t, err)
}
