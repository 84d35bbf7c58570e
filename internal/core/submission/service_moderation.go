// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"context"

	"github.com/taibuivan/arxsub/internal/core/category"
	"github.com/taibuivan/arxsub/internal/platform/apperr"
	"github.com/taibuivan/arxsub/internal/platform/validate"
	"github.com/taibuivan/arxsub/pkg/uuidv7"
)

// # Quality Control
//
// Every entry is keyed by a fresh event id. None of these operations is
// restricted by status; moderation continues after announcement.

// HoldInput places or waives a hold.
type HoldInput struct {
	Type   HoldType `json:"hold_type" validate:"required,oneof=patch source_oversize pdf_oversize"`
	Reason string   `json:"reason" validate:"max=1000"`
}

func (input HoldInput) check() error {
	return (&validate.Validator{}).OneOf("hold_type", string(input.Type), holdTypeNames...).Err()
}

// AddHold blocks announcement until a waiver of the same type exists.
func (service *Service) AddHold(ctx context.Context, actor Actor, id int64, input HoldInput) (*Submission, error) {
	if err := input.check(); err != nil {
		return nil, err
	}

	return service.mutate(ctx, actor, id, MutateOptions{}, EventHoldAdded, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		return service.placeHold(s, actor, input.Type, input.Reason, false), nil
	})
}

// AddWaiver cancels every hold of the given type.
func (service *Service) AddWaiver(ctx context.Context, actor Actor, id int64, input HoldInput) (*Submission, error) {
	if err := input.check(); err != nil {
		return nil, err
	}

	return service.mutate(ctx, actor, id, MutateOptions{}, EventWaiverAdded, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		waiver := Waiver{
			EventID:      uuidv7.New(),
			Created:      service.now(),
			Creator:      actor.Agent(),
			WaiverType:   input.Type,
			WaiverReason: input.Reason,
		}
		s.Waivers[waiver.EventID] = waiver
		return waiver, nil
	})
}

// AddProposal records a pending reclassification suggestion.
func (service *Service) AddProposal(ctx context.Context, actor Actor, id int64, proposal Proposal) (*Submission, error) {
	if err := proposal.Validate(); err != nil {
		return nil, apperr.ValidationError(err.Error())
	}
	if _, ok := service.taxonomy.Lookup(proposal.Category); !ok {
		return nil, apperr.InvalidCategory(apperr.FieldError{Field: "category", Message: "Unknown category"})
	}

	return service.mutate(ctx, actor, id, MutateOptions{}, EventProposalAdded, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		proposal.EventID = uuidv7.New()
		proposal.Created = service.now()
		proposal.Creator = actor.Agent()
		proposal.Status = ProposalPending
		s.Proposals[proposal.EventID] = proposal
		return proposal, nil
	})
}

/*
DecideProposal accepts or rejects a pending proposal.

Description: Accepting applies the proposed change through the category
reconciler in the same transaction, exactly like a submitter's setCategories.
*/
func (service *Service) DecideProposal(ctx context.Context, actor Actor, id int64, eventID string, accept bool) (*Submission, error) {
	return service.mutate(ctx, actor, id, MutateOptions{}, EventProposalDecided, func(ctx context.Context, tx Tx, s *Submission) (any, error) {
		proposal, ok := s.Proposals[eventID]
		if !ok {
			return nil, apperr.NotFound("Proposal")
		}

		status := ProposalRejected
		if accept {
			status = ProposalAccepted
		}
		if proposal.Status == status {
			return nil, ErrNothingToDo
		}
		if proposal.Status != ProposalPending {
			return nil, apperr.Conflict("The proposal was already decided")
		}

		payload := map[string]any{"proposal_id": eventID, "status": status}
		if accept {
			primary, secondaries := proposal.TargetFor(s.PrimaryCategory(), s.SecondaryCategories())
			target := category.Target{Primary: primary, Secondaries: secondaries}
			if err := service.taxonomy.Validate(target); err != nil {
				return nil, err
			}

			rows, err := tx.CategoryRows(ctx)
			if err != nil {
				return nil, err
			}
			delta, change := category.Reconcile(rows, target)
			if err := tx.ApplyCategoryDelta(ctx, delta); err != nil {
				return nil, err
			}
			applied, appliedSecondaries := category.Split(category.Apply(rows, delta))
			s.SetClassification(applied, appliedSecondaries)
			payload["change"] = change
		}

		proposal.Status = status
		s.Proposals[eventID] = proposal
		return payload, nil
	})
}

// AddAnnotation attaches a comment, classifier results or an extracted feature.
func (service *Service) AddAnnotation(ctx context.Context, actor Actor, id int64, annotation Annotation) (*Submission, error) {
	if err := annotation.Validate(); err != nil {
		return nil, apperr.ValidationError(err.Error())
	}

	return service.mutate(ctx, actor, id, MutateOptions{}, EventAnnotationAdded, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		annotation.EventID = uuidv7.New()
		annotation.Created = service.now()
		annotation.Creator = actor.Agent()
		s.Annotations[annotation.EventID] = annotation
		return annotation, nil
	})
}

// AddFlag records a content, metadata or user problem.
func (service *Service) AddFlag(ctx context.Context, actor Actor, id int64, flag Flag) (*Submission, error) {
	if err := flag.Validate(); err != nil {
		return nil, apperr.ValidationError(err.Error())
	}

	return service.mutate(ctx, actor, id, MutateOptions{}, EventFlagAdded, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		flag.EventID = uuidv7.New()
		flag.Created = service.now()
		flag.Creator = actor.Agent()
		s.Flags[flag.EventID] = flag
		return flag, nil
	})
}

// AddComment records a moderator note.
func (service *Service) AddComment(ctx context.Context, actor Actor, id int64, body string) (*Submission, error) {
	if err := (&validate.Validator{}).Required("body", body).Err(); err != nil {
		return nil, err
	}

	return service.mutate(ctx, actor, id, MutateOptions{}, EventCommentAdded, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		comment := Comment{
			EventID: uuidv7.New(),
			Created: service.now(),
			Creator: actor.Agent(),
			Body:    body,
		}
		s.Comments[comment.EventID] = comment
		return comment, nil
	})
}

// ProcessInput reports the state of an external job.
type ProcessInput struct {
	Process string       `json:"process" validate:"required,max=100"`
	Status  ProcessState `json:"status" validate:"required,oneof=pending succeeded failed terminated"`
	Reason  string       `json:"reason" validate:"max=1000"`
}

// ReportProcess appends a process status entry.
func (service *Service) ReportProcess(ctx context.Context, actor Actor, id int64, input ProcessInput) (*Submission, error) {
	return service.mutate(ctx, actor, id, MutateOptions{}, EventProcessReported, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		status := ProcessStatus{
			Process: input.Process,
			Status:  input.Status,
			Created: service.now(),
			Creator: actor.Agent(),
			Reason:  input.Reason,
		}
		s.Processes = append(s.Processes, status)
		return status, nil
	})
}

// # Helpers

func (service *Service) placeHold(s *Submission, actor Actor, holdType HoldType, reason string, automatic bool) Hold {
	hold := Hold{
		EventID:    uuidv7.New(),
		Created:    service.now(),
		Creator:    actor.Agent(),
		HoldType:   holdType,
		HoldReason: reason,
		Automatic:  automatic,
	}
	s.Holds[hold.EventID] = hold
	return hold
}

func hasHold(s *Submission, holdType HoldType) bool {
	for _, hold := range s.Holds {
		if hold.HoldType == holdType {
			return true
		}
	}
	return false
}

// releaseAutomaticHolds drops the holds of holdType that an upload placed.
// Holds placed by a moderator stay until waived.
func releaseAutomaticHolds(s *Submission, holdType HoldType) int {
	released := 0
	for eventID, hold := range s.Holds {
		if hold.HoldType == holdType && hold.Automatic {
			delete(s.Holds, eventID)
			released++
		}
	}
	return released
}
