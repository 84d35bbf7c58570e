// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"fmt"
	"time"
)

// # Annotations
//
// Annotations, proposals and flags are tagged unions. Kind is the
// discriminant; exactly the variant field matching it is set.

// AnnotationKind discriminates [Annotation] variants.
type AnnotationKind string

const (
	AnnotationComment           AnnotationKind = "comment"
	AnnotationClassifierResults AnnotationKind = "classifier_results"
	AnnotationFeature           AnnotationKind = "feature"
)

// ClassifierScore is one suggested category with its probability.
type ClassifierScore struct {
	Category    string  `json:"category"`
	Probability float64 `json:"probability"`
}

// ClassifierResults is the output of the automated classifier.
type ClassifierResults struct {
	Classifier string            `json:"classifier"`
	Results    []ClassifierScore `json:"results"`
}

// FeatureType names an extracted feature.
type FeatureType string

const (
	FeatureCharacterCount FeatureType = "chars"
	FeaturePageCount      FeatureType = "pages"
	FeatureStopwordCount  FeatureType = "stops"
	FeatureWordCount      FeatureType = "words"
)

// Feature is a numeric property extracted from the content.
type Feature struct {
	FeatureType  FeatureType `json:"feature_type"`
	FeatureValue float64     `json:"feature_value"`
}

// Annotation is an event-scoped note attached by an agent.
type Annotation struct {
	EventID           string             `json:"event_id"`
	Created           time.Time          `json:"created"`
	Creator           Agent              `json:"creator"`
	Kind              AnnotationKind     `json:"kind"`
	Comment           *string            `json:"comment,omitempty"`
	ClassifierResults *ClassifierResults `json:"classifier_results,omitempty"`
	Feature           *Feature           `json:"feature,omitempty"`
}

// Validate checks that the variant matches the discriminant.
func (a Annotation) Validate() error {
	variants := 0
	for _, set := range []bool{a.Comment != nil, a.ClassifierResults != nil, a.Feature != nil} {
		if set {
			variants++
		}
	}
	if variants != 1 {
		return fmt.Errorf("annotation must carry exactly one variant, got %d", variants)
	}

	switch a.Kind {
	case AnnotationComment:
		if a.Comment == nil {
			return fmt.Errorf("annotation kind %q requires comment", a.Kind)
		}
	case AnnotationClassifierResults:
		if a.ClassifierResults == nil {
			return fmt.Errorf("annotation kind %q requires classifier_results", a.Kind)
		}
	case AnnotationFeature:
		if a.Feature == nil {
			return fmt.Errorf("annotation kind %q requires feature", a.Kind)
		}
	default:
		return fmt.Errorf("unknown annotation kind %q", a.Kind)
	}
	return nil
}

// # Proposals

// ProposalKind discriminates the change a [Proposal] suggests.
type ProposalKind string

const (
	ProposalSetPrimary      ProposalKind = "set_primary_classification"
	ProposalAddSecondary    ProposalKind = "add_secondary_classification"
	ProposalRemoveSecondary ProposalKind = "remove_secondary_classification"
)

// ProposalStatus tracks moderator review of a proposal.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalRejected ProposalStatus = "rejected"
	ProposalAccepted ProposalStatus = "accepted"
)

// Proposal suggests a reclassification that a moderator may accept.
type Proposal struct {
	EventID  string         `json:"event_id"`
	Created  time.Time      `json:"created"`
	Creator  Agent          `json:"creator"`
	Kind     ProposalKind   `json:"kind"`
	Category string         `json:"category"`
	Comment  string         `json:"comment,omitempty"`
	Status   ProposalStatus `json:"status"`
}

// Validate checks the discriminant.
func (p Proposal) Validate() error {
	switch p.Kind {
	case ProposalSetPrimary, ProposalAddSecondary, ProposalRemoveSecondary:
	default:
		return fmt.Errorf("unknown proposal kind %q", p.Kind)
	}
	if p.Category == "" {
		return fmt.Errorf("proposal kind %q requires a category", p.Kind)
	}
	return nil
}

// TargetFor applies the proposed change to the current classification.
func (p Proposal) TargetFor(primary string, secondaries []string) (string, []string) {
	next := make([]string, 0, len(secondaries)+1)
	switch p.Kind {
	case ProposalSetPrimary:
		for _, code := range secondaries {
			if code != p.Category {
				next = append(next, code)
			}
		}
		if primary != "" && primary != p.Category {
			next = append(next, primary)
		}
		return p.Category, next
	case ProposalAddSecondary:
		next = append(next, secondaries...)
		if p.Category != primary {
			next = append(next, p.Category)
		}
		return primary, next
	case ProposalRemoveSecondary:
		for _, code := range secondaries {
			if code != p.Category {
				next = append(next, code)
			}
		}
		return primary, next
	}
	return primary, append(next, secondaries...)
}

// # Flags

// FlagKind discriminates what a [Flag] points at.
type FlagKind string

const (
	FlagContent  FlagKind = "content"
	FlagMetadata FlagKind = "metadata"
	FlagUser     FlagKind = "user"
)

// Flag marks a problem found during moderation. Field is only meaningful for
// metadata flags.
type Flag struct {
	EventID  string    `json:"event_id"`
	Created  time.Time `json:"created"`
	Creator  Agent     `json:"creator"`
	Kind     FlagKind  `json:"kind"`
	FlagType string    `json:"flag_type"`
	Field    string    `json:"field,omitempty"`
	Comment  string    `json:"comment,omitempty"`
}

// Validate checks the discriminant and the metadata-only field.
func (f Flag) Validate() error {
	switch f.Kind {
	case FlagContent, FlagUser:
		if f.Field != "" {
			return fmt.Errorf("flag kind %q does not take a field", f.Kind)
		}
	case FlagMetadata:
		if f.Field == "" {
			return fmt.Errorf("flag kind %q requires a field", f.Kind)
		}
	default:
		return fmt.Errorf("unknown flag kind %q", f.Kind)
	}
	return nil
}

// # Comments

// Comment is a free-text moderator note.
type Comment struct {
	EventID string    `json:"event_id"`
	Created time.Time `json:"created"`
	Creator Agent     `json:"creator"`
	Body    string    `json:"body"`
}

// # Processes

// ProcessState is the status of an external long-running job.
type ProcessState string

const (
	ProcessPending    ProcessState = "pending"
	ProcessSucceeded  ProcessState = "succeeded"
	ProcessFailed     ProcessState = "failed"
	ProcessTerminated ProcessState = "terminated"
)

// ProcessStatus records one state report of an external job.
type ProcessStatus struct {
	Process string       `json:"process"`
	Status  ProcessState `json:"status"`
	Created time.Time    `json:"created"`
	Creator Agent        `json:"creator"`
	Reason  string       `json:"reason,omitempty"`
}
