// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package submission defines the submission aggregate and the operations that
move it through intake.

A submission is created in the working status by Start, mutated field by field
by stage operations (policy, license, authorship, categories, metadata, files),
finalized by the submitter, then scheduled and announced by the deposit
pipeline. Records are never physically destroyed; deletion is a status.

Core Responsibility:

  - Aggregate: status, ownership, classification, metadata and the
    quality-control collections keyed by event id.
  - Lifecycle: an explicit transition table (see status.go).
  - Derived predicates: is_active, is_announced, is_finalized, is_deleted,
    is_on_hold. They are computed, never stored.
*/
package submission

import (
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/arxsub/internal/platform/sec"
)

// # Domain Enums

// Status is the lifecycle position of a submission.
type Status string

const (
	StatusWorking   Status = "working"
	StatusSubmitted Status = "submitted"
	StatusScheduled Status = "scheduled"
	StatusAnnounced Status = "announced"
	StatusDeleted   Status = "deleted"
	StatusError     Status = "error"
	StatusWithdrawn Status = "withdrawn"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case
		StatusWorking,
		StatusSubmitted,
		StatusScheduled,
		StatusAnnounced,
		StatusDeleted,
		StatusError,
		StatusWithdrawn:
		return true
	}
	return false
}

// Type distinguishes a fresh submission from alterations of an announced paper.
type Type string

const (
	TypeNew         Type = "new"
	TypeReplacement Type = "replacement"
	TypeWithdrawal  Type = "withdrawal"
	TypeCross       Type = "cross"
	TypeJournalRef  Type = "jref"
)

var typeNames = []string{
	string(TypeNew), string(TypeReplacement), string(TypeWithdrawal), string(TypeCross), string(TypeJournalRef),
}

// IsValid reports whether t is a recognised [Type] value.
func (t Type) IsValid() bool {
	switch t {
	case TypeNew, TypeReplacement, TypeWithdrawal, TypeCross, TypeJournalRef:
		return true
	}
	return false
}

// AltersExisting reports whether the type targets an announced paper.
func (t Type) AltersExisting() bool {
	return t.IsValid() && t != TypeNew
}

// # Value Objects

// Classification is one assigned taxonomy code.
type Classification struct {
	Category string `json:"category"`
}

// License is the distribution license chosen by the submitter.
type License struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// Metadata is the descriptive record of the paper. Every field is optional and
// independently settable.
type Metadata struct {
	Title          string   `json:"title,omitempty"`
	Abstract       string   `json:"abstract,omitempty"`
	Authors        []Author `json:"authors,omitempty"`
	AuthorsDisplay string   `json:"authors_display,omitempty"`
	Comments       string   `json:"comments,omitempty"`
	DOI            string   `json:"doi,omitempty"`
	MSCClass       string   `json:"msc_class,omitempty"`
	ACMClass       string   `json:"acm_class,omitempty"`
	ReportNum      string   `json:"report_num,omitempty"`
	JournalRef     string   `json:"journal_ref,omitempty"`
}

// # Aggregate

// Submission is the central intake record.
type Submission struct {
	ID     int64  `json:"submission_id"`
	Type   Type   `json:"submission_type"`
	Status Status `json:"status"`

	Creator Agent       `json:"creator"`
	Owner   Agent       `json:"owner"`
	Proxy   *Agent      `json:"proxy,omitempty"`
	Client  *sec.Client `json:"client,omitempty"`

	// ProxyAuthorEmail is the author a proxy submitter acts for
	ProxyAuthorEmail string `json:"proxy_author_email,omitempty"`

	Created   time.Time  `json:"created"`
	Updated   time.Time  `json:"updated"`
	Submitted *time.Time `json:"submitted,omitempty"`

	// Alterations of an announced paper
	ArxivID    string `json:"arxiv_id,omitempty"`
	DocumentID *int64 `json:"document_id,omitempty"`

	SubmitterIsAuthor         *bool `json:"submitter_is_author,omitempty"`
	SubmitterAcceptsPolicy    *bool `json:"submitter_accepts_policy,omitempty"`
	AgreementID               *int  `json:"agreement_id,omitempty"`
	SubmitterContactVerified  bool  `json:"submitter_contact_verified"`
	SubmitterConfirmedPreview bool  `json:"submitter_confirmed_preview"`
	IsSourceProcessed         bool  `json:"is_source_processed"`

	License                 *License         `json:"license,omitempty"`
	Metadata                Metadata         `json:"metadata"`
	PrimaryClassification   *Classification  `json:"primary_classification,omitempty"`
	SecondaryClassification []Classification `json:"secondary_classification"`

	SourceContent *SourceContent `json:"source_content,omitempty"`
	Preview       *Preview       `json:"preview,omitempty"`

	ReasonForWithdrawal string `json:"reason_for_withdrawal,omitempty"`

	// Quality control, keyed by event id
	Proposals   map[string]Proposal   `json:"proposals"`
	Annotations map[string]Annotation `json:"annotations"`
	Flags       map[string]Flag       `json:"flags"`
	Comments    map[string]Comment    `json:"comments"`
	Holds       map[string]Hold       `json:"holds"`
	Waivers     map[string]Waiver     `json:"waivers"`
	Processes   []ProcessStatus       `json:"processes"`

	Version  int          `json:"version"`
	Versions []VersionRef `json:"versions"`
}

// New returns a working submission owned and created by agent.
func New(submissionType Type, agent Agent, client *sec.Client, now time.Time) *Submission {
	return &Submission{
		Type:                    submissionType,
		Status:                  StatusWorking,
		Creator:                 agent,
		Owner:                   agent,
		Client:                  client,
		Created:                 now,
		Updated:                 now,
		SecondaryClassification: []Classification{},
		Proposals:               map[string]Proposal{},
		Annotations:             map[string]Annotation{},
		Flags:                   map[string]Flag{},
		Comments:                map[string]Comment{},
		Holds:                   map[string]Hold{},
		Waivers:                 map[string]Waiver{},
		Processes:               []ProcessStatus{},
		Version:                 1,
		Versions:                []VersionRef{},
	}
}

// EnsureCollections replaces nil collections after decoding partial documents.
func (s *Submission) EnsureCollections() {
	if s.SecondaryClassification == nil {
		s.SecondaryClassification = []Classification{}
	}
	if s.Proposals == nil {
		s.Proposals = map[string]Proposal{}
	}
	if s.Annotations == nil {
		s.Annotations = map[string]Annotation{}
	}
	if s.Flags == nil {
		s.Flags = map[string]Flag{}
	}
	if s.Comments == nil {
		s.Comments = map[string]Comment{}
	}
	if s.Holds == nil {
		s.Holds = map[string]Hold{}
	}
	if s.Waivers == nil {
		s.Waivers = map[string]Waiver{}
	}
	if s.Processes == nil {
		s.Processes = []ProcessStatus{}
	}
	if s.Versions == nil {
		s.Versions = []VersionRef{}
	}
}

// # Derived Predicates

// ErrIntegrity marks a stored submission that violates an aggregate invariant.
var ErrIntegrity = errors.New("submission: integrity fault")

// IsActive reports status NOT IN {deleted, announced}.
func (s *Submission) IsActive() bool {
	return s.Status != StatusDeleted && s.Status != StatusAnnounced
}

// IsAnnounced reports status == announced. An announced submission without an
// arXiv id is an integrity fault, not a false result.
func (s *Submission) IsAnnounced() (bool, error) {
	if s.Status != StatusAnnounced {
		return false, nil
	}
	if s.ArxivID == "" {
		return false, fmt.Errorf("%w: submission %d is announced without an arxiv id", ErrIntegrity, s.ID)
	}
	return true, nil
}

// IsFinalized reports status NOT IN {working, deleted}.
func (s *Submission) IsFinalized() bool {
	return s.Status != StatusWorking && s.Status != StatusDeleted
}

// IsDeleted reports status == deleted.
func (s *Submission) IsDeleted() bool {
	return s.Status == StatusDeleted
}

// IsOnHold reports status == submitted with at least one hold type that no
// waiver covers. Holds and waivers are matched by type only.
func (s *Submission) IsOnHold() bool {
	if s.Status != StatusSubmitted {
		return false
	}
	return len(s.UnwaivedHoldTypes()) > 0
}

// UnwaivedHoldTypes returns hold types minus waiver types.
func (s *Submission) UnwaivedHoldTypes() []HoldType {
	waived := make(map[HoldType]struct{}, len(s.Waivers))
	for _, waiver := range s.Waivers {
		waived[waiver.WaiverType] = struct{}{}
	}

	seen := make(map[HoldType]struct{}, len(s.Holds))
	var result []HoldType
	for _, hold := range s.Holds {
		if _, ok := waived[hold.HoldType]; ok {
			continue
		}
		if _, ok := seen[hold.HoldType]; ok {
			continue
		}
		seen[hold.HoldType] = struct{}{}
		result = append(result, hold.HoldType)
	}
	return result
}

// PrimaryCategory returns the primary code or "".
func (s *Submission) PrimaryCategory() string {
	if s.PrimaryClassification == nil {
		return ""
	}
	return s.PrimaryClassification.Category
}

// SecondaryCategories returns the secondary codes.
func (s *Submission) SecondaryCategories() []string {
	result := make([]string, 0, len(s.SecondaryClassification))
	for _, classification := range s.SecondaryClassification {
		result = append(result, classification.Category)
	}
	return result
}

// SetClassification replaces the classification projection. The primary is
// dropped from the secondaries so it never appears twice.
func (s *Submission) SetClassification(primary string, secondaries []string) {
	if primary == "" {
		s.PrimaryClassification = nil
	} else {
		s.PrimaryClassification = &Classification{Category: primary}
	}

	s.SecondaryClassification = make([]Classification, 0, len(secondaries))
	for _, code := range secondaries {
		if code != primary {
			s.SecondaryClassification = append(s.SecondaryClassification, Classification{Category: code})
		}
	}
}

// OwnedBy reports whether user owns the submission.
func (s *Submission) OwnedBy(user sec.User) bool {
	return s.Owner.Identifier == user.Identifier
}
