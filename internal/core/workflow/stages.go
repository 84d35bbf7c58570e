// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package workflow

import (
	"github.com/taibuivan/arxsub/internal/core/submission"
)

// # Stage Kinds

const (
	KindVerifyUser       StageKind = "VerifyUser"
	KindAuthorship       StageKind = "Authorship"
	KindLicense          StageKind = "License"
	KindPolicy           StageKind = "Policy"
	KindClassification   StageKind = "Classification"
	KindCrossList        StageKind = "CrossList"
	KindFileUpload       StageKind = "FileUpload"
	KindProcess          StageKind = "Process"
	KindMetadata         StageKind = "Metadata"
	KindOptionalMetadata StageKind = "OptionalMetadata"
	KindFinalPreview     StageKind = "FinalPreview"
	KindConfirm          StageKind = "Confirm"
)

// Workflow names.
const (
	NameSubmission  = "submission"
	NameReplacement = "replacement"
)

// # Stage Builders

// Each builder returns a fresh stage so definitions never share pointers.

func verifyUserStage() *Stage {
	return &Stage{
		Kind: KindVerifyUser, Label: "verify_user", Title: "Verify your personal information",
		MustSee: true, Required: true,
		complete: func(s *submission.Submission) bool { return s.SubmitterContactVerified },
	}
}

func authorshipStage() *Stage {
	return &Stage{
		Kind: KindAuthorship, Label: "authorship", Title: "Confirm authorship",
		Required: true,
		complete: func(s *submission.Submission) bool { return s.SubmitterIsAuthor != nil },
	}
}

func licenseStage() *Stage {
	return &Stage{
		Kind: KindLicense, Label: "license", Title: "Choose a license",
		Required: true,
		complete: func(s *submission.Submission) bool { return s.License != nil && s.License.URI != "" },
	}
}

func policyStage() *Stage {
	return &Stage{
		Kind: KindPolicy, Label: "policy", Title: "Acknowledge policy statement",
		Required: true,
		complete: func(s *submission.Submission) bool {
			return s.SubmitterAcceptsPolicy != nil && *s.SubmitterAcceptsPolicy
		},
	}
}

func classificationStage() *Stage {
	return &Stage{
		Kind: KindClassification, Label: "classification", Title: "Choose a primary category",
		Required: true,
		complete: func(s *submission.Submission) bool { return s.PrimaryClassification != nil },
	}
}

func crossListStage() *Stage {
	return &Stage{
		Kind: KindCrossList, Label: "cross_list", Title: "Choose secondary categories",
		MustSee: true,
	}
}

func fileUploadStage() *Stage {
	return &Stage{
		Kind: KindFileUpload, Label: "file_upload", Title: "Upload your files",
		Required: true,
		complete: func(s *submission.Submission) bool { return s.SourceContent != nil },
	}
}

func processStage() *Stage {
	return &Stage{
		Kind: KindProcess, Label: "process", Title: "Process your files",
		Required: true,
		complete: func(s *submission.Submission) bool { return s.IsSourceProcessed },
	}
}

func metadataStage() *Stage {
	return &Stage{
		Kind: KindMetadata, Label: "metadata", Title: "Add or edit metadata",
		Required: true,
		complete: func(s *submission.Submission) bool {
			return s.Metadata.Title != "" && s.Metadata.Abstract != "" && len(s.Metadata.Authors) > 0
		},
	}
}

func optionalMetadataStage() *Stage {
	return &Stage{
		Kind: KindOptionalMetadata, Label: "optional_metadata", Title: "Add or edit optional metadata",
		MustSee: true,
	}
}

func finalPreviewStage() *Stage {
	return &Stage{
		Kind: KindFinalPreview, Label: "final_preview", Title: "Preview and approve your submission",
		Required: true,
		complete: func(s *submission.Submission) bool { return s.SubmitterConfirmedPreview },
	}
}

// confirmStage is done once the submission is finalized.
func confirmStage() *Stage {
	return &Stage{
		Kind: KindConfirm, Label: "confirm", Title: "Your submission is complete",
		Required: true,
		complete: func(s *submission.Submission) bool { return s.IsFinalized() },
	}
}

// # Catalog

// Catalog holds the workflow variants, built once at startup.
type Catalog struct {
	submission  *Definition
	replacement *Definition
}

// NewCatalog builds the full submission workflow and the replacement
// workflow, which skips classification.
func NewCatalog() (*Catalog, error) {
	confirm := confirmStage()
	full, err := NewDefinition(NameSubmission, []*Stage{
		verifyUserStage(),
		authorshipStage(),
		licenseStage(),
		policyStage(),
		classificationStage(),
		crossListStage(),
		fileUploadStage(),
		processStage(),
		metadataStage(),
		optionalMetadataStage(),
		finalPreviewStage(),
		confirm,
	}, confirm)
	if err != nil {
		return nil, err
	}

	confirm = confirmStage()
	replacement, err := NewDefinition(NameReplacement, []*Stage{
		verifyUserStage(),
		authorshipStage(),
		licenseStage(),
		policyStage(),
		fileUploadStage(),
		processStage(),
		metadataStage(),
		optionalMetadataStage(),
		finalPreviewStage(),
		confirm,
	}, confirm)
	if err != nil {
		return nil, err
	}

	return &Catalog{submission: full, replacement: replacement}, nil
}

// For returns the workflow that applies to a submission type. Replacements
// keep the classification of the paper they replace.
func (catalog *Catalog) For(submissionType submission.Type) *Definition {
	if submissionType == submission.TypeReplacement {
		return catalog.replacement
	}
	return catalog.submission
}

// All returns every workflow variant.
func (catalog *Catalog) All() []*Definition {
	return []*Definition{catalog.submission, catalog.replacement}
}
