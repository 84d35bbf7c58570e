// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"encoding/json"
	"time"

	"github.com/taibuivan/arxsub/internal/platform/sec"
)

// # Event Types

const (
	EventStarted            = "submission_started"
	EventDeleted            = "submission_deleted"
	EventPolicyAccepted     = "policy_accepted"
	EventLicenseSet         = "license_set"
	EventAuthorshipAsserted = "authorship_asserted"
	EventCategoriesSet      = "categories_reconciled"
	EventMetadataSet        = "metadata_set"
	EventUserVerified       = "contact_verified"
	EventSourceUploaded     = "source_uploaded"
	EventPreviewStored      = "preview_stored"
	EventPreviewConfirmed   = "preview_confirmed"
	EventFinalized          = "submission_finalized"
	EventUnfinalized        = "submission_unfinalized"
	EventProcessingMarked   = "processing_for_deposit_marked"
	EventProcessingUnmarked = "processing_for_deposit_unmarked"
	EventDeposited          = "submission_deposited"
	EventHoldAdded          = "hold_added"
	EventWaiverAdded        = "waiver_added"
	EventProposalAdded      = "proposal_added"
	EventAnnotationAdded    = "annotation_added"
	EventFlagAdded          = "flag_added"
	EventCommentAdded       = "comment_added"
	EventProcessReported    = "process_status_reported"
	EventProposalDecided    = "proposal_decided"
)

// Event records one committed change to a submission. It is published on the
// bus after the storage transaction commits.
type Event struct {
	ID           string          `json:"event_id"`
	Type         string          `json:"event_type"`
	SubmissionID int64           `json:"submission_id"`
	Creator      Agent           `json:"creator"`
	Client       *sec.Client     `json:"client,omitempty"`
	Created      time.Time       `json:"created"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}
