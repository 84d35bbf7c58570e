// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// IntakeSubmissionVersionTable represents the 'intake.submissionversion' table,
// the arena of announced snapshots.
type IntakeSubmissionVersionTable struct {
	Table        string
	ID           string
	SubmissionID string
	Version      string
	Snapshot     string
	CreatedAt    string
}

var IntakeSubmissionVersion = IntakeSubmissionVersionTable{
	Table:        "intake.submissionversion",
	ID:           "id",
	SubmissionID: "submissionid",
	Version:      "version",
	Snapshot:     "snapshot",
	CreatedAt:    "createdat",
}
