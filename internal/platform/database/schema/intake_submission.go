// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the intake database so that
// queries are assembled from constants instead of string literals.
package schema

// IntakeSubmissionTable represents the 'intake.submission' table.
// The aggregate body lives in Document; the remaining columns are projections
// used for filtering and locking.
type IntakeSubmissionTable struct {
	Table     string
	ID        string
	Status    string
	Type      string
	OwnerID   string
	ArxivID   string
	Version   string
	Document  string
	CreatedAt string
	UpdatedAt string
}

// IntakeSubmission is the schema definition for intake.submission
var IntakeSubmission = IntakeSubmissionTable{
	Table:     "intake.submission",
	ID:        "id",
	Status:    "status",
	Type:      "type",
	OwnerID:   "ownerid",
	ArxivID:   "arxivid",
	Version:   "version",
	Document:  "document",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}
