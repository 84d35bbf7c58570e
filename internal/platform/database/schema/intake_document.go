// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// IntakeDocumentTable represents the 'intake.document' table: announced papers
// that a replacement, withdrawal, cross-list or journal reference may alter.
type IntakeDocumentTable struct {
	Table       string
	ID          string
	PaperID     string
	SubmitterID string
	Title       string
	CreatedAt   string
}

var IntakeDocument = IntakeDocumentTable{
	Table:       "intake.document",
	ID:          "id",
	PaperID:     "paperid",
	SubmitterID: "submitterid",
	Title:       "title",
	CreatedAt:   "createdat",
}
