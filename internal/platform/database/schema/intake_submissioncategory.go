// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// IntakeSubmissionCategoryTable represents the 'intake.submissioncategory' table
type IntakeSubmissionCategoryTable struct {
	Table        string
	SubmissionID string
	Category     string
	IsPrimary    string
}

var IntakeSubmissionCategory = IntakeSubmissionCategoryTable{
	Table:        "intake.submissioncategory",
	SubmissionID: "submissionid",
	Category:     "category",
	IsPrimary:    "isprimary",
}
