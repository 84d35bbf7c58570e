// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// IntakeAdminLogTable represents the 'intake.adminlog' table
type IntakeAdminLogTable struct {
	Table         string
	ID            string
	SubmissionID  string
	EventType     string
	AgentID       string
	AgentType     string
	ClientAddress string
	ClientHost    string
	Payload       string
	CreatedAt     string
}

var IntakeAdminLog = IntakeAdminLogTable{
	Table:         "intake.adminlog",
	ID:            "id",
	SubmissionID:  "submissionid",
	EventType:     "eventtype",
	AgentID:       "agentid",
	AgentType:     "agenttype",
	ClientAddress: "clientaddress",
	ClientHost:    "clienthost",
	Payload:       "payload",
	CreatedAt:     "createdat",
}
