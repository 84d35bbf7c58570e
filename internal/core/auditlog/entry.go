// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auditlog keeps the administrative history of every submission.

Entries are written by a subscriber on the event bus, after the change they
describe has been committed, and read back by moderators. The log is append
only.
*/
package auditlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/taibuivan/arxsub/internal/platform/sec"
)

// Entry is one recorded change.
type Entry struct {
	ID            string          `json:"id"`
	SubmissionID  int64           `json:"submission_id"`
	EventType     string          `json:"event_type"`
	AgentID       string          `json:"agent_id"`
	AgentType     sec.AgentType   `json:"agent_type"`
	ClientAddress string          `json:"client_address,omitempty"`
	ClientHost    string          `json:"client_host,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	Created       time.Time       `json:"created"`
}

// Repository persists log entries.
type Repository interface {
	// Append stores an entry. Appending an id twice is a no-op.
	Append(ctx context.Context, entry Entry) error

	// ListBySubmission returns one page of entries, oldest first, and the total.
	ListBySubmission(ctx context.Context, submissionID int64, limit, offset int) ([]*Entry, int, error)
}
