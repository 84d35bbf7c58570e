// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/taibuivan/arxsub/internal/core/submission"
	"github.com/taibuivan/arxsub/internal/platform/constants"
	"github.com/taibuivan/arxsub/internal/platform/eventbus"
)

// Subscriber is the part of the bus the [Recorder] needs.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler eventbus.Handler) error
}

// Recorder turns submission events into log entries.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
}

// NewRecorder returns a Recorder that appends to repo.
func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Start subscribes the recorder to the submission event topic. Delivery stops
// when ctx is cancelled.
func (recorder *Recorder) Start(ctx context.Context, bus Subscriber) error {
	return bus.Subscribe(ctx, constants.TopicSubmissionEvents, recorder.Handle)
}

// Handle decodes one event and appends it to the log.
func (recorder *Recorder) Handle(ctx context.Context, eventType string, payload []byte) error {
	var event submission.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("auditlog: decode %s: %w", eventType, err)
	}

	entry := Entry{
		ID:           event.ID,
		SubmissionID: event.SubmissionID,
		EventType:    event.Type,
		AgentID:      event.Creator.Identifier,
		AgentType:    event.Creator.Type,
		Payload:      event.Payload,
		Created:      event.Created,
	}
	if entry.EventType == "" {
		entry.EventType = eventType
	}
	if event.Client != nil {
		entry.ClientAddress = event.Client.RemoteAddress
		entry.ClientHost = event.Client.RemoteHost
	}

	if err := recorder.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("auditlog: append %s: %w", entry.ID, err)
	}

	recorder.logger.DebugContext(ctx, "adminlog_appended",
		slog.Int64("submission_id", entry.SubmissionID),
		slog.String("event_type", entry.EventType),
	)
	return nil
}
