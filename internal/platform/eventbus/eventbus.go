// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package eventbus carries domain events between services inside one process.

It wraps a watermill gochannel Pub/Sub. Publishers hand over any JSON
serializable value; subscribers receive the raw payload and decode it into
their own type.

Delivery:

  - At most once per subscriber. Messages are not persisted.
  - Handler errors are logged and the message is acknowledged. gochannel
    redelivers a nacked message immediately, which would spin on a
    permanently failing handler.
*/
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// MetadataEventType is the message metadata key holding the event type.
const MetadataEventType = "event_type"

// Handler receives the event type and its raw JSON payload.
type Handler func(ctx context.Context, eventType string, payload []byte) error

// Publisher is the narrow view services depend on.
type Publisher interface {
	Publish(ctx context.Context, topic, eventType string, event any) error
}

// Bus is an in-process publisher and subscriber.
type Bus struct {
	pubSub *gochannel.GoChannel
	logger *slog.Logger
}

// Options tunes the underlying channel.
type Options struct {
	// OutputChannelBuffer is the per-subscriber buffer.
	OutputChannelBuffer int64

	// BlockPublishUntilSubscriberAck makes Publish synchronous. Tests use it
	// to observe subscriber side effects deterministically.
	BlockPublishUntilSubscriberAck bool
}

// New creates a [Bus] backed by watermill's gochannel implementation.
func New(logger *slog.Logger, options Options) *Bus {
	if options.OutputChannelBuffer <= 0 {
		options.OutputChannelBuffer = 1000
	}

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            options.OutputChannelBuffer,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: options.BlockPublishUntilSubscriberAck,
		},
		watermill.NewSlogLogger(logger),
	)

	return &Bus{pubSub: pubSub, logger: logger}
}

// Publish serializes event as JSON and publishes it on topic.
func (bus *Bus) Publish(ctx context.Context, topic, eventType string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventbus: failed to encode %s: %w", eventType, err)
	}

	msg := message.NewMessage(watermill.NewULID(), payload)
	msg.Metadata.Set(MetadataEventType, eventType)
	msg.SetContext(ctx)

	if err := bus.pubSub.Publish(topic, msg); err != nil {
		return fmt.Errorf("eventbus: failed to publish %s: %w", eventType, err)
	}

	return nil
}

// Subscribe starts a goroutine feeding messages on topic to handler until ctx
// is cancelled or the bus is closed.
func (bus *Bus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := bus.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("eventbus: failed to subscribe to %s: %w", topic, err)
	}

	go func() {
		for msg := range messages {
			eventType := msg.Metadata.Get(MetadataEventType)

			if err := handler(ctx, eventType, msg.Payload); err != nil {
				bus.logger.ErrorContext(ctx, "event_handler_failed",
					slog.String("topic", topic),
					slog.String("event_type", eventType),
					slog.String("message_id", msg.UUID),
					slog.Any("error", err),
				)
			}

			msg.Ack()
		}
	}()

	return nil
}

// Close stops delivery to all subscribers.
func (bus *Bus) Close() error {
	return bus.pubSub.Close()
}
