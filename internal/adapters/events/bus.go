// Package events delivers domain events over an in-process watermill pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

const metadataEventType = "event_type"

// Bus publishes domain.Event values on topics named after the event type.
// Events published with no subscriber are dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            64,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewSlogLogger(logger),
	)
	return &Bus{pubsub: pubsub, logger: logger}
}

func (b *Bus) Publish(ctx context.Context, evt domain.Event) error {
	if evt.Type == "" {
		return fmt.Errorf("publish event: %w", domain.ErrMissingField)
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", evt.Type, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(metadataEventType, evt.Type)
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(evt.Type, msg); err != nil {
		return fmt.Errorf("watermill publish failed: %w", err)
	}
	return nil
}

// Subscribe streams decoded events of one type until ctx is cancelled or the
// bus is closed. Undecodable messages are logged and acked.
func (b *Bus) Subscribe(ctx context.Context, eventType string) (<-chan domain.Event, error) {
	messages, err := b.pubsub.Subscribe(ctx, eventType)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", eventType, err)
	}

	out := make(chan domain.Event)
	go func() {
		defer close(out)
		for msg := range messages {
			var evt domain.Event
			if err := json.Unmarshal(msg.Payload, &evt); err != nil {
				b.logger.Warn("dropping undecodable event",
					"message_id", msg.UUID,
					"event_type", msg.Metadata.Get(metadataEventType),
					"error", err,
				)
				msg.Ack()
				continue
			}
			select {
			case out <- evt:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

// LogEvents writes one structured log line per event of the given types.
func (b *Bus) LogEvents(ctx context.Context, eventTypes ...string) error {
	for _, eventType := range eventTypes {
		ch, err := b.Subscribe(ctx, eventType)
		if err != nil {
			return err
		}
		go func() {
			for evt := range ch {
				b.logger.Info("domain event",
					"event_type", evt.Type,
					"session_id", evt.SessionID,
					"plan_id", evt.PlanID,
					"booking_id", evt.BookingID,
					"occurred_at", evt.OccurredAt,
				)
			}
		}()
	}
	return nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
