// Package events publishes sitemap generation lifecycle events to Redis
// Streams for downstream dashboards.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/napieracademy/sitemap-manager/internal/logger"
)

// StreamName is the Redis stream generation events are appended to.
const StreamName = "sitemap:events"

// EventType identifies what happened to a generation run.
type EventType string

const (
	EventGenerationCompleted EventType = "sitemap.generation.completed"
	EventGenerationFailed    EventType = "sitemap.generation.failed"
)

// GenerationEvent is the payload appended to the stream after each run.
type GenerationEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType EventType `json:"event_type"`
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	URLCount  int       `json:"url_count,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Publisher publishes generation events. A nil Publisher is a no-op, so the
// pipeline never has to check whether Redis is configured.
type Publisher struct {
	client *redis.Client
	log    logger.Logger
}

// NewPublisher creates a new event publisher. Returns nil if client is nil.
func NewPublisher(client *redis.Client, log logger.Logger) *Publisher {
	if client == nil {
		return nil
	}
	return &Publisher{
		client: client,
		log:    log,
	}
}

// Publish appends an event to the stream.
func (p *Publisher) Publish(ctx context.Context, event GenerationEvent) error {
	if p == nil || p.client == nil {
		return nil
	}

	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamName,
		Values: map[string]any{
			"event": string(payload),
		},
	})

	if publishErr := result.Err(); publishErr != nil {
		p.log.Error("Failed to publish generation event",
			logger.String("event_type", string(event.EventType)),
			logger.String("run_id", event.RunID),
			logger.Error(publishErr),
		)
		return fmt.Errorf("publish to stream: %w", publishErr)
	}

	p.log.Info("Published generation event",
		logger.String("event_type", string(event.EventType)),
		logger.String("run_id", event.RunID),
		logger.String("stream_id", result.Val()),
	)

	return nil
}
