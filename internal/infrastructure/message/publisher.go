// Package message defines the outbound event contract. Drift findings
// and gap recalculations publish events so downstream systems (ticketing,
// notification) can react without polling.
package message

import (
	"context"
	"time"
)

// Event is one outbound domain event
type Event struct {
	// Stable event identifier
	ID string `json:"id"`

	// Event type, e.g. "drift.detected", "gap.recalculated"
	Type string `json:"type"`

	// Partition key; usually the affected aggregate's ID
	Key string `json:"key"`

	// Event payload
	Payload interface{} `json:"payload"`

	// Emission timestamp
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends domain events to the bus. Implementations must be
// safe for concurrent use.
type Publisher interface {
	// PublishDrift sends an event on the drift topic
	PublishDrift(ctx context.Context, event Event) error

	// PublishGap sends an event on the gap topic
	PublishGap(ctx context.Context, event Event) error

	// Close flushes and releases the producer
	Close() error
}

// NopPublisher discards every event; used when the bus is disabled
type NopPublisher struct{}

func (NopPublisher) PublishDrift(context.Context, Event) error { return nil }
func (NopPublisher) PublishGap(context.Context, Event) error   { return nil }
func (NopPublisher) Close() error                              { return nil }
