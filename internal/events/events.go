// Package events publishes registration events to Kafka for the email
// notification worker. Publishing is fire and forget: a broker outage must
// never fail the request that triggered the event.
package events

import (
	"context"
	"time"
)

// UserRegistered is emitted after a user account is created. The notification
// worker turns it into a welcome/activation email.
type UserRegistered struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Producer emits registration events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Emit sends a single event. Implementations may block briefly.
	// Returns an error only on write failure; callers typically log and ignore.
	Emit(ctx context.Context, event *UserRegistered) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}

// NopProducer is a Producer that discards events. Used when KAFKA_BROKERS is unset.
type NopProducer struct{}

func (NopProducer) Emit(ctx context.Context, event *UserRegistered) error { return nil }
func (NopProducer) Close() error                                          { return nil }
