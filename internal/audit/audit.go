// Package audit records verification lifecycle events for operational
// visibility. Recording is best-effort: an audit failure is logged and
// never fails the business operation that produced the event.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Action names one lifecycle event.
type Action string

const (
	ActionTokenSent      Action = "token_sent"
	ActionTokenValidated Action = "token_validated"
	ActionTokenRejected  Action = "token_rejected"
	ActionTokenExpired   Action = "token_expired"
	ActionTokenExhausted Action = "token_exhausted"
	ActionSweepCompleted Action = "sweep_completed"
)

// Event is one audit record. Subject holds the masked identifier; raw PII
// never enters the trail.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Issuer    string    `json:"issuer"`
	Subject   string    `json:"subject"`
	RequestID string    `json:"request_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Store appends events to a durable trail.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Sink receives a copy of every event, typically for streaming. Emit
// failures are the sink's problem; the recorder does not retry.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// Recorder fans events out to a store and optional sinks.
type Recorder struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger
	clock  func() time.Time
}

// NewRecorder builds a recorder over the given store.
func NewRecorder(store Store, logger *slog.Logger, sinks ...Sink) *Recorder {
	return &Recorder{
		store:  store,
		sinks:  sinks,
		logger: logger,
		clock:  time.Now,
	}
}

// Record assigns identity and time to the event and writes it everywhere.
// Failures are logged, never returned.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.clock()
	}

	if err := r.store.Append(ctx, event); err != nil {
		r.logger.ErrorContext(ctx, "audit append failed",
			"action", string(event.Action),
			"error", err.Error(),
		)
	}
	for _, sink := range r.sinks {
		if err := sink.Emit(ctx, event); err != nil {
			r.logger.WarnContext(ctx, "audit sink emit failed",
				"action", string(event.Action),
				"error", err.Error(),
			)
		}
	}
}
