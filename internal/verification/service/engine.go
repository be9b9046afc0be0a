// Package service owns the token verification state machine: record
// creation, attempt-limited validation with terminal outcomes, and the
// maintenance sweep. Persistence goes through the state store; token
// generation is injected so tests can pin outputs.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"firstaccess/internal/verification/models"
	"firstaccess/internal/verification/store"
	"firstaccess/internal/verification/token"
)

// Outcome explains why a validation was or was not accepted.
type Outcome string

const (
	OutcomeValidated   Outcome = "validated"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeAlreadyUsed Outcome = "already_used"
	OutcomeExpired     Outcome = "expired"
	OutcomeExhausted   Outcome = "exhausted"
	OutcomeMismatch    Outcome = "mismatch"
)

// ValidationResult is the outcome of a validate call. Record is nil only
// for OutcomeNotFound.
type ValidationResult struct {
	Accepted bool
	Outcome  Outcome
	Record   *models.VerificationRequest
}

// Engine drives the verification state machine.
type Engine struct {
	store     store.Store
	generator token.Generator
	logger    *slog.Logger
	clock     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine clock. Test hook.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New creates an Engine backed by the given store and generator.
func New(st store.Store, gen token.Generator, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     st,
		generator: gen,
		logger:    logger,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create builds a fresh ACTIVE record with a newly generated token. It does
// not persist: the send flow dispatches the token first and only records
// state once delivery was accepted. Use Save for that second step.
func (e *Engine) Create(subjectID, address string, cfg models.TokenConfig) (*models.VerificationRequest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	generated, err := e.generator.Generate(cfg.Length)
	if err != nil {
		return nil, err
	}
	return models.New(subjectID, address, generated, cfg, e.clock())
}

// Save persists the record under (issuer, subjectID), superseding any prior
// record for the key regardless of its status. The store TTL mirrors the
// record's own expiration window.
func (e *Engine) Save(ctx context.Context, issuer string, rec *models.VerificationRequest) error {
	return e.store.Put(ctx, issuer, rec.SubjectID, rec, rec.Config.Expiration())
}

// Validate looks up the record for (issuer, subjectID) and applies one
// validation step. Check order is fixed: terminal VALIDATED first, then the
// expiration deadline, then the attempt budget, and only then is an attempt
// consumed and the presented token compared.
func (e *Engine) Validate(ctx context.Context, issuer, subjectID, presented string) (*ValidationResult, error) {
	rec, err := e.store.Get(ctx, issuer, subjectID)
	if errors.Is(err, store.ErrNotFound) {
		return &ValidationResult{Outcome: OutcomeNotFound}, nil
	}
	if errors.Is(err, store.ErrCorruptRecord) {
		// An unreadable record is reported as absent; the value stays in
		// the store until its TTL reaps it.
		e.logger.ErrorContext(ctx, "stored verification record did not parse",
			"issuer", issuer,
			"error", err.Error(),
		)
		return &ValidationResult{Outcome: OutcomeNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	now := e.clock()

	if rec.Status == models.StatusValidated {
		return &ValidationResult{Outcome: OutcomeAlreadyUsed, Record: rec}, nil
	}

	if rec.IsExpired(now) {
		rec.Status = models.StatusExpired
		if err := e.Save(ctx, issuer, rec); err != nil {
			return nil, err
		}
		return &ValidationResult{Outcome: OutcomeExpired, Record: rec}, nil
	}

	// The limit check precedes the increment so the attempt that tipped
	// over is recorded as exactly the limit, never more.
	if rec.AttemptsUsed >= rec.Config.AttemptLimit {
		rec.Status = models.StatusExhausted
		if err := e.Save(ctx, issuer, rec); err != nil {
			return nil, err
		}
		return &ValidationResult{Outcome: OutcomeExhausted, Record: rec}, nil
	}

	rec.RecordAttempt(now)

	if rec.Token == presented {
		rec.Status = models.StatusValidated
		if err := e.Save(ctx, issuer, rec); err != nil {
			return nil, err
		}
		return &ValidationResult{Accepted: true, Outcome: OutcomeValidated, Record: rec}, nil
	}

	// A wrong guess that consumed the last attempt exhausts the record
	// immediately; later calls hit the pre-increment check above.
	outcome := OutcomeMismatch
	if rec.AttemptsUsed >= rec.Config.AttemptLimit {
		rec.Status = models.StatusExhausted
		outcome = OutcomeExhausted
	}
	if err := e.Save(ctx, issuer, rec); err != nil {
		return nil, err
	}
	return &ValidationResult{Outcome: outcome, Record: rec}, nil
}

// Get returns the stored record for inspection, without consuming attempts.
func (e *Engine) Get(ctx context.Context, issuer, subjectID string) (*models.VerificationRequest, error) {
	return e.store.Get(ctx, issuer, subjectID)
}

// SweepExpired flips still-ACTIVE records past their deadline to EXPIRED
// and reports how many were flipped. Safe to run concurrently with request
// handling; it only touches records that can no longer validate.
func (e *Engine) SweepExpired(ctx context.Context) (int, error) {
	entries, err := e.store.List(ctx)
	if err != nil {
		return 0, err
	}

	now := e.clock()
	flipped := 0
	for _, entry := range entries {
		if entry.Record.Status != models.StatusActive || !entry.Record.IsExpired(now) {
			continue
		}
		entry.Record.Status = models.StatusExpired
		if err := e.store.Put(ctx, entry.Issuer, entry.SubjectID, entry.Record, entry.Record.Config.Expiration()); err != nil {
			return flipped, err
		}
		flipped++
	}

	if flipped > 0 {
		e.logger.InfoContext(ctx, "expired verification records swept", "flipped", flipped)
	}
	return flipped, nil
}
