// Package service sequences the first-access use cases: send a
// verification token after confirming the subject's identity, validate a
// presented token, and the maintenance operations around them. Collaborator
// failures are re-wrapped into the application error taxonomy at this
// boundary; raw causes stay in the logs.
package service

import (
	"context"
	"log/slog"
	"time"

	"firstaccess/internal/audit"
	authModels "firstaccess/internal/auth/models"
	"firstaccess/internal/directory"
	"firstaccess/internal/platform/metrics"
	"firstaccess/internal/proof"
	"firstaccess/internal/ticket"
	"firstaccess/internal/verification/models"
	verification "firstaccess/internal/verification/service"
)

// Service wires the send and validate flows to their collaborators.
type Service struct {
	directory directory.Client
	dispatch  ticket.Dispatcher
	engine    *verification.Engine
	proofs    *proof.Issuer
	recorder  *audit.Recorder
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tokenCfg  models.TokenConfig
	clock     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service clock. Test hook.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithProofIssuer enables possession proofs on successful validation.
func WithProofIssuer(p *proof.Issuer) Option {
	return func(s *Service) {
		s.proofs = p
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates the first-access service. The recorder may be nil when no
// audit trail is configured.
func New(
	dir directory.Client,
	dispatch ticket.Dispatcher,
	engine *verification.Engine,
	recorder *audit.Recorder,
	tokenCfg models.TokenConfig,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		directory: dir,
		dispatch:  dispatch,
		engine:    engine,
		recorder:  recorder,
		tokenCfg:  tokenCfg,
		logger:    logger,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) record(ctx context.Context, event audit.Event) {
	if s.recorder != nil {
		s.recorder.Record(ctx, event)
	}
}

// TokenInfo returns the stored record for maintenance inspection. The
// response carries masked identifiers and the token's length, never its
// value.
func (s *Service) TokenInfo(ctx context.Context, issuer, identifier string) (*authModels.TokenInfoResponse, error) {
	issuer, err := authModels.NormalizeIssuer(issuer)
	if err != nil {
		return nil, err
	}
	subjectID, err := authModels.NormalizeIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	rec, err := s.engine.Get(ctx, issuer, subjectID)
	if err != nil {
		return nil, mapDomainError(err)
	}

	return &authModels.TokenInfoResponse{
		RequestID:        rec.ID,
		SubjectID:        rec.MaskedSubjectID(),
		Address:          rec.MaskedAddress(),
		TokenLength:      rec.Config.Length,
		AttemptLimit:     rec.Config.AttemptLimit,
		AttemptsUsed:     rec.AttemptsUsed,
		Status:           string(rec.Status),
		CreatedAt:        rec.CreatedAt,
		LastAttemptAt:    rec.LastAttemptAt,
		ExpiresAt:        rec.ExpiresAt(),
		RemainingMinutes: rec.RemainingMinutes(s.clock()),
	}, nil
}

// SweepExpired runs the maintenance sweep and reports how many ACTIVE
// records it flipped to EXPIRED.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	flipped, err := s.engine.SweepExpired(ctx)
	if err != nil {
		return 0, mapDomainError(err)
	}
	if s.metrics != nil {
		s.metrics.SweepFlipped.Add(float64(flipped))
	}
	if flipped > 0 {
		s.record(ctx, audit.Event{
			Action:  audit.ActionSweepCompleted,
			Issuer:  "system",
			Subject: "-",
		})
	}
	return flipped, nil
}
