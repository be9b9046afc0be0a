// Package models holds the verification token record and its state machine
// vocabulary. The record snapshots its token policy at creation time so a
// later configuration change never alters the rules of an in-flight token.
package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "firstaccess/pkg/domain-errors"
	"firstaccess/pkg/masking"
)

// Status is the lifecycle state of a verification request. ACTIVE is the
// only non-terminal state; the three others never transition further.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusExpired   Status = "EXPIRED"
	StatusExhausted Status = "EXHAUSTED"
	StatusValidated Status = "VALIDATED"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusExhausted, StatusValidated:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s.IsValid() && s != StatusActive
}

// ParseStatus creates a Status from its stored representation.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	return st, st.IsValid()
}

const (
	// SubjectIDLength is the normalized length of a national identifier.
	SubjectIDLength = 11

	MinTokenLength = 4
	MaxTokenLength = 8

	MinAttemptLimit = 1
	MaxAttemptLimit = 10

	// DefaultExpirationMinutes applies when a legacy seconds value is
	// missing or non-positive.
	DefaultExpirationMinutes = 10
)

// TokenConfig is the policy snapshot captured into every record.
type TokenConfig struct {
	Length            int `json:"tokenLength"`
	AttemptLimit      int `json:"limitAttempts"`
	ExpirationMinutes int `json:"expirationTimeMinutes"`
}

// Validate enforces the configured policy bounds, including the rule that
// short tokens must not get a generous attempt budget.
func (c TokenConfig) Validate() error {
	if c.Length < MinTokenLength || c.Length > MaxTokenLength {
		return dErrors.New(dErrors.CodeInvalidInput, "token length must be between 4 and 8")
	}
	if c.AttemptLimit < MinAttemptLimit || c.AttemptLimit > MaxAttemptLimit {
		return dErrors.New(dErrors.CodeInvalidInput, "attempt limit must be between 1 and 10")
	}
	if c.Length < 6 && c.AttemptLimit > 3 {
		return dErrors.New(dErrors.CodeInvalidInput, "tokens shorter than 6 digits must not allow more than 3 attempts")
	}
	if c.ExpirationMinutes <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "expiration must be positive")
	}
	return nil
}

// Expiration returns the configured lifetime as a duration.
func (c TokenConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationMinutes) * time.Minute
}

// MinutesFromSeconds converts a legacy seconds-based expiration to the
// minutes-based contract used everywhere else. Non-positive input falls
// back to the default; fractional minutes truncate (90s -> 1min).
func MinutesFromSeconds(seconds int) int {
	if seconds <= 0 {
		return DefaultExpirationMinutes
	}
	return seconds / 60
}

// VerificationRequest is the token record persisted in the state store.
// SubjectID holds the normalized digits-only identifier; Token is never
// exposed outside the record, only compared against.
type VerificationRequest struct {
	ID            string      `json:"id"`
	SubjectID     string      `json:"clientDocumentNumber"`
	Address       string      `json:"clientEmail"`
	Token         string      `json:"tokenGenerated"`
	Config        TokenConfig `json:"config"`
	AttemptsUsed  int         `json:"attemptsUsed"`
	LastAttemptAt *time.Time  `json:"lastAttemptAt,omitempty"`
	Status        Status      `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// New builds a fresh ACTIVE record for a normalized subject identifier. The
// token must already be generated; the record only carries it.
func New(subjectID, address, token string, cfg TokenConfig, now time.Time) (*VerificationRequest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	normalized := masking.DigitsOnly(subjectID)
	if len(normalized) != SubjectIDLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "identifier must contain exactly 11 digits")
	}
	if address == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "delivery address is required")
	}
	if len(token) != cfg.Length {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "token does not match configured length")
	}
	return &VerificationRequest{
		ID:        uuid.NewString(),
		SubjectID: normalized,
		Address:   address,
		Token:     token,
		Config:    cfg,
		Status:    StatusActive,
		CreatedAt: now,
	}, nil
}

// ExpiresAt is the fine-grained deadline derived from the creation snapshot.
// The store TTL is a coarse backstop; this value is authoritative.
func (r *VerificationRequest) ExpiresAt() time.Time {
	return r.CreatedAt.Add(r.Config.Expiration())
}

// IsExpired reports whether the record is past its deadline, regardless of
// the persisted status.
func (r *VerificationRequest) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt())
}

// RemainingMinutes returns whole minutes until expiry, never negative.
func (r *VerificationRequest) RemainingMinutes(now time.Time) int {
	if !now.Before(r.ExpiresAt()) {
		return 0
	}
	return int(r.ExpiresAt().Sub(now) / time.Minute)
}

// AttemptsRemaining never goes below zero even for records persisted before
// the limit check moved ahead of the increment.
func (r *VerificationRequest) AttemptsRemaining() int {
	remaining := r.Config.AttemptLimit - r.AttemptsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordAttempt consumes one attempt. Callers check status and limits
// first; this only mutates counters.
func (r *VerificationRequest) RecordAttempt(now time.Time) {
	r.AttemptsUsed++
	at := now
	r.LastAttemptAt = &at
}

// MaskedSubjectID is safe for logs and responses.
func (r *VerificationRequest) MaskedSubjectID() string {
	return masking.Document(r.SubjectID)
}

// MaskedAddress is safe for logs and responses.
func (r *VerificationRequest) MaskedAddress() string {
	return masking.Email(r.Address)
}
