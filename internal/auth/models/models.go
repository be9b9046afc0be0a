// Package models holds the request and response shapes of the first-access
// HTTP surface plus their normalization rules.
package models

import (
	"strings"
	"time"

	"firstaccess/internal/directory"
	dErrors "firstaccess/pkg/domain-errors"
	"firstaccess/pkg/masking"
)

const (
	minIssuerLength = 2
	maxIssuerLength = 50

	subjectIDLength = 11
)

// SendTokenRequest is the inbound send-token body. The issuer arrives
// separately in the Origin header.
type SendTokenRequest struct {
	Identifier string         `json:"identifier"`
	BirthDate  directory.Date `json:"birthDate"`
}

// SendTokenResponse confirms a dispatched token. ClientEmail is masked.
type SendTokenResponse struct {
	Message               string `json:"message"`
	ExpirationTimeMinutes int    `json:"expirationTimeMinutes"`
	ClientEmail           string `json:"clientEmail"`
}

// ValidateTokenRequest is the inbound validate-token body.
type ValidateTokenRequest struct {
	Identifier string `json:"identifier"`
	Token      string `json:"token"`
}

// ValidateTokenResponse reports one validation step. AttemptsRemaining is
// omitted when no record was found; ProofToken is present only on success.
type ValidateTokenResponse struct {
	Valid             bool   `json:"valid"`
	Message           string `json:"message"`
	AttemptsRemaining *int   `json:"attemptsRemaining,omitempty"`
	ProofToken        string `json:"proofToken,omitempty"`
}

// TokenInfoResponse is the masked maintenance view of a stored record.
// The generated token never appears here, only its length.
type TokenInfoResponse struct {
	RequestID        string     `json:"requestId"`
	SubjectID        string     `json:"identifier"`
	Address          string     `json:"address"`
	TokenLength      int        `json:"tokenLength"`
	AttemptLimit     int        `json:"limitAttempts"`
	AttemptsUsed     int        `json:"attemptsUsed"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastAttemptAt    *time.Time `json:"lastAttemptAt,omitempty"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	RemainingMinutes int        `json:"remainingMinutes"`
}

// SweepResponse reports a maintenance sweep run.
type SweepResponse struct {
	Cleared int    `json:"cleared"`
	Message string `json:"message"`
}

// NormalizeIdentifier strips punctuation and requires exactly 11 digits.
func NormalizeIdentifier(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identifier is required")
	}
	digits := masking.DigitsOnly(raw)
	if len(digits) != subjectIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identifier must contain exactly 11 digits")
	}
	return digits, nil
}

// NormalizeIssuer trims and lowercases the issuer name and bounds its
// length. The colon is excluded because the storage key is colon-delimited.
func NormalizeIssuer(raw string) (string, error) {
	issuer := strings.ToLower(strings.TrimSpace(raw))
	if issuer == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "issuer is required")
	}
	if len(issuer) < minIssuerLength || len(issuer) > maxIssuerLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "issuer must be between 2 and 50 characters")
	}
	if strings.Contains(issuer, ":") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "issuer must not contain ':'")
	}
	return issuer, nil
}

// ValidateBirthDate requires a set, past calendar date.
func ValidateBirthDate(d directory.Date, now time.Time) error {
	if d.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "birth date is required")
	}
	if !d.Before(now) {
		return dErrors.New(dErrors.CodeInvalidInput, "birth date must be in the past")
	}
	return nil
}
