// Package store persists verification records in a TTL-backed key-value
// store. Keys are derived deterministically from the issuer and the
// normalized subject identifier; the TTL is a coarse backstop while the
// engine's own expiration check stays authoritative.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"firstaccess/internal/verification/models"
	"firstaccess/pkg/masking"
)

var (
	// ErrNotFound is returned when no record exists for the key.
	ErrNotFound = errors.New("verification record not found")
	// ErrCorruptRecord is returned when a stored value does not match the
	// expected record schema. Callers treat the record as absent and log.
	ErrCorruptRecord = errors.New("stored verification record did not parse")
)

// Entry pairs a record with the key components it was stored under. Used by
// the maintenance sweep, which scans the whole keyspace.
type Entry struct {
	Issuer    string
	SubjectID string
	Record    *models.VerificationRequest
}

// Store is the verification state persistence contract. Implementations
// must be safe for concurrent use; last writer wins on the same key.
type Store interface {
	Put(ctx context.Context, issuer, subjectID string, rec *models.VerificationRequest, ttl time.Duration) error
	Get(ctx context.Context, issuer, subjectID string) (*models.VerificationRequest, error)
	Exists(ctx context.Context, issuer, subjectID string) (bool, error)
	Delete(ctx context.Context, issuer, subjectID string) error
	// List returns every live entry. Not on the request-serving path.
	List(ctx context.Context) ([]Entry, error)
}

// Key derives the storage key: <prefix>:<lowercased issuer>:<digits-only id>.
func Key(prefix, issuer, subjectID string) string {
	return prefix + ":" + strings.ToLower(strings.TrimSpace(issuer)) + ":" + masking.DigitsOnly(subjectID)
}
