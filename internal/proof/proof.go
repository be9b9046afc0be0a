// Package proof issues the short-lived possession proof returned after a
// successful token validation. The downstream account system verifies it
// instead of talking to the verification state store directly.
package proof

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "firstaccess/pkg/domain-errors"
)

// Claims carried by a possession proof.
type Claims struct {
	SubjectID string `json:"subject_id"`
	Issuer    string `json:"issuer_name"`
	RequestID string `json:"request_id"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies possession proofs with a shared HS256 key.
type Issuer struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// NewIssuer builds a proof issuer. ttl bounds how long downstream systems
// accept the proof.
func NewIssuer(signingKey, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

// Issue signs a proof that the subject demonstrated possession of the
// verification token for requestID.
func (i *Issuer) Issue(subjectID, issuerName, requestID string, now time.Time) (string, error) {
	claims := Claims{
		SubjectID: subjectID,
		Issuer:    issuerName,
		RequestID: requestID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.issuer,
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "proof signing failed", err)
	}
	return signed, nil
}

// Verify parses a proof and returns its claims. Expired or otherwise
// invalid proofs are rejected without detail.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return i.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "proof has expired")
		}
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid proof")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid proof")
	}
	return claims, nil
}
