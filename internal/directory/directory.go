// Package directory integrates with the external user directory that
// confirms a subject's identity before a token may be sent.
package directory

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means the directory has no user for (identifier, issuer).
	ErrNotFound = errors.New("user not found in directory")
	// ErrUnavailable is any transport or availability failure talking to
	// the directory.
	ErrUnavailable = errors.New("user directory unavailable")
)

// Relationship is a product link the directory reports for a user.
type Relationship struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// Creditor identifies the issuer the user belongs to.
type Creditor struct {
	Name           string `json:"name"`
	CGE            string `json:"cge"`
	DocumentNumber string `json:"documentNumber"`
}

// UserDetail is the directory's view of a subject. BirthDate uses the
// directory's yyyy-mm-dd wire format.
type UserDetail struct {
	DocumentNumber string         `json:"documentNumber"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	PhoneNumber    string         `json:"phoneNumber"`
	BirthDate      Date           `json:"birthDate"`
	Creditor       Creditor       `json:"creditor"`
	Relationships  []Relationship `json:"relationshipList"`
}

// Client looks up users by normalized identifier and issuer name. Lookup
// returns ErrNotFound on a miss and ErrUnavailable (possibly wrapped) on
// transport failure.
type Client interface {
	Lookup(ctx context.Context, subjectID, issuer string) (*UserDetail, error)
}

// Date is a calendar date without a time component, marshalled as
// yyyy-mm-dd. Equality ignores location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a yyyy-mm-dd string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) String() string {
	return d.time().Format("2006-01-02")
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is strictly earlier than the calendar date of t.
func (d Date) Before(t time.Time) bool {
	return d.time().Before(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
}

// IsZero reports whether the date was never set.
func (d Date) IsZero() bool {
	return d == Date{}
}

// MarshalJSON implements the yyyy-mm-dd wire format.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements the yyyy-mm-dd wire format.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return errors.New("birth date must be a yyyy-mm-dd string")
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
