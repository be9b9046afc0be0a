package service

import (
	"errors"

	"firstaccess/internal/directory"
	"firstaccess/internal/ticket"
	"firstaccess/internal/verification/store"
	dErrors "firstaccess/pkg/domain-errors"
)

// ErrBirthDateMismatch marks an identity check that found the subject but
// with a different birth date on file.
var ErrBirthDateMismatch = errors.New("birth date does not match directory record")

// mapping pins each collaborator sentinel to its application code and
// outward message. Order matters only in that the first match wins.
var mapping = []struct {
	sentinel error
	code     dErrors.Code
	message  string
}{
	{directory.ErrNotFound, dErrors.CodeUserNotFound, "user not found"},
	{directory.ErrUnavailable, dErrors.CodeIdentityUnavailable, "identity directory unavailable"},
	{ErrBirthDateMismatch, dErrors.CodeBirthDateMismatch, "birth date does not match"},
	{ticket.ErrRejected, dErrors.CodeDispatchFailed, "token dispatch rejected"},
	{ticket.ErrUnavailable, dErrors.CodeDispatchFailed, "token dispatch unavailable"},
	{store.ErrNotFound, dErrors.CodeUserNotFound, "token not found"},
	{store.ErrCorruptRecord, dErrors.CodeCorruptState, "stored verification state unreadable"},
}

// mapDomainError converts collaborator sentinels into coded application
// errors. Errors already carrying a code pass through unchanged; anything
// unrecognized becomes CodeInternal so callers see a closed taxonomy.
func mapDomainError(err error) error {
	if err == nil {
		return nil
	}
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	for _, m := range mapping {
		if errors.Is(err, m.sentinel) {
			return dErrors.Wrap(m.code, m.message, err)
		}
	}
	return dErrors.Wrap(dErrors.CodeInternal, "internal error", err)
}
