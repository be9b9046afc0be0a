// Package ticket integrates with the external channel that delivers
// verification tokens to the subject. Token generation happens in-core;
// this channel is delivery-only.
package ticket

import (
	"context"
	"errors"
)

var (
	// ErrRejected means the channel processed the request but reported
	// failure.
	ErrRejected = errors.New("token dispatch rejected")
	// ErrUnavailable is any transport failure reaching the channel.
	ErrUnavailable = errors.New("token dispatch channel unavailable")
)

// DispatchRequest describes one token delivery. ExpirationSeconds keeps the
// channel's legacy seconds-based wire contract; the rest of the system is
// minutes-based.
type DispatchRequest struct {
	SubjectID         string `json:"clientDocumentNumber"`
	Address           string `json:"clientEmail"`
	Token             string `json:"token"`
	TokenLength       int    `json:"tokenLength"`
	AttemptLimit      int    `json:"limitAttempts"`
	ExpirationSeconds int    `json:"expirationTime"`
}

// DispatchResult is the channel's answer.
type DispatchResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Dispatcher sends one token to its delivery address. Send returns
// ErrRejected (wrapped with the channel's message) on a reported failure
// and ErrUnavailable on transport problems.
type Dispatcher interface {
	Send(ctx context.Context, req DispatchRequest) error
}
