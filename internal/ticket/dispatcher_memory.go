package ticket

import (
	"context"
	"sync"
)

// InMemoryDispatcher records dispatches instead of delivering them. Used in
// tests and local runs without a real channel.
type InMemoryDispatcher struct {
	mu   sync.Mutex
	sent []DispatchRequest
	// Err, when set, is returned from every Send.
	Err error
}

// NewInMemoryDispatcher creates a dispatcher that accepts everything.
func NewInMemoryDispatcher() *InMemoryDispatcher {
	return &InMemoryDispatcher{}
}

// Send implements Dispatcher.
func (d *InMemoryDispatcher) Send(_ context.Context, req DispatchRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.sent = append(d.sent, req)
	return nil
}

// Sent returns a copy of every accepted dispatch.
func (d *InMemoryDispatcher) Sent() []DispatchRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DispatchRequest{}, d.sent...)
}
