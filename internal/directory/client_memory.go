package directory

import (
	"context"
	"strings"
	"sync"
	"time"
)

// InMemoryClient is a directory fake for tests and local runs. Users are
// matched by identifier and, case-insensitively, by creditor name.
type InMemoryClient struct {
	mu    sync.RWMutex
	users map[string]UserDetail
	// Err, when set, is returned from every Lookup. Lets tests simulate an
	// unavailable directory.
	Err error
}

// NewInMemoryClient creates an empty directory fake.
func NewInMemoryClient() *InMemoryClient {
	return &InMemoryClient{users: make(map[string]UserDetail)}
}

// Seeded returns a fake pre-loaded with sample users for local runs.
func Seeded() *InMemoryClient {
	c := NewInMemoryClient()
	c.Add(UserDetail{
		DocumentNumber: "12345678901",
		Name:           "Joao Silva Santos",
		Email:          "joao.silva@email.com",
		PhoneNumber:    "11999887766",
		BirthDate:      NewDate(1997, time.January, 1),
		Creditor:       Creditor{Name: "prevcom", CGE: "654321", DocumentNumber: "11273637488761"},
		Relationships: []Relationship{
			{ID: 1, Type: "PLANO_PREVIDENCIA", Name: "Prevcom RS"},
			{ID: 2, Type: "PLANO_PREVIDENCIA", Name: "Prevcom RG"},
		},
	})
	c.Add(UserDetail{
		DocumentNumber: "98765432100",
		Name:           "Maria Oliveira Costa",
		Email:          "maria.oliveira@email.com",
		PhoneNumber:    "11888777666",
		BirthDate:      NewDate(1990, time.December, 25),
		Creditor:       Creditor{Name: "outrocredor", CGE: "123456", DocumentNumber: "22384748599872"},
		Relationships: []Relationship{
			{ID: 4, Type: "PLANO_PREVIDENCIA", Name: "Plano Basico"},
		},
	})
	return c
}

// Add registers a user keyed by document number.
func (c *InMemoryClient) Add(user UserDetail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[user.DocumentNumber] = user
}

// Lookup implements Client.
func (c *InMemoryClient) Lookup(_ context.Context, subjectID, issuer string) (*UserDetail, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Err != nil {
		return nil, c.Err
	}
	user, ok := c.users[subjectID]
	if !ok {
		return nil, ErrNotFound
	}
	if !strings.EqualFold(user.Creditor.Name, issuer) {
		return nil, ErrNotFound
	}
	detail := user
	return &detail, nil
}
