package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"firstaccess/internal/verification/models"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.store = NewInMemoryStore().WithClock(func() time.Time { return s.now })
}

func (s *MemoryStoreSuite) newRecord(subjectID string) *models.VerificationRequest {
	rec, err := models.New(subjectID, "user@example.com", "123456",
		models.TokenConfig{Length: 6, AttemptLimit: 3, ExpirationMinutes: 10}, s.now)
	s.Require().NoError(err)
	return rec
}

func (s *MemoryStoreSuite) TestPutAndGet() {
	rec := s.newRecord("12345678901")
	s.Require().NoError(s.store.Put(s.ctx, "prevcom", rec.SubjectID, rec, 10*time.Minute))

	got, err := s.store.Get(s.ctx, "prevcom", "12345678901")
	s.Require().NoError(err)
	s.Equal(rec.ID, got.ID)
	s.Equal(rec.Token, got.Token)

	// The store hands out copies; mutating the result must not leak back.
	got.AttemptsUsed = 99
	again, err := s.store.Get(s.ctx, "prevcom", "12345678901")
	s.Require().NoError(err)
	s.Equal(0, again.AttemptsUsed)
}

func (s *MemoryStoreSuite) TestGetMisses() {
	s.Run("unknown key", func() {
		_, err := s.store.Get(s.ctx, "prevcom", "12345678901")
		s.Require().ErrorIs(err, ErrNotFound)
	})

	s.Run("lapsed ttl", func() {
		rec := s.newRecord("12345678901")
		s.Require().NoError(s.store.Put(s.ctx, "prevcom", rec.SubjectID, rec, 10*time.Minute))

		s.now = s.now.Add(11 * time.Minute)
		_, err := s.store.Get(s.ctx, "prevcom", "12345678901")
		s.Require().ErrorIs(err, ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestIssuerKeyedIsolation() {
	rec := s.newRecord("12345678901")
	s.Require().NoError(s.store.Put(s.ctx, "prevcom", rec.SubjectID, rec, 10*time.Minute))

	_, err := s.store.Get(s.ctx, "outrocredor", "12345678901")
	s.Require().ErrorIs(err, ErrNotFound)

	// Issuer matching is case-insensitive after normalization.
	got, err := s.store.Get(s.ctx, "  PrevCom ", "12345678901")
	s.Require().NoError(err)
	s.Equal(rec.ID, got.ID)
}

func (s *MemoryStoreSuite) TestPutReplaces() {
	first := s.newRecord("12345678901")
	s.Require().NoError(s.store.Put(s.ctx, "prevcom", first.SubjectID, first, 10*time.Minute))

	second := s.newRecord("12345678901")
	s.Require().NoError(s.store.Put(s.ctx, "prevcom", second.SubjectID, second, 10*time.Minute))

	got, err := s.store.Get(s.ctx, "prevcom", "12345678901")
	s.Require().NoError(err)
	s.Equal(second.ID, got.ID)
}

func (s *MemoryStoreSuite) TestExistsAndDelete() {
	rec := s.newRecord("12345678901")
	s.Require().NoError(s.store.Put(s.ctx, "prevcom", rec.SubjectID, rec, 10*time.Minute))

	ok, err := s.store.Exists(s.ctx, "prevcom", "12345678901")
	s.Require().NoError(err)
	s.True(ok)

	s.Require().NoError(s.store.Delete(s.ctx, "prevcom", "12345678901"))

	ok, err = s.store.Exists(s.ctx, "prevcom", "12345678901")
	s.Require().NoError(err)
	s.False(ok)

	// Deleting an absent key is not an error.
	s.Require().NoError(s.store.Delete(s.ctx, "prevcom", "12345678901"))
}

func (s *MemoryStoreSuite) TestListSkipsLapsedEntries() {
	live := s.newRecord("12345678901")
	s.Require().NoError(s.store.Put(s.ctx, "prevcom", live.SubjectID, live, 20*time.Minute))

	stale := s.newRecord("98765432100")
	s.Require().NoError(s.store.Put(s.ctx, "outrocredor", stale.SubjectID, stale, 5*time.Minute))

	s.now = s.now.Add(6 * time.Minute)

	entries, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("prevcom", entries[0].Issuer)
	s.Equal("12345678901", entries[0].SubjectID)
}

func TestKey(t *testing.T) {
	got := Key("first_access", "  PrevCom ", "123.456.789-01")
	if got != "first_access:prevcom:12345678901" {
		t.Fatalf("unexpected key %q", got)
	}
}
