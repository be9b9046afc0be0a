package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"firstaccess/internal/verification/models"
)

type RedisStoreSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *RedisStore
	ctx   context.Context
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupTest() {
	s.ctx = context.Background()
	mini, err := miniredis.Run()
	s.Require().NoError(err)
	s.mini = mini

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	s.store = NewRedisStore(client, "first_access")
}

func (s *RedisStoreSuite) TearDownTest() {
	s.mini.Close()
}

func (s *RedisStoreSuite) newRecord(subjectID string) *models.VerificationRequest {
	rec, err := models.New(subjectID, "user@example.com", "123456",
		models.TokenConfig{Length: 6, AttemptLimit: 3, ExpirationMinutes: 10}, time.Now().UTC())
	s.Require().NoError(err)
	return rec
}

func (s *RedisStoreSuite) TestRoundTrip() {
	rec := s.newRecord("12345678901")
	rec.RecordAttempt(time.Now().UTC())
	s.Require().NoError(s.store.Put(s.ctx, "prevcom", rec.SubjectID, rec, 10*time.Minute))

	got, err := s.store.Get(s.ctx, "prevcom", "12345678901")
	s.Require().NoError(err)
	s.Equal(rec.ID, got.ID)
	s.Equal(rec.Token, got.Token)
	s.Equal(rec.Config, got.Config)
	s.Equal(1, got.AttemptsUsed)
	s.Require().NotNil(got.LastAttemptAt)
}

func (s *RedisStoreSuite) TestKeyLayout() {
	rec := s.newRecord("12345678901")
	s.Require().NoError(s.store.Put(s.ctx, "PrevCom", rec.SubjectID, rec, 10*time.Minute))

	s.True(s.mini.Exists("first_access:prevcom:12345678901"))

	ttl := s.mini.TTL("first_access:prevcom:12345678901")
	s.Equal(10*time.Minute, ttl)
}

func (s *RedisStoreSuite) TestGetMisses() {
	s.Run("unknown key", func() {
		_, err := s.store.Get(s.ctx, "prevcom", "12345678901")
		s.Require().ErrorIs(err, ErrNotFound)
	})

	s.Run("lapsed ttl", func() {
		rec := s.newRecord("12345678901")
		s.Require().NoError(s.store.Put(s.ctx, "prevcom", rec.SubjectID, rec, time.Minute))

		s.mini.FastForward(2 * time.Minute)
		_, err := s.store.Get(s.ctx, "prevcom", "12345678901")
		s.Require().ErrorIs(err, ErrNotFound)
	})
}

func (s *RedisStoreSuite) TestCorruptValues() {
	s.Run("unparseable payload", func() {
		s.Require().NoError(s.mini.Set("first_access:prevcom:12345678901", "not json"))

		_, err := s.store.Get(s.ctx, "prevcom", "12345678901")
		s.Require().ErrorIs(err, ErrCorruptRecord)
	})

	s.Run("json missing required fields", func() {
		s.Require().NoError(s.mini.Set("first_access:prevcom:98765432100", `{"status":"ACTIVE"}`))

		_, err := s.store.Get(s.ctx, "prevcom", "98765432100")
		s.Require().ErrorIs(err, ErrCorruptRecord)
	})

	s.Run("unknown status", func() {
		s.Require().NoError(s.mini.Set("first_access:prevcom:11111111111",
			`{"clientDocumentNumber":"11111111111","tokenGenerated":"123456","status":"PENDING"}`))

		_, err := s.store.Get(s.ctx, "prevcom", "11111111111")
		s.Require().ErrorIs(err, ErrCorruptRecord)
	})
}

func (s *RedisStoreSuite) TestExistsAndDelete() {
	rec := s.newRecord("12345678901")
	s.Require().NoError(s.store.Put(s.ctx, "prevcom", rec.SubjectID, rec, 10*time.Minute))

	ok, err := s.store.Exists(s.ctx, "prevcom", "12345678901")
	s.Require().NoError(err)
	s.True(ok)

	s.Require().NoError(s.store.Delete(s.ctx, "prevcom", "12345678901"))

	ok, err = s.store.Exists(s.ctx, "prevcom", "12345678901")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisStoreSuite) TestListSkipsCorruptValues() {
	rec := s.newRecord("12345678901")
	s.Require().NoError(s.store.Put(s.ctx, "prevcom", rec.SubjectID, rec, 10*time.Minute))
	s.Require().NoError(s.mini.Set("first_access:outrocredor:98765432100", "not json"))

	entries, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("prevcom", entries[0].Issuer)
	s.Equal("12345678901", entries[0].SubjectID)
	s.Equal(rec.ID, entries[0].Record.ID)
}
