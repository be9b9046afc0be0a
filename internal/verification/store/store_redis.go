package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"firstaccess/internal/verification/models"
)

var opDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "firstaccess_state_store_op_duration_ms",
	Help:    "Latency of verification state store operations in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
}, []string{"op"})

// RedisStore is the production state store. Records are serialized as JSON
// so values written by other runtimes round-trip as generic maps without
// loss; anything that does not decode back into the record schema surfaces
// as ErrCorruptRecord.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. The key prefix namespaces the
// verification keyspace within a shared Redis.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(issuer, subjectID string) string {
	return Key(s.prefix, issuer, subjectID)
}

func observe(op string, start time.Time) {
	opDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

// Put writes the record with the given TTL, superseding any prior value.
func (s *RedisStore) Put(ctx context.Context, issuer, subjectID string, rec *models.VerificationRequest, ttl time.Duration) error {
	defer observe("put", time.Now())

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal verification record: %w", err)
	}
	return s.client.Set(ctx, s.key(issuer, subjectID), payload, ttl).Err()
}

// Get reads and decodes the record. A missing key maps to ErrNotFound; a
// value that no longer matches the record schema maps to ErrCorruptRecord.
func (s *RedisStore) Get(ctx context.Context, issuer, subjectID string) (*models.VerificationRequest, error) {
	defer observe("get", time.Now())

	raw, err := s.client.Get(ctx, s.key(issuer, subjectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw)
}

// Exists checks key presence without decoding the value.
func (s *RedisStore) Exists(ctx context.Context, issuer, subjectID string) (bool, error) {
	defer observe("exists", time.Now())

	n, err := s.client.Exists(ctx, s.key(issuer, subjectID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes the key; deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, issuer, subjectID string) error {
	defer observe("delete", time.Now())

	return s.client.Del(ctx, s.key(issuer, subjectID)).Err()
}

// List scans the verification keyspace. Corrupt values are skipped rather
// than failing the whole scan; the sweep should still fix what it can read.
func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	defer observe("list", time.Now())

	var out []Entry
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // evicted between scan and get
		}
		if err != nil {
			return nil, err
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			continue
		}
		issuer, subjectID := splitKey(s.prefix, key)
		out = append(out, Entry{Issuer: issuer, SubjectID: subjectID, Record: rec})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeRecord(raw []byte) (*models.VerificationRequest, error) {
	var rec models.VerificationRequest
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if _, ok := models.ParseStatus(string(rec.Status)); !ok || rec.SubjectID == "" || rec.Token == "" {
		return nil, ErrCorruptRecord
	}
	return &rec, nil
}

// splitKey reverses Key for scan results. Issuer names never contain ":"
// after normalization, so the layout is unambiguous.
func splitKey(prefix, key string) (issuer, subjectID string) {
	rest := key[len(prefix)+1:]
	for i := 0; i < len(rest); i++ {
		if rest[i] == ':' {
			return rest[:i], rest[i+1:]
		}
	}
	return rest, ""
}
