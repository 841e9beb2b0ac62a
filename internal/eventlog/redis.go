package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces event log keys in Redis
	keyPrefix = "habito:eventlog:"
	// defaultMaxRecords caps the per-user log length; old entries are trimmed
	defaultMaxRecords = 10000
)

// RedisStore is a Redis-backed Store. Records are appended to a per-user list
// and trimmed to a bounded length; the list preserves insertion order.
type RedisStore struct {
	client     *redis.Client
	maxRecords int64
}

// NewRedisStore creates a Redis-backed event log store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, maxRecords: defaultMaxRecords}
}

func userKey(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

// Append adds a record to the user's log
func (s *RedisStore) Append(ctx context.Context, userID uuid.UUID, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal log record: %w", err)
	}

	key := userKey(userID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -s.maxRecords, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append log record: %w", err)
	}

	return nil
}

// Records returns the user's full log, oldest first
func (s *RedisStore) Records(ctx context.Context, userID uuid.UUID) ([]Record, error) {
	raw, err := s.client.LRange(ctx, userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read log records: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		var record Record
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal log record: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}

// RecordsSince returns the user's records with Timestamp >= since, oldest first
func (s *RedisStore) RecordsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]Record, error) {
	all, err := s.Records(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []Record
	for _, r := range all {
		if !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Clear removes the user's log
func (s *RedisStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, userKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear log: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
