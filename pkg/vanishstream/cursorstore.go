package vanishstream

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// DeletionSubscriberCursorKey is the cursor key used by vanish_subscriber.
const DeletionSubscriberCursorKey = "vanish_requests:deletion_subscriber:last_id"

// ListenerCursorKey is the cursor key used by the older vanish_listener
// variant (§6): same stream, separate cursor, so the two daemons can run
// independently without racing each other's progress.
const ListenerCursorKey = "vanish_listener:last_id"

// initialCursor is used when no cursor has ever been persisted.
const initialCursor = "0-0"

// CursorStore persists the vanish-stream reading cursor across restarts.
type CursorStore interface {
	// Load returns the persisted cursor, or initialCursor if none exists.
	Load(ctx context.Context) (string, error)
	// Save persists id as the cursor.
	Save(ctx context.Context, id string) error
}

// RedisCursorStore is the default CursorStore, backed by a single string key
// in Redis.
type RedisCursorStore struct {
	client *redis.Client
	key    string
}

// NewRedisCursorStore builds a RedisCursorStore around an existing client,
// persisting under key (one of DeletionSubscriberCursorKey or
// ListenerCursorKey).
func NewRedisCursorStore(client *redis.Client, key string) *RedisCursorStore {
	return &RedisCursorStore{client: client, key: key}
}

// Load fetches the persisted cursor, returning initialCursor when the key is
// absent.
func (s *RedisCursorStore) Load(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return initialCursor, nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Save persists id under the cursor key, with no expiry.
func (s *RedisCursorStore) Save(ctx context.Context, id string) error {
	return s.client.Set(ctx, s.key, id, 0).Err()
}
