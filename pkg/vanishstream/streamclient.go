package vanishstream

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// streamName is the Redis stream vanish requests are published to.
const streamName = "vanish_requests"

// StreamClient is the small collaborator the reader task reads entries
// through.
type StreamClient interface {
	// ReadBlocking performs a blocking XREAD for entries strictly after
	// lastID, waiting up to block for at least one. An empty result with a
	// nil error means the block elapsed with nothing new.
	ReadBlocking(ctx context.Context, lastID string, block time.Duration) ([]StreamEntry, error)
}

// RedisStreamClient is the default StreamClient, backed by go-redis's XREAD.
type RedisStreamClient struct {
	client *redis.Client
}

// NewRedisStreamClient builds a RedisStreamClient around an existing client.
func NewRedisStreamClient(client *redis.Client) *RedisStreamClient {
	return &RedisStreamClient{client: client}
}

// ReadBlocking issues `XREAD BLOCK <block_ms> STREAMS vanish_requests <lastID>`.
func (c *RedisStreamClient) ReadBlocking(ctx context.Context, lastID string, block time.Duration) ([]StreamEntry, error) {
	res, err := c.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{streamName, lastID},
		Block:   block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []StreamEntry
	for _, stream := range res {
		for _, msg := range stream.Messages {
			entries = append(entries, StreamEntry{ID: msg.ID, Fields: msg.Values})
		}
	}
	return entries, nil
}
