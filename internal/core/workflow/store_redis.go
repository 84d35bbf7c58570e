// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package workflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/arxsub/internal/platform/constants"
)

// RedisSeenStore keeps each seen map in one hash that expires after ttl of
// inactivity.
type RedisSeenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSeenStore creates a Redis-backed [SeenStore].
func NewRedisSeenStore(client *redis.Client, ttl time.Duration) *RedisSeenStore {
	return &RedisSeenStore{client: client, ttl: ttl}
}

func seenKey(submissionID int64) string {
	return constants.RedisPrefixWorkflowSeen + strconv.FormatInt(submissionID, 10)
}

/*
Load reads the seen hash of a submission.

Returns:
  - map[string]bool: Seen keys, empty when the hash is missing or expired
  - error: Connectivity errors
*/
func (store *RedisSeenStore) Load(context context.Context, submissionID int64) (map[string]bool, error) {
	values, err := store.client.HGetAll(context, seenKey(submissionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_workflow_seen_load_failed: %w", err)
	}

	seen := make(map[string]bool, len(values))
	for key, value := range values {
		seen[key] = value == "1"
	}
	return seen, nil
}

// MarkSeen sets one field and refreshes the expiry in a single round trip.
func (store *RedisSeenStore) MarkSeen(context context.Context, submissionID int64, key string) error {
	hash := seenKey(submissionID)

	_, err := store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.HSet(context, hash, key, "1")
		if store.ttl > 0 {
			pipe.Expire(context, hash, store.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_workflow_seen_set_failed: %w", err)
	}

	return nil
}
