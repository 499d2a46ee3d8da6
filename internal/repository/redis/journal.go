// Package redis remembers which form submissions an earlier committed pass has
// already reconciled, so re-reading the whole form does not replay them.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// EventJournal is a Redis set of event keys.
type EventJournal struct {
	rdb *goredis.Client
	key string
}

// NewEventJournal builds a journal on rdb stored under key.
func NewEventJournal(rdb *goredis.Client, key string) *EventJournal {
	return &EventJournal{rdb: rdb, key: key}
}

// Connect dials addr and checks the server answers.
func Connect(ctx context.Context, addr, password string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, Password: password})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Seen reports which of keys are already journaled.
func (j *EventJournal) Seen(ctx context.Context, keys []string) (map[string]bool, error) {
	seen := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return seen, nil
	}

	members := make([]any, len(keys))
	for i, key := range keys {
		members[i] = key
	}
	flags, err := j.rdb.SMIsMember(ctx, j.key, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("journal lookup: %w", err)
	}
	for i, flag := range flags {
		if flag {
			seen[keys[i]] = true
		}
	}
	return seen, nil
}

// Mark journals keys.
func (j *EventJournal) Mark(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	members := make([]any, len(keys))
	for i, key := range keys {
		members[i] = key
	}
	if err := j.rdb.SAdd(ctx, j.key, members...).Err(); err != nil {
		return fmt.Errorf("journal mark: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (j *EventJournal) Close() error {
	return j.rdb.Close()
}
