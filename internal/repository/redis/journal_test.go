package redis

import (
	"context"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyKeysSkipRedis(t *testing.T) {
	// Nothing listens here; any round trip would fail.
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	journal := NewEventJournal(rdb, "test:journal")
	defer journal.Close()

	seen, err := journal.Seen(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, seen)
	require.NoError(t, journal.Mark(context.Background(), nil))
}

func TestJournalAgainstServer(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	rdb, err := Connect(ctx, addr, os.Getenv("REDIS_TEST_PASSWORD"))
	require.NoError(t, err)

	key := "test:journal:" + t.Name()
	journal := NewEventJournal(rdb, key)
	defer func() {
		rdb.Del(ctx, key)
		journal.Close()
	}()

	require.NoError(t, journal.Mark(ctx, []string{"a", "b"}))
	seen, err := journal.Seen(ctx, []string{"a", "c", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true, "b": true}, seen)
}
