package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/core"
)

const redisKeyPrefix = "memory:"

// RedisStore keeps each memory kind in a Redis list, newest first, so
// several assistant processes can share one conversation history.
type RedisStore struct {
	client   *redis.Client
	capacity int
	logger   *zap.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(addr, password string, db, capacity int, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, capacity: capacity, logger: logger}, nil
}

// Add pushes an item onto the kind's list and trims it to capacity.
func (s *RedisStore) Add(ctx context.Context, item core.MemoryItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal memory item: %w", err)
	}

	key := redisKeyPrefix + string(item.Kind)
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	if s.capacity > 0 {
		pipe.LTrim(ctx, key, 0, int64(s.capacity-1))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store memory item: %w", err)
	}
	return nil
}

// Recent returns the last n items of a kind, most recent first.
func (s *RedisStore) Recent(ctx context.Context, kind core.MemoryKind, n int) ([]core.MemoryItem, error) {
	if n <= 0 {
		n = s.capacity
	}
	raw, err := s.client.LRange(ctx, redisKeyPrefix+string(kind), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read memory list: %w", err)
	}

	items := make([]core.MemoryItem, 0, len(raw))
	for _, entry := range raw {
		var item core.MemoryItem
		if err := json.Unmarshal([]byte(entry), &item); err != nil {
			s.logger.Warn("skipping memory item with corrupted payload", zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Cleanup rewrites each list without the items past the cutoff or their
// expiry. Redis lists have no conditional delete, so this reads and filters.
func (s *RedisStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	kinds := []core.MemoryKind{core.MemoryConversation, core.MemoryEmailContext, core.MemoryPreference}

	for _, kind := range kinds {
		key := redisKeyPrefix + string(kind)
		raw, err := s.client.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return fmt.Errorf("failed to read memory list: %w", err)
		}

		kept := make([]any, 0, len(raw))
		removed := 0
		for _, entry := range raw {
			var item core.MemoryItem
			if err := json.Unmarshal([]byte(entry), &item); err != nil {
				removed++
				continue
			}
			if expired(item, cutoff) {
				removed++
				continue
			}
			kept = append(kept, entry)
		}
		if removed == 0 {
			continue
		}

		pipe := s.client.TxPipeline()
		pipe.Del(ctx, key)
		if len(kept) > 0 {
			pipe.RPush(ctx, key, kept...)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to rewrite memory list: %w", err)
		}
		s.logger.Debug("cleaned up memory items",
			zap.String("kind", string(kind)),
			zap.Int("removed", removed))
	}
	return nil
}

// Snapshot returns the per-kind views for one turn.
func (s *RedisStore) Snapshot(ctx context.Context) (core.MemorySnapshot, error) {
	var snap core.MemorySnapshot
	var err error
	if snap.Conversation, err = s.Recent(ctx, core.MemoryConversation, s.capacity); err != nil {
		return snap, err
	}
	if snap.EmailContext, err = s.Recent(ctx, core.MemoryEmailContext, s.capacity); err != nil {
		return snap, err
	}
	if snap.Preference, err = s.Recent(ctx, core.MemoryPreference, s.capacity); err != nil {
		return snap, err
	}
	return snap, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
