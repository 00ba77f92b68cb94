// Package memory implements the conversation memory repository: an
// append-only, capacity-bounded, time-decayed store of turns and derived
// session state, with several persistence backends.
package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/core"
)

// Store is the in-memory implementation of core.MemoryRepository. It is the
// default backend and the fallback when a persistent backend cannot load.
type Store struct {
	mu       sync.RWMutex
	items    map[core.MemoryKind][]core.MemoryItem
	capacity int
	logger   *zap.Logger
}

// NewStore creates an in-memory store. capacity bounds each kind's ring
// buffer; oldest items are evicted first.
func NewStore(capacity int, logger *zap.Logger) *Store {
	return &Store{
		items:    make(map[core.MemoryKind][]core.MemoryItem),
		capacity: capacity,
		logger:   logger,
	}
}

// Add appends an item and evicts beyond capacity, oldest first.
func (s *Store) Add(ctx context.Context, item core.MemoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := append(s.items[item.Kind], item)
	if s.capacity > 0 && len(items) > s.capacity {
		items = items[len(items)-s.capacity:]
	}
	s.items[item.Kind] = items
	return nil
}

// Recent returns the last n items of a kind, most recent first.
func (s *Store) Recent(ctx context.Context, kind core.MemoryKind, n int) ([]core.MemoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reversed(s.items[kind], n), nil
}

// Cleanup removes items older than the cutoff or past their expiry.
// Idempotent; a second call with no intervening writes is a no-op.
func (s *Store) Cleanup(ctx context.Context, olderThan time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for kind, items := range s.items {
		kept := items[:0]
		for _, item := range items {
			if expired(item, cutoff) {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		s.items[kind] = kept
	}
	if removed > 0 {
		s.logger.Debug("cleaned up memory items", zap.Int("removed", removed))
	}
	return nil
}

// Snapshot returns the read-only view for one turn, reflecting every write
// completed before the call.
func (s *Store) Snapshot(ctx context.Context) (core.MemorySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.MemorySnapshot{
		Conversation: reversed(s.items[core.MemoryConversation], s.capacity),
		EmailContext: reversed(s.items[core.MemoryEmailContext], s.capacity),
		Preference:   reversed(s.items[core.MemoryPreference], s.capacity),
	}, nil
}

func expired(item core.MemoryItem, cutoff time.Time) bool {
	if item.CreatedAt.Before(cutoff) {
		return true
	}
	return item.ExpiresAt != nil && !item.ExpiresAt.After(time.Now())
}

// reversed copies up to n items in reverse-chronological order.
func reversed(items []core.MemoryItem, n int) []core.MemoryItem {
	if n <= 0 || n > len(items) {
		n = len(items)
	}
	out := make([]core.MemoryItem, 0, n)
	for i := len(items) - 1; i >= len(items)-n; i-- {
		out = append(out, items[i])
	}
	return out
}
