package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/core"
)

func conversationItem(n int, createdAt time.Time) core.MemoryItem {
	return core.MemoryItem{
		Kind:      core.MemoryConversation,
		Payload:   map[string]string{"utterance": fmt.Sprintf("turn %d", n)},
		CreatedAt: createdAt,
	}
}

func TestRingBufferEviction(t *testing.T) {
	const capacity = 50
	const extra = 7
	store := NewStore(capacity, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < capacity+extra; i++ {
		require.NoError(t, store.Add(ctx, conversationItem(i, time.Now())))
	}

	items, err := store.Recent(ctx, core.MemoryConversation, capacity+extra)
	require.NoError(t, err)
	assert.Len(t, items, capacity, "exactly the most recent capacity items remain")

	// Most recent first; the oldest surviving item is turn `extra`.
	assert.Equal(t, fmt.Sprintf("turn %d", capacity+extra-1), items[0].Payload["utterance"])
	assert.Equal(t, fmt.Sprintf("turn %d", extra), items[len(items)-1].Payload["utterance"])
}

func TestRecentOrderAndLimit(t *testing.T) {
	store := NewStore(10, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Add(ctx, conversationItem(i, time.Now())))
	}

	items, err := store.Recent(ctx, core.MemoryConversation, 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "turn 4", items[0].Payload["utterance"])
	assert.Equal(t, "turn 2", items[2].Payload["utterance"])
}

func TestCleanupRemovesOldItems(t *testing.T) {
	store := NewStore(10, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, conversationItem(0, time.Now().Add(-40*24*time.Hour))))
	require.NoError(t, store.Add(ctx, conversationItem(1, time.Now())))

	require.NoError(t, store.Cleanup(ctx, 30*24*time.Hour))

	items, err := store.Recent(ctx, core.MemoryConversation, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "turn 1", items[0].Payload["utterance"])
}

func TestCleanupHonorsExpiry(t *testing.T) {
	store := NewStore(10, zap.NewNop())
	ctx := context.Background()

	expired := time.Now().Add(-time.Minute)
	item := conversationItem(0, time.Now())
	item.ExpiresAt = &expired
	require.NoError(t, store.Add(ctx, item))

	require.NoError(t, store.Cleanup(ctx, 30*24*time.Hour))

	items, err := store.Recent(ctx, core.MemoryConversation, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCleanupIdempotent(t *testing.T) {
	store := NewStore(10, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, conversationItem(0, time.Now().Add(-40*24*time.Hour))))
	require.NoError(t, store.Add(ctx, conversationItem(1, time.Now())))

	require.NoError(t, store.Cleanup(ctx, 30*24*time.Hour))
	first, err := store.Snapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Cleanup(ctx, 30*24*time.Hour))
	second, err := store.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second, "second cleanup with no writes in between is a no-op")
}

func TestCleanupEmptyStore(t *testing.T) {
	store := NewStore(10, zap.NewNop())
	assert.NoError(t, store.Cleanup(context.Background(), 30*24*time.Hour))
}

func TestSnapshotPartitionsKinds(t *testing.T) {
	store := NewStore(10, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, conversationItem(0, time.Now())))
	require.NoError(t, store.Add(ctx, core.MemoryItem{
		Kind:      core.MemoryEmailContext,
		Payload:   map[string]string{"email_id": "msg-1"},
		CreatedAt: time.Now(),
	}))
	require.NoError(t, store.Add(ctx, core.MemoryItem{
		Kind:      core.MemoryPreference,
		Payload:   map[string]string{"default_city": "Sfax"},
		CreatedAt: time.Now(),
	}))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Conversation, 1)
	assert.Len(t, snap.EmailContext, 1)
	assert.Len(t, snap.Preference, 1)

	recent, ok := snap.Recent(core.MemoryEmailContext)
	require.True(t, ok)
	assert.Equal(t, "msg-1", recent.Payload["email_id"])
}
