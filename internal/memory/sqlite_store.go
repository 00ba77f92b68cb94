package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/core"
)

// SQLiteStore persists memory items to a local SQLite database so
// conversation context survives process restarts.
type SQLiteStore struct {
	db       *sql.DB
	capacity int
	logger   *zap.Logger
}

// NewSQLiteStore opens (or creates) the database at dbPath. Schema errors
// are returned to the caller, which degrades to an empty in-memory store.
func NewSQLiteStore(dbPath string, capacity int, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS memory (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create memory table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_memory_kind ON memory(kind, id)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &SQLiteStore{db: db, capacity: capacity, logger: logger}, nil
}

// Add appends an item and trims the kind's ring buffer.
func (s *SQLiteStore) Add(ctx context.Context, item core.MemoryItem) error {
	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	var expiresAt any
	if item.ExpiresAt != nil {
		expiresAt = item.ExpiresAt.Format(time.RFC3339)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memory (kind, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, string(item.Kind), string(payload), item.CreatedAt.Format(time.RFC3339), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert memory item: %w", err)
	}

	if s.capacity > 0 {
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM memory
			WHERE kind = ? AND id NOT IN (
				SELECT id FROM memory WHERE kind = ? ORDER BY id DESC LIMIT ?
			)
		`, string(item.Kind), string(item.Kind), s.capacity)
		if err != nil {
			return fmt.Errorf("failed to evict memory items: %w", err)
		}
	}
	return nil
}

// Recent returns the last n items of a kind, most recent first.
func (s *SQLiteStore) Recent(ctx context.Context, kind core.MemoryKind, n int) ([]core.MemoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, payload, created_at, expires_at
		FROM memory
		WHERE kind = ?
		ORDER BY id DESC
		LIMIT ?
	`, string(kind), n)
	if err != nil {
		return nil, fmt.Errorf("failed to query memory: %w", err)
	}
	defer rows.Close()
	return s.scanItems(rows)
}

// Cleanup removes items older than the cutoff or past their expiry.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan).Format(time.RFC3339)
	now := time.Now().Format(time.RFC3339)

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM memory
		WHERE created_at < ? OR (expires_at IS NOT NULL AND expires_at <= ?)
	`, cutoff, now)
	if err != nil {
		return fmt.Errorf("failed to clean up memory: %w", err)
	}

	if removed, err := result.RowsAffected(); err == nil && removed > 0 {
		s.logger.Debug("cleaned up memory items", zap.Int64("removed", removed))
	}
	return nil
}

// Snapshot returns the per-kind views for one turn.
func (s *SQLiteStore) Snapshot(ctx context.Context) (core.MemorySnapshot, error) {
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

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) scanItems(rows *sql.Rows) ([]core.MemoryItem, error) {
	var items []core.MemoryItem
	for rows.Next() {
		var kind, payload, createdAt string
		var expiresAt sql.NullString
		if err := rows.Scan(&kind, &payload, &createdAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan memory row: %w", err)
		}

		item := core.MemoryItem{Kind: core.MemoryKind(kind)}
		if err := json.Unmarshal([]byte(payload), &item.Payload); err != nil {
			s.logger.Warn("skipping memory item with corrupted payload", zap.Error(err))
			continue
		}
		created, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			s.logger.Warn("skipping memory item with corrupted timestamp", zap.Error(err))
			continue
		}
		item.CreatedAt = created
		if expiresAt.Valid {
			if exp, err := time.Parse(time.RFC3339, expiresAt.String); err == nil {
				item.ExpiresAt = &exp
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
