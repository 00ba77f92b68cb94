package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/core"
)

// MySQLStore is the shared-database backend, for deployments where several
// assistant hosts read the same conversation history.
type MySQLStore struct {
	db       *sql.DB
	capacity int
	logger   *zap.Logger
}

// NewMySQLStore connects with the given DSN and ensures the schema exists.
func NewMySQLStore(dsn string, capacity int, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS memory (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			kind VARCHAR(32) NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NULL,
			INDEX idx_memory_kind (kind, id)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create memory table: %w", err)
	}

	return &MySQLStore{db: db, capacity: capacity, logger: logger}, nil
}

// Add appends an item and trims the kind's ring buffer.
func (s *MySQLStore) Add(ctx context.Context, item core.MemoryItem) error {
	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	var expiresAt any
	if item.ExpiresAt != nil {
		expiresAt = item.ExpiresAt.UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memory (kind, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, string(item.Kind), string(payload), item.CreatedAt.UTC(), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert memory item: %w", err)
	}

	if s.capacity > 0 {
		// MySQL cannot reference the target table in a subquery directly.
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM memory
			WHERE kind = ? AND id NOT IN (
				SELECT id FROM (
					SELECT id FROM memory WHERE kind = ? ORDER BY id DESC LIMIT ?
				) AS recent
			)
		`, string(item.Kind), string(item.Kind), s.capacity)
		if err != nil {
			return fmt.Errorf("failed to evict memory items: %w", err)
		}
	}
	return nil
}

// Recent returns the last n items of a kind, most recent first.
func (s *MySQLStore) Recent(ctx context.Context, kind core.MemoryKind, n int) ([]core.MemoryItem, error) {
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

	var items []core.MemoryItem
	for rows.Next() {
		var kindCol, payload string
		var createdAt time.Time
		var expiresAt sql.NullTime
		if err := rows.Scan(&kindCol, &payload, &createdAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan memory row: %w", err)
		}

		item := core.MemoryItem{Kind: core.MemoryKind(kindCol), CreatedAt: createdAt}
		if err := json.Unmarshal([]byte(payload), &item.Payload); err != nil {
			s.logger.Warn("skipping memory item with corrupted payload", zap.Error(err))
			continue
		}
		if expiresAt.Valid {
			exp := expiresAt.Time
			item.ExpiresAt = &exp
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Cleanup removes items older than the cutoff or past their expiry.
func (s *MySQLStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM memory
		WHERE created_at < ? OR (expires_at IS NOT NULL AND expires_at <= ?)
	`, time.Now().Add(-olderThan).UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to clean up memory: %w", err)
	}

	if removed, err := result.RowsAffected(); err == nil && removed > 0 {
		s.logger.Debug("cleaned up memory items", zap.Int64("removed", removed))
	}
	return nil
}

// Snapshot returns the per-kind views for one turn.
func (s *MySQLStore) Snapshot(ctx context.Context) (core.MemorySnapshot, error) {
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

// Close closes the underlying connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
