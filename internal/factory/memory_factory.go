package factory

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/config"
	"github.com/mikey/luca-assistant/internal/core"
	"github.com/mikey/luca-assistant/internal/memory"
)

// MemoryFactory creates memory repositories
type MemoryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewMemoryFactory creates a new memory factory
func NewMemoryFactory(cfg *config.Config, logger *zap.Logger) *MemoryFactory {
	return &MemoryFactory{cfg: cfg, logger: logger}
}

// CreateMemoryRepository creates the configured backend. A persistent backend
// that cannot be loaded degrades to an empty in-memory store; startup never
// fails on a corrupted store.
func (f *MemoryFactory) CreateMemoryRepository() (core.MemoryRepository, error) {
	capacity := f.cfg.GetInt("memory.max_short_term")

	if !f.cfg.GetBool("memory.persistence") {
		return memory.NewStore(capacity, f.logger), nil
	}

	store := f.cfg.GetString("memory.store")
	switch store {
	case "memory":
		return memory.NewStore(capacity, f.logger), nil
	case "sqlite":
		repo, err := memory.NewSQLiteStore(f.cfg.GetString("memory.sqlite_path"), capacity, f.logger)
		if err != nil {
			return f.degrade(capacity, err), nil
		}
		return repo, nil
	case "mysql":
		repo, err := memory.NewMySQLStore(f.cfg.GetString("memory.mysql_dsn"), capacity, f.logger)
		if err != nil {
			return f.degrade(capacity, err), nil
		}
		return repo, nil
	case "redis":
		repo, err := memory.NewRedisStore(
			f.cfg.GetString("memory.redis_addr"),
			f.cfg.GetString("memory.redis_password"),
			f.cfg.GetInt("memory.redis_db"),
			capacity,
			f.logger,
		)
		if err != nil {
			return f.degrade(capacity, err), nil
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported memory store: %s", store)
	}
}

// GetCleanupAge returns the decay cutoff derived from memory.cleanup_days.
func (f *MemoryFactory) GetCleanupAge() time.Duration {
	return time.Duration(f.cfg.GetInt("memory.cleanup_days")) * 24 * time.Hour
}

// GetCleanupFrequency returns how often the decay loop runs.
func (f *MemoryFactory) GetCleanupFrequency() (time.Duration, error) {
	return f.cfg.GetDuration("memory.cleanup_frequency")
}

func (f *MemoryFactory) degrade(capacity int, err error) core.MemoryRepository {
	f.logger.Warn("persistent memory store unavailable, starting with empty in-memory store",
		zap.Error(fmt.Errorf("%w: %v", core.ErrCorruptedMemoryStore, err)))
	return memory.NewStore(capacity, f.logger)
}
