package mobile

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/database/sqlite"
)

const (
	todosKey           = "mobile-todo-storage"
	walletConnectedKey = "wallet-connected"
	walletAccountKey   = "wallet-account"
	syncQueueKey       = "@todo/mobile/sync-queue"
)

// Storage is a string key-value store that survives restarts.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]

	return v, ok, nil
}

func (m *MemoryStorage) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = value

	return nil
}

func (m *MemoryStorage) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)

	return nil
}

// SQLiteStorage keeps items in the kv table of a local sqlite file.
type SQLiteStorage struct {
	db *sqlite.DB
}

func OpenSQLiteStorage(path, migrationsPath string) (*SQLiteStorage, error) {
	db, err := sqlite.Open(sqlite.Options{DSN: path, MigrationsPath: migrationsPath})
	if err != nil {
		return nil, err
	}

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	query, args, err := s.db.QueryBuilder.Select("value").From("kv").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return "", false, err
	}

	var value string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}

		return "", false, err
	}

	return value, true, nil
}

func (s *SQLiteStorage) SetItem(ctx context.Context, key, value string) error {
	query, args, err := s.db.QueryBuilder.Insert("kv").
		Columns("key", "value", "updated_at").
		Values(key, value, sqlite.FormatTime(time.Now())).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)

	return err
}

func (s *SQLiteStorage) RemoveItem(ctx context.Context, key string) error {
	query, args, err := s.db.QueryBuilder.Delete("kv").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)

	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
