package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
)

// SettingsStore persists flat key/value application settings.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (map[string]string, error)
	SaveSettings(ctx context.Context, values map[string]string) error
}

type sqliteSettingsStore struct {
	db *sql.DB
}

// NewSQLiteSettingsStore keeps settings in the `settings` table.
func NewSQLiteSettingsStore(db *sql.DB) SettingsStore {
	return &sqliteSettingsStore{db: db}
}

func (s *sqliteSettingsStore) LoadSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		values[key] = value
	}
	return values, rows.Err()
}

// SaveSettings upserts every value in one transaction, keys in sorted order.
func (s *sqliteSettingsStore) SaveSettings(ctx context.Context, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if _, err := stmt.ExecContext(ctx, k, values[k]); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", k, err)
		}
	}
	return tx.Commit()
}

const settingsKey = "settings"

type redisSettingsStore struct {
	rdb *redis.Client
}

// NewRedisSettingsStore keeps settings in a single Redis hash.
func NewRedisSettingsStore(rdb *redis.Client) SettingsStore {
	return &redisSettingsStore{rdb: rdb}
}

func (s *redisSettingsStore) LoadSettings(ctx context.Context) (map[string]string, error) {
	values, err := s.rdb.HGetAll(ctx, settingsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings from redis: %w", err)
	}
	return values, nil
}

func (s *redisSettingsStore) SaveSettings(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	fields := make(map[string]any, len(values))
	for k, v := range values {
		fields[k] = v
	}
	return s.rdb.HSet(ctx, settingsKey, fields).Err()
}
