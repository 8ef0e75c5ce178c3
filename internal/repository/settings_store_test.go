package repository_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flow-ai/chatcore/internal/repository"
)

func TestSQLiteSettingsStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		db, mockDB, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		store := repository.NewSQLiteSettingsStore(db)

		rows := sqlmock.NewRows([]string{"key", "value"}).AddRow("web_search_enabled", "true")
		mockDB.ExpectQuery("SELECT key, value FROM settings").WillReturnRows(rows)

		values, err := store.LoadSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"web_search_enabled": "true"}, values)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Save upserts in key order", func(t *testing.T) {
		db, mockDB, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		store := repository.NewSQLiteSettingsStore(db)

		mockDB.ExpectBegin()
		prep := mockDB.ExpectPrepare("INSERT INTO settings")
		prep.ExpectExec().WithArgs("a", "1").WillReturnResult(sqlmock.NewResult(1, 1))
		prep.ExpectExec().WithArgs("b", "2").WillReturnResult(sqlmock.NewResult(1, 1))
		mockDB.ExpectCommit()

		require.NoError(t, store.SaveSettings(ctx, map[string]string{"b": "2", "a": "1"}))
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestRedisSettingsStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	store := repository.NewRedisSettingsStore(rdb)

	values, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, values)

	require.NoError(t, store.SaveSettings(ctx, map[string]string{"web_search_enabled": "true"}))
	values, err = store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "true", values["web_search_enabled"])
}
