package database_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flow-ai/chatcore/internal/database"
)

func TestInitDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "flow.db")

	db, err := database.InitDB(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, table := range []string{"conversations", "messages", "settings"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	t.Run("Migrate is idempotent", func(t *testing.T) {
		assert.NoError(t, database.Migrate(db))
	})

	t.Run("Role constraint", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO conversations (id, title, created_at, updated_at) VALUES ('c1', 't', datetime('now'), datetime('now'))`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES ('m1', 'c1', 'system', '[]', datetime('now'))`)
		assert.Error(t, err)
	})
}
