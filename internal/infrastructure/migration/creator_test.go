package migration

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "add_users_table", "add_users_table"},
		{"spaces become underscores", "add users table", "add_users_table"},
		{"mixed case is lowered", "AddUsersTable", "adduserstable"},
		{"repeated separators collapse", "add  --  users", "add_users"},
		{"trailing separator trimmed", "add users ", "add_users"},
		{"special characters dropped", "add@users!table", "adduserstable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add billing tables")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(mf.UpPath, "_add_billing_tables.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_billing_tables.down.sql"))
	assert.Len(t, mf.Version, 14)

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add billing tables")

	_, err = os.Stat(mf.DownPath)
	require.NoError(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory yields empty list", func(t *testing.T) {
		migrations, err := ListMigrations("/nonexistent/path")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("lists only up migration base names", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"001_first.up.sql", "001_first.down.sql",
			"002_second.up.sql", "002_second.down.sql",
			"notes.txt",
		} {
			require.NoError(t, os.WriteFile(dir+"/"+name, []byte("--"), 0o644))
		}

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"001_first", "002_second"}, migrations)
	})
}
