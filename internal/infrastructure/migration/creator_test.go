package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"create grid tables", "create_grid_tables"},
		{"Create-Grid-Tables", "create_grid_tables"},
		{"CREATE_GRID_TABLES", "create_grid_tables"},
		{"create__grid__tables", "create_grid_tables"},
		{"Add Invoice Sequences v2", "add_invoice_sequences_v2"},
		{"tenant-settings-logo", "tenant_settings_logo"},
		{"   padded   ", "padded"},
		{"drop!@#$junk", "dropjunk"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add invoice sequences", "Per-series numbering state")
	require.NoError(t, err)
	require.NotNil(t, mf)

	// 14-digit YYYYMMDDHHMMSS version prefix
	assert.Len(t, mf.Version, 14)
	assert.True(t, strings.HasSuffix(mf.UpPath, ".up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, ".down.sql"))

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add invoice sequences")
	assert.Contains(t, string(up), "Per-series numbering state")
	assert.Contains(t, string(up), "Write your UP migration SQL here")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")
	assert.Contains(t, string(down), "Write your DOWN migration SQL here")
}

func TestCreateMigrationMakesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "db", "migrations")

	mf, err := CreateMigration(nested, "init", "bootstrap schema")
	require.NoError(t, err)
	require.NotNil(t, mf)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	writeAll := func(t *testing.T, dir string, names ...string) {
		t.Helper()
		for _, name := range names {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- sql"), 0644))
		}
	}

	t.Run("pairs collapse to base names", func(t *testing.T) {
		dir := t.TempDir()
		writeAll(t, dir,
			"000001_init_schema.up.sql", "000001_init_schema.down.sql",
			"000002_grid_tables.up.sql", "000002_grid_tables.down.sql",
			"000003_invoice_sequences.up.sql", "000003_invoice_sequences.down.sql",
		)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			"000001_init_schema",
			"000002_grid_tables",
			"000003_invoice_sequences",
		}, migrations)
	})

	t.Run("empty directory", func(t *testing.T) {
		migrations, err := ListMigrations(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("missing directory is not an error", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("non-migration files are skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeAll(t, dir,
			"000001_init.up.sql", "000001_init.down.sql",
			"README.md", "schema.dump", ".gitkeep",
		)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init"}, migrations)
	})

	t.Run("directories are skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeAll(t, dir, "000001_init.up.sql", "000001_init.down.sql")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0755))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init"}, migrations)
	})
}
