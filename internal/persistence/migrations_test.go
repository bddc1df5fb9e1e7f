package persistence

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/gym?sslmode=disable":   "pgx5://u:p@localhost:5432/gym?sslmode=disable",
		"postgresql://u:p@localhost:5432/gym?sslmode=disable": "pgx5://u:p@localhost:5432/gym?sslmode=disable",
		"pgx5://localhost/gym":                                "pgx5://localhost/gym",
	}
	for in, want := range tests {
		assert.Equal(t, want, MigrationURL(in), in)
	}
}

func TestMigrations_AreEmbeddedInPairs(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	require.NotEmpty(t, names)
	for name := range names {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			assert.True(t, names[strings.TrimSuffix(name, ".up.sql")+".down.sql"], "missing down for %s", name)
		case strings.HasSuffix(name, ".down.sql"):
			assert.True(t, names[strings.TrimSuffix(name, ".down.sql")+".up.sql"], "missing up for %s", name)
		default:
			t.Errorf("unexpected migration file %s", name)
		}
	}
}

func TestRunMigrations_SkipsWithoutDSN(t *testing.T) {
	assert.NoError(t, RunMigrations("", zap.NewNop()))
}
