package persistence

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNamesOrdered(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	require.Equal(t, []string{"001_schema.sql", "002_generate_payroll.sql"}, names)
}

func TestPayrollMigrationDeclaresUniqueCutoff(t *testing.T) {
	schema, err := fs.ReadFile(migrationFiles, "migrations/001_schema.sql")
	require.NoError(t, err)
	assert.Contains(t, string(schema), "CONSTRAINT unique_user_cutoff UNIQUE (user_id, cutoff_start, cutoff_end)")

	proc, err := fs.ReadFile(migrationFiles, "migrations/002_generate_payroll.sql")
	require.NoError(t, err)
	assert.Contains(t, string(proc), "FUNCTION generate_payroll(p_cutoff_start DATE, p_cutoff_end DATE)")
}
