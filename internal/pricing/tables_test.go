package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTablesValid(t *testing.T) {
	assert.NoError(t, DefaultTables().Validate())
}

func TestLoadTablesNoPathUsesDefaults(t *testing.T) {
	tables, err := LoadTables("")
	require.NoError(t, err)
	assert.Equal(t, 8.0, tables.Grades["PSA 10"])
	assert.Equal(t, 15.0, tables.BasePrices["basketball"])
}

func TestLoadTablesOverrideLayersOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"grades":{"PSA 10": 9.5, "RAW": 0.5}}`), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)
	assert.Equal(t, 9.5, tables.Grades["PSA 10"])
	// sections absent from the file keep their defaults
	assert.Equal(t, 10.0, tables.TierMultipliers["goat"])
	assert.Equal(t, 20.0, tables.BasePrices["pokemon"])
}

func TestLoadTablesRejectsUnknownGrade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"grades":{"PSA 11": 99}}`), 0o644))

	_, err := LoadTables(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PSA 11")
}

func TestLoadTablesRejectsUnknownTier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tier_multipliers":{"demigod": 7}}`), 0o644))

	_, err := LoadTables(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "demigod")
}

func TestLoadTablesMissingFile(t *testing.T) {
	_, err := LoadTables(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
