package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardvault/pkg/models"
)

func TestReadDocumentMissingFile(t *testing.T) {
	doc, err := ReadDocument(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.NotNil(t, doc.Cards)
	assert.Empty(t, doc.Cards)
	assert.Equal(t, "1.0.0", doc.Metadata.Version)
}

func TestReadDocumentCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := ReadDocument(path)
	assert.Error(t, err)
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "prices.json")

	doc := models.StoreDocument{
		Metadata: models.StoreMetadata{Version: "1.0.0", LastUpdated: "2026-08-30"},
		Cards: map[string]models.VerifiedPriceRecord{
			"2003_topps_chrome_lebron_james_111": {
				Name:       "2003 Topps Chrome LeBron James #111",
				Players:    []string{"LeBron James"},
				Confidence: 0.85,
				Prices: map[string]models.PriceRange{
					"PSA 10": {Min: 1000, Max: 1500, Avg: 1250, LastVerified: "2026-08"},
				},
			},
		},
	}
	require.NoError(t, WriteDocument(path, doc))

	got, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Metadata.Version, got.Metadata.Version)
	require.Contains(t, got.Cards, "2003_topps_chrome_lebron_james_111")
	assert.Equal(t, 1250.0, got.Cards["2003_topps_chrome_lebron_james_111"].Prices["PSA 10"].Avg)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
