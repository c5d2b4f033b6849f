package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cardvault/pkg/models"
)

type Config struct {
	Path string
}

func DefaultConfig() Config {
	// Docker Compose / env override
	if p := os.Getenv("CARDVAULT_STORE_PATH"); p != "" {
		return Config{Path: p}
	}

	// local default: ~/.cardvault/verified_prices.json
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return Config{
		Path: filepath.Join(home, ".cardvault", "verified_prices.json"),
	}
}

func EnsureDataDir(cfg Config) error {
	return os.MkdirAll(filepath.Dir(cfg.Path), 0o755)
}

// ReadDocument loads the keyed store document. A missing file yields an
// empty document so a fresh install starts clean; an unparsable file is an
// error so data corruption is never masked by a silently empty store.
func ReadDocument(path string) (models.StoreDocument, error) {
	doc := models.StoreDocument{Cards: map[string]models.VerifiedPriceRecord{}}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			doc.Metadata.Version = "1.0.0"
			return doc, nil
		}
		return doc, fmt.Errorf("read store %s: %w", path, err)
	}

	if err := json.Unmarshal(b, &doc); err != nil {
		return doc, fmt.Errorf("parse store %s: %w", path, err)
	}
	if doc.Cards == nil {
		doc.Cards = map[string]models.VerifiedPriceRecord{}
	}
	return doc, nil
}

// WriteDocument rewrites the whole store atomically: marshal to a temp file
// in the same directory, then rename over the target. A crash mid-write
// leaves the previous document intact.
func WriteDocument(path string, doc models.StoreDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".verified_prices-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
