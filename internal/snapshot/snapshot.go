// Package snapshot exports the catalog to a JSON file and imports book lists
// from JSON or YAML files.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/shelf/internal/models"
)

// Lister returns books matching a filter; the empty filter returns all of them.
type Lister interface {
	List(ctx context.Context, filter string) ([]models.Book, error)
}

// Creator adds one book to the catalog.
type Creator interface {
	Create(ctx context.Context, in models.BookInput) (*models.Book, error)
}

// Export writes every book to path as indented JSON and returns how many were written.
func Export(ctx context.Context, src Lister, path string) (int, error) {
	books, err := src.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("snapshot: list: %w", err)
	}
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("snapshot: encode: %w", err)
	}
	if err := writeAtomic(path, append(data, '\n')); err != nil {
		return 0, err
	}
	return len(books), nil
}

// Import reads book inputs from path and creates them in order. Files ending in
// .yaml or .yml are parsed as YAML, anything else as JSON. The first failing row
// stops the import; the count of books created before it is returned.
func Import(ctx context.Context, dst Creator, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("snapshot: read %s: %w", path, err)
	}

	var rows []models.BookInput
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &rows)
	default:
		err = json.Unmarshal(data, &rows)
	}
	if err != nil {
		return 0, fmt.Errorf("snapshot: parse %s: %w", path, err)
	}

	for i, in := range rows {
		if _, err := dst.Create(ctx, in); err != nil {
			return i, fmt.Errorf("snapshot: row %d: %w", i, err)
		}
	}
	return len(rows), nil
}

// writeAtomic writes content via tmp file → fsync → rename so readers never
// observe a partial snapshot.
func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".shelf-tmp-*")
	if err != nil {
		return fmt.Errorf("snapshot: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("snapshot: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("snapshot: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("snapshot: rename: %w", err)
	}
	success = true
	return nil
}
