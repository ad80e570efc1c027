// Package store provides JSON-file backed collection persistence.
// Each Collection is bound to one file holding a pretty-printed JSON
// array; reads load the whole array, writes rewrite the whole file.
// There is no file locking and no atomic rename: concurrent writers
// race and the last SaveAll wins.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Collection persists a slice of T in a single JSON file.
type Collection[T any] struct {
	path   string
	logger zerolog.Logger
}

// NewCollection binds a collection to the given file path.
func NewCollection[T any](path string, logger zerolog.Logger) *Collection[T] {
	return &Collection[T]{path: path, logger: logger}
}

// Path returns the backing file path.
func (c *Collection[T]) Path() string {
	return c.path
}

// Load reads the full collection from disk. When the file does not
// exist it is created holding the seed value and the seed is returned.
// A file that cannot be read or parsed degrades to the seed as well;
// the failure is logged, not returned, so a corrupt file never takes
// the service down.
func (c *Collection[T]) Load(seed []T) []T {
	if seed == nil {
		seed = []T{}
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			if werr := c.SaveAll(seed); werr != nil {
				c.logger.Error().Err(werr).Str("path", c.path).Msg("failed to create collection file")
			}
			return seed
		}
		c.logger.Error().Err(err).Str("path", c.path).Msg("failed to read collection file, using seed")
		return seed
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Error().Err(err).Str("path", c.path).Msg("collection file is corrupt, using seed")
		return seed
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// SaveAll rewrites the entire collection file, creating the parent
// directory when needed. The write is not atomic.
func (c *Collection[T]) SaveAll(items []T) error {
	if items == nil {
		items = []T{}
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding collection: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", c.path, err)
	}
	return nil
}
