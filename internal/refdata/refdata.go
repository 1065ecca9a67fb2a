// Package refdata serves the reference score tables from a local directory
// or a remote store, behind an in-memory cache.
package refdata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/tidemark/tidemark/pkg/config"
	"github.com/tidemark/tidemark/pkg/scoretable"
)

// ErrNotFound is returned when a table does not exist in the store.
var ErrNotFound = errors.New("reference table not found")

// Store is a writable table source. Every backend implements it so tables
// can be pushed from a local directory.
type Store interface {
	scoretable.Source
	PutTable(ctx context.Context, name string, data []byte) error
}

// LocalSource reads tables from a directory tree. Table paths use forward
// slashes regardless of platform.
type LocalSource struct {
	BaseDir string
}

// NewLocalSource creates a LocalSource rooted at the given directory.
func NewLocalSource(baseDir string) *LocalSource {
	return &LocalSource{BaseDir: baseDir}
}

func (s *LocalSource) path(name string) (string, error) {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("table path %q escapes the data directory", name)
	}
	return filepath.Join(s.BaseDir, rel), nil
}

// ReadTable reads a table file.
func (s *LocalSource) ReadTable(_ context.Context, name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// PutTable writes a table file, creating directories as needed.
func (s *LocalSource) PutTable(_ context.Context, name string, data []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(p, data, 0o644)
}

// Walk calls fn with the slash-separated path of every table file under
// the directory.
func (s *LocalSource) Walk(fn func(name string) error) error {
	return filepath.WalkDir(s.BaseDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(p) {
		case ".csv", ".xlsx":
		default:
			return nil
		}
		rel, err := filepath.Rel(s.BaseDir, p)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel))
	})
}

func objectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Open builds the store selected by the configuration.
func Open(ctx context.Context, cfg config.DataConfig) (Store, error) {
	if cfg.Source == config.SourceLocal || cfg.Source == "" {
		return NewLocalSource(cfg.Dir), nil
	}

	var (
		store Store
		err   error
	)
	switch cfg.Source {
	case config.SourceS3:
		store, err = NewS3Source(ctx, cfg.S3)
	case config.SourceGCS:
		store, err = NewGCSSource(ctx, cfg.GCS)
	case config.SourceAzure:
		store, err = NewAzureSource(cfg.Azure)
	case config.SourcePostgres:
		store, err = OpenPostgres(ctx, cfg.Postgres.URL)
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Source)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Close releases the resources of a store, if it holds any.
func Close(s scoretable.Source) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
