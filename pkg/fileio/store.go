package fileio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// File is a decoded text file
type File struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Store reads and writes text files on the local disk
type Store struct {
	logger *slog.Logger
}

// NewStore creates a store. logger may be nil.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger}
}

// Read loads and decodes path
func (s *Store) Read(ctx context.Context, path string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return File{}, fmt.Errorf("resolve %s: %w", path, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", absPath, err)
	}

	content, label, err := Decode(data)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", absPath, err)
	}

	s.logger.Debug("file read", "path", absPath, "encoding", label, "bytes", len(data))
	return File{Path: absPath, Content: content, Encoding: label}, nil
}

// Write encodes content and replaces path atomically. Parent directories are
// created as needed and an existing file keeps its permissions.
func (s *Store) Write(ctx context.Context, path, content, encoding string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(content, encoding)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := WriteAtomic(path, data); err != nil {
		return err
	}

	s.logger.Debug("file written", "path", path, "encoding", Normalize(encoding), "bytes", len(data))
	return nil
}

// WriteAtomic writes data to a temporary file next to path and renames it
// into place.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
