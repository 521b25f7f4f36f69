package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Altagen/Velt/pkg/fileio"
)

const (
	NameDefaultDark  = "default-dark"
	NameDefaultLight = "default-light"
	NameCurrent      = "current"
)

var (
	// ErrNotFound is returned when a theme file does not exist
	ErrNotFound = errors.New("theme not found")
	// ErrBuiltin is returned when overwriting or deleting a built-in theme
	ErrBuiltin = errors.New("cannot modify default themes")
)

// Store reads and writes theme files in one directory
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store rooted at dir. logger may be nil.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the themes directory
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func isBuiltin(name string) bool {
	return name == NameDefaultDark || name == NameDefaultLight || name == NameCurrent
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}

// EnsureDefaults creates the directory and the built-in theme files that are
// missing. Existing files are left alone.
func (s *Store) EnsureDefaults() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create themes directory: %w", err)
	}
	defaults := map[string]Theme{
		NameDefaultDark:  DefaultDark(),
		NameDefaultLight: DefaultLight(),
	}
	for name, t := range defaults {
		if _, err := os.Stat(s.path(name)); err == nil {
			continue
		}
		if err := s.write(name, t); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the named theme
func (s *Store) Load(name string) (Theme, error) {
	if !validName(name) {
		return Theme{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return Theme{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return Theme{}, fmt.Errorf("failed to read theme %q: %w", name, err)
	}

	var t Theme
	if err := json.Unmarshal(data, &t); err != nil {
		return Theme{}, fmt.Errorf("failed to parse theme %q: %w", name, err)
	}
	return t, nil
}

// LoadCurrent returns current.json if it exists and parses, otherwise the
// configured theme, otherwise the built-in dark theme.
func (s *Store) LoadCurrent(configured string) Theme {
	if t, err := s.Load(NameCurrent); err == nil {
		return t
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.Warn("Ignoring unreadable current theme", "error", err)
	}

	t, err := s.Load(configured)
	if err == nil {
		return t
	}
	s.logger.Warn("Failed to load theme, using default", "theme", configured, "error", err)
	if configured == NameDefaultLight {
		return DefaultLight()
	}
	return DefaultDark()
}

// SaveCurrent writes t as current.json
func (s *Store) SaveCurrent(t Theme) error {
	return s.write(NameCurrent, t)
}

// SaveCustom writes t under name. Built-in names are refused.
func (s *Store) SaveCustom(name string, t Theme) error {
	if isBuiltin(name) {
		return ErrBuiltin
	}
	if !validName(name) {
		return fmt.Errorf("invalid theme name %q", name)
	}
	return s.write(name, t)
}

// Delete removes a custom theme. Built-in names are refused.
func (s *Store) Delete(name string) error {
	if isBuiltin(name) {
		return ErrBuiltin
	}
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	err := os.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to delete theme %q: %w", name, err)
	}
	return nil
}

// List returns the names of all theme files, sorted
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	slices.Sort(names)
	return names, nil
}

func (s *Store) write(name string, t Theme) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode theme %q: %w", name, err)
	}
	if err := fileio.WriteAtomic(s.path(name), data); err != nil {
		return fmt.Errorf("failed to save theme %q: %w", name, err)
	}
	return nil
}
