package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/Altagen/Velt/pkg/fileio"
)

// EnvConfigHome overrides the configuration directory
const EnvConfigHome = "VELT_CONFIG_HOME"

// FileName is the name of the configuration file inside Dir
const FileName = "config.json"

// MaxRecentFiles bounds the recent files list
const MaxRecentFiles = 10

// LogConfig selects the log level and format
type LogConfig struct {
	Level  string `koanf:"level" json:"level,omitempty"`
	Format string `koanf:"format" json:"format,omitempty"`
}

// AppConfig is the typed view of the configuration file
type AppConfig struct {
	Theme         string    `koanf:"theme" json:"theme"`
	ThemesDir     string    `koanf:"themesDir" json:"themesDir,omitempty"`
	AutoSave      bool      `koanf:"autoSave" json:"autoSave"`
	AutoSaveDelay int       `koanf:"autoSaveDelay" json:"autoSaveDelay"` // milliseconds
	RecentFiles   []string  `koanf:"recentFiles" json:"recentFiles"`
	Log           LogConfig `koanf:"log" json:"log"`
}

// AutoSaveInterval returns the auto-save delay as a duration
func (a AppConfig) AutoSaveInterval() time.Duration {
	return time.Duration(a.AutoSaveDelay) * time.Millisecond
}

// Defaults returns the configuration used when no file exists
func Defaults() AppConfig {
	return AppConfig{
		Theme:         "default-dark",
		AutoSave:      true,
		AutoSaveDelay: 1000,
		RecentFiles:   []string{},
		Log:           LogConfig{Level: "info", Format: "text"},
	}
}

// Dir returns the configuration directory: $VELT_CONFIG_HOME if set,
// otherwise velt under the user's configuration directory.
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigHome); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine config directory: %w", err)
	}
	return filepath.Join(base, "velt"), nil
}

// DefaultPath returns the path of config.json inside Dir
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Config holds the application configuration
type Config struct {
	mu      sync.RWMutex
	k       *koanf.Koanf
	path    string
	files   []string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// New creates a configuration holding the defaults
func New(logger *slog.Logger) *Config {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Config{
		k:      koanf.New("."),
		files:  make([]string, 0),
		logger: logger,
	}

	data, _ := json.Marshal(Defaults())
	if err := c.k.Load(rawbytes.Provider(data), kjson.Parser()); err != nil {
		logger.Error("Failed to load default config", "error", err)
	}
	return c
}

// Load creates a configuration from path, or from DefaultPath when path is
// empty. A missing file yields the defaults.
func Load(path string, logger *slog.Logger) (*Config, error) {
	c := New(logger)
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return c, err
		}
		path = p
	}
	c.path = path
	if err := c.LoadFile(path); err != nil {
		return c, err
	}
	return c, nil
}

// LoadFile merges a JSON or YAML file over the current values
func (c *Config) LoadFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.logger.Debug("Config file not found", "path", path)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = kjson.Parser()
	default:
		return fmt.Errorf("unsupported config file type: %s", ext)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}

	if !containsPath(c.files, path) {
		c.files = append(c.files, path)
	}
	if c.path == "" {
		c.path = path
	}
	c.logger.Debug("Loaded config file", "path", path)
	return nil
}

func containsPath(files []string, path string) bool {
	for _, f := range files {
		if f == path {
			return true
		}
	}
	return false
}

// Path returns the file Save writes to
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// GetString retrieves a string configuration value
func (c *Config) GetString(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k.String(key)
}

// Set sets a configuration value
func (c *Config) Set(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.k.Set(key, value)
}

// App returns the typed configuration
func (c *Config) App() AppConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.app()
}

func (c *Config) app() AppConfig {
	var out AppConfig
	if err := c.k.Unmarshal("", &out); err != nil {
		c.logger.Warn("Invalid config, using defaults", "error", err)
		return Defaults()
	}
	if out.AutoSaveDelay <= 0 {
		out.AutoSaveDelay = Defaults().AutoSaveDelay
	}
	if out.Theme == "" {
		out.Theme = Defaults().Theme
	}
	return out
}

// ThemesDir returns the configured themes directory, or themes next to the
// configuration file.
func (c *Config) ThemesDir() string {
	if dir := c.App().ThemesDir; dir != "" {
		return dir
	}
	if path := c.Path(); path != "" {
		return filepath.Join(filepath.Dir(path), "themes")
	}
	dir, err := Dir()
	if err != nil {
		return "themes"
	}
	return filepath.Join(dir, "themes")
}

// Save writes the configuration to Path as indented JSON
func (c *Config) Save() error {
	c.mu.RLock()
	app := c.app()
	path := c.path
	c.mu.RUnlock()

	if path == "" {
		return fmt.Errorf("no config file path")
	}

	data, err := json.MarshalIndent(app, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := fileio.WriteAtomic(path, data); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Initialize creates the configuration directory and writes a default
// config.json when none exists.
func (c *Config) Initialize() error {
	path := c.Path()
	if path == "" {
		return fmt.Errorf("no config file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return c.Save()
}

// RecentFiles returns the persisted recent files list
func (c *Config) RecentFiles() []string {
	return c.App().RecentFiles
}

// SaveRecentFiles replaces the recent files list and writes the file
func (c *Config) SaveRecentFiles(files []string) error {
	if files == nil {
		files = []string{}
	}
	if err := c.Set("recentFiles", files); err != nil {
		return err
	}
	return c.Save()
}

// Watch reloads the configuration when a loaded file changes and passes
// the new values to onChange. The parent directories are watched so files
// replaced by rename are picked up too.
func (c *Config) Watch(onChange func(AppConfig)) error {
	c.mu.RLock()
	files := append([]string(nil), c.files...)
	c.mu.RUnlock()

	if len(files) == 0 {
		return fmt.Errorf("no files to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	c.mu.Lock()
	c.watcher = watcher
	c.mu.Unlock()

	watched := make(map[string]bool, len(files))
	for _, path := range files {
		watched[filepath.Clean(path)] = true
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			c.logger.Warn("Failed to watch config file", "path", path, "error", err)
		}
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !watched[filepath.Clean(event.Name)] {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				c.logger.Info("Config file changed", "path", event.Name)
				if err := c.LoadFile(event.Name); err != nil {
					c.logger.Error("Failed to reload config file", "path", event.Name, "error", err)
					continue
				}
				onChange(c.App())

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Error("Config watcher error", "error", err)
			}
		}
	}()

	return nil
}

// Close stops the watcher
func (c *Config) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}
