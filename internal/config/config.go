package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrUnsupportedFormat is returned for config files that are neither TOML
// nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Logging configures dbglog's own diagnostics.
type Logging struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	Dir    string `toml:"dir" yaml:"dir"`
}

// Session describes the process that emits events. It feeds the context
// descriptor and the overlay key.
type Session struct {
	Mode     string `toml:"mode" yaml:"mode"`
	Instance int    `toml:"instance" yaml:"instance"`
}

// Console configures the console sink.
type Console struct {
	// Backend is pretty, json or zap.
	Backend string `toml:"backend" yaml:"backend"`
	// Color is auto, always or never.
	Color           string `toml:"color" yaml:"color"`
	Source          bool   `toml:"source" yaml:"source"`
	TimestampFormat string `toml:"timestamp_format" yaml:"timestamp_format"`
}

// Overlay configures the on-screen board.
type Overlay struct {
	Enabled    bool `toml:"enabled" yaml:"enabled"`
	MaxEntries int  `toml:"max_entries" yaml:"max_entries"`
}

// Notify configures toast notifications.
type Notify struct {
	Enabled    bool `toml:"enabled" yaml:"enabled"`
	MaxVisible int  `toml:"max_visible" yaml:"max_visible"`
}

// Dialog configures blocking prompts. Only hosts given an input stream, such
// as the one behind emit --local, prompt.
type Dialog struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
	// Interactive is auto, always or never. auto asks only on a terminal.
	Interactive string `toml:"interactive" yaml:"interactive"`
}

// MessageLog configures the persistent message log.
type MessageLog struct {
	Enabled     bool   `toml:"enabled" yaml:"enabled"`
	Path        string `toml:"path" yaml:"path"`
	WindowLimit int    `toml:"window_limit" yaml:"window_limit"`
}

// Spatial configures the spatial annotation recorder.
type Spatial struct {
	Enabled       bool   `toml:"enabled" yaml:"enabled"`
	Dir           string `toml:"dir" yaml:"dir"`
	RecordOnStart bool   `toml:"record_on_start" yaml:"record_on_start"`
}

// Control configures the host's control channel.
type Control struct {
	Socket      string `toml:"socket" yaml:"socket"`
	Lock        string `toml:"lock" yaml:"lock"`
	WatchConfig bool   `toml:"watch_config" yaml:"watch_config"`
}

// Config encapsulates all configuration values for dbglog.
//
// Categories holds initial category states by name; names are used verbatim,
// so runtime categories must be written with their "dbg" prefix.
type Config struct {
	Logging    Logging         `toml:"logging" yaml:"logging"`
	Session    Session         `toml:"session" yaml:"session"`
	Categories map[string]bool `toml:"categories" yaml:"categories"`
	Console    Console         `toml:"console" yaml:"console"`
	Overlay    Overlay         `toml:"overlay" yaml:"overlay"`
	Notify     Notify          `toml:"notify" yaml:"notify"`
	Dialog     Dialog          `toml:"dialog" yaml:"dialog"`
	MessageLog MessageLog      `toml:"message_log" yaml:"message_log"`
	Spatial    Spatial         `toml:"spatial" yaml:"spatial"`
	Control    Control         `toml:"control" yaml:"control"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the resolved path and whether the file existed; a missing file
// yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := decode(resolvedPath, file, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decode(path string, r io.Reader, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", "":
		return toml.NewDecoder(r).Decode(cfg)
	case ".yaml", ".yml":
		err := yaml.NewDecoder(r).Decode(cfg)
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	for _, name := range []string{"dbglog.toml", "dbglog.yaml", "dbglog.yml"} {
		projectPath, err := filepath.Abs(name)
		if err != nil {
			return "", false, err
		}
		if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
			return projectPath, true, nil
		}
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the host writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Control.Socket), filepath.Dir(c.Control.Lock)}
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	if c.MessageLog.Enabled {
		dirs = append(dirs, filepath.Dir(c.MessageLog.Path))
	}
	if c.Spatial.Enabled {
		dirs = append(dirs, c.Spatial.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
