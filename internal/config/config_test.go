package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"dbglog/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "dbglog", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Control.Socket != filepath.Join(tempHome, ".local", "share", "dbglog", "dbglog.sock") {
		t.Fatalf("unexpected socket path: %q", cfg.Control.Socket)
	}
	if cfg.MessageLog.Path != filepath.Join(tempHome, ".local", "share", "dbglog", "messages.db") {
		t.Fatalf("unexpected message log path: %q", cfg.MessageLog.Path)
	}
	if cfg.Console.Backend != "pretty" || cfg.Console.Color != "auto" {
		t.Fatalf("unexpected console defaults: %+v", cfg.Console)
	}
	if cfg.Console.TimestampFormat != "%Y.%m.%d-%H.%M.%S" {
		t.Fatalf("unexpected timestamp layout %q", cfg.Console.TimestampFormat)
	}
	if cfg.Session.Mode != "Standalone" {
		t.Fatalf("unexpected session mode %q", cfg.Session.Mode)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dbglog.toml")
	content := `
[logging]
level = "DEBUG"
format = "json"

[categories]
dbgAI = false
LogNet = true

[console]
backend = "zap"
color = "off"

[session]
mode = "Client"
instance = 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if enabled, ok := cfg.Categories["dbgAI"]; !ok || enabled {
		t.Fatalf("expected dbgAI disabled, got %v", cfg.Categories)
	}
	if cfg.Console.Backend != "zap" || cfg.Console.Color != "never" {
		t.Fatalf("console not normalized: %+v", cfg.Console)
	}
	if cfg.Session.Mode != "Client" || cfg.Session.Instance != 2 {
		t.Fatalf("unexpected session %+v", cfg.Session)
	}
	if !cfg.Overlay.Enabled || cfg.Overlay.MaxEntries != 32 {
		t.Fatalf("defaults lost for unspecified sections: %+v", cfg.Overlay)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbglog.yaml")
	content := "categories:\n  dbgPhysics: false\ndialog:\n  interactive: never\nmessage_log:\n  enabled: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Categories["dbgPhysics"] {
		t.Fatalf("expected dbgPhysics disabled: %v", cfg.Categories)
	}
	if cfg.Dialog.Interactive != "never" {
		t.Fatalf("unexpected dialog mode %q", cfg.Dialog.Interactive)
	}
	if cfg.MessageLog.Enabled {
		t.Fatal("expected message log disabled")
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbglog.ini")
	if err := os.WriteFile(path, []byte("x=1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if !errors.Is(err, config.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"backend", func(c *config.Config) { c.Console.Backend = "syslog" }, "console.backend"},
		{"color", func(c *config.Config) { c.Console.Color = "sometimes" }, "console.color"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"instance", func(c *config.Config) { c.Session.Instance = -1 }, "session.instance"},
		{"reserved category", func(c *config.Config) { c.Categories = map[string]bool{"ALL": true} }, "reserved"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/logs")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "logs") {
		t.Fatalf("ExpandPath = %q", got)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbglog.toml")
	if err := os.WriteFile(path, []byte("[categories]\ndbgAI = true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan *config.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- config.Watch(ctx, path, func(c *config.Config) { changes <- c }, nil)
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-changes:
			if cfg.Categories["dbgAI"] {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned error: %v", err)
			}
			return
		case <-tick.C:
			// The watcher may not be registered yet; keep rewriting.
			if err := os.WriteFile(path, []byte("[categories]\ndbgAI = false\n"), 0o644); err != nil {
				t.Fatalf("rewrite config: %v", err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}
