package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"dbglog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose writable paths live in a per-test temp
// directory. Options are applied in order.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.MessageLog.Path = filepath.Join(base, "data", "messages.db")
	cfgVal.Spatial.Dir = filepath.Join(base, "recordings")
	cfgVal.Control.Socket = filepath.Join(base, "run", "dbglog.sock")
	cfgVal.Control.Lock = filepath.Join(base, "run", "dbglog.lock")
	cfgVal.Control.WatchConfig = false
	cfgVal.Dialog.Interactive = "never"
	cfgVal.Console.Color = "never"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCategories seeds initial category states.
func WithCategories(states map[string]bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Categories = states
	}
}

// WithConsoleBackend selects the console sink backend.
func WithConsoleBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Console.Backend = backend
	}
}

// WithConfigFile writes contents to a config file under the temp directory
// and records its path for BaseDir lookups.
func WithConfigFile(name, contents string) ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(b.baseDir, name)
		if err := os.WriteFile(target, []byte(contents), 0o644); err != nil {
			b.t.Fatalf("write config %s: %v", name, err)
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Control.Socket))
}
