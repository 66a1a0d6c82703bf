package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeConsole()
	c.Session.Mode = strings.TrimSpace(c.Session.Mode)
	if c.Session.Mode == "" {
		c.Session.Mode = defaultSessionMode
	}
	c.Dialog.Interactive = normalizeMode(c.Dialog.Interactive)
	if c.Overlay.MaxEntries <= 0 {
		c.Overlay.MaxEntries = defaultOverlayEntries
	}
	if c.Notify.MaxVisible <= 0 {
		c.Notify.MaxVisible = defaultNotifyVisible
	}
	if c.MessageLog.WindowLimit <= 0 {
		c.MessageLog.WindowLimit = defaultWindowLimit
	}
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
		def   string
	}{
		{"logging.dir", &c.Logging.Dir, ""},
		{"message_log.path", &c.MessageLog.Path, defaultMessageLogPath},
		{"spatial.dir", &c.Spatial.Dir, defaultSpatialDir},
		{"control.socket", &c.Control.Socket, defaultSocketPath},
		{"control.lock", &c.Control.Lock, defaultLockPath},
	}
	for _, f := range fields {
		if strings.TrimSpace(*f.value) == "" {
			*f.value = f.def
		}
		expanded, err := expandPath(strings.TrimSpace(*f.value))
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = expanded
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeConsole() {
	c.Console.Backend = strings.ToLower(strings.TrimSpace(c.Console.Backend))
	if c.Console.Backend == "" || c.Console.Backend == "console" {
		c.Console.Backend = defaultConsoleBackend
	}
	c.Console.Color = normalizeMode(c.Console.Color)
	if strings.TrimSpace(c.Console.TimestampFormat) == "" {
		c.Console.TimestampFormat = defaultTimestampLayout
	}
}

func normalizeMode(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "", "auto":
		return "auto"
	case "true", "yes", "on":
		return "always"
	case "false", "no", "off":
		return "never"
	default:
		return value
	}
}
