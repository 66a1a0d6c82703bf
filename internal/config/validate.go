package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateConsole(); err != nil {
		return err
	}
	if err := c.validateDialog(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	return c.validateCategories()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func (c *Config) validateConsole() error {
	switch c.Console.Backend {
	case "pretty", "json", "zap":
	default:
		return fmt.Errorf("console.backend: unsupported value %q (want pretty, json or zap)", c.Console.Backend)
	}
	if !validMode(c.Console.Color) {
		return fmt.Errorf("console.color: unsupported value %q (want auto, always or never)", c.Console.Color)
	}
	return nil
}

func (c *Config) validateDialog() error {
	if !validMode(c.Dialog.Interactive) {
		return fmt.Errorf("dialog.interactive: unsupported value %q (want auto, always or never)", c.Dialog.Interactive)
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.Instance < 0 {
		return errors.New("session.instance must be non-negative")
	}
	return nil
}

func (c *Config) validateCategories() error {
	for name := range c.Categories {
		if strings.TrimSpace(name) == "" {
			return errors.New("categories: empty category name")
		}
		if strings.EqualFold(name, "all") {
			return errors.New(`categories: "All" is reserved`)
		}
	}
	return nil
}

func validMode(value string) bool {
	return value == "auto" || value == "always" || value == "never"
}
