package config

const (
	defaultConfigPath      = "~/.config/dbglog/config.toml"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultSessionMode     = "Standalone"
	defaultConsoleBackend  = "pretty"
	defaultColorMode       = "auto"
	defaultOverlayEntries  = 32
	defaultNotifyVisible   = 4
	defaultMessageLogPath  = "~/.local/share/dbglog/messages.db"
	defaultWindowLimit     = 50
	defaultSpatialDir      = "~/.local/share/dbglog/recordings"
	defaultSocketPath      = "~/.local/share/dbglog/dbglog.sock"
	defaultLockPath        = "~/.local/share/dbglog/dbglog.lock"
	defaultTimestampLayout = "%Y.%m.%d-%H.%M.%S"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Session: Session{
			Mode: defaultSessionMode,
		},
		Console: Console{
			Backend:         defaultConsoleBackend,
			Color:           defaultColorMode,
			TimestampFormat: defaultTimestampLayout,
		},
		Overlay: Overlay{
			Enabled:    true,
			MaxEntries: defaultOverlayEntries,
		},
		Notify: Notify{
			Enabled:    true,
			MaxVisible: defaultNotifyVisible,
		},
		Dialog: Dialog{
			Enabled:     true,
			Interactive: defaultColorMode,
		},
		MessageLog: MessageLog{
			Enabled:     true,
			Path:        defaultMessageLogPath,
			WindowLimit: defaultWindowLimit,
		},
		Spatial: Spatial{
			Enabled: true,
			Dir:     defaultSpatialDir,
		},
		Control: Control{
			Socket:      defaultSocketPath,
			Lock:        defaultLockPath,
			WatchConfig: true,
		},
	}
}
