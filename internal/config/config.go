package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	defaultPrompt       = "🦆> "
	defaultHistoryLimit = 20
	defaultUserAgent    = "duckshell/dev"
	defaultMaxBytes     = 64 << 20
)

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Shell: ShellConfig{
			Prompt:       defaultPrompt,
			HistoryLimit: defaultHistoryLimit,
		},
		Plugins: PluginsConfig{
			Register: map[string]string{"test": "echo"},
		},
		Fetch: FetchConfig{
			UserAgent: defaultUserAgent,
			MaxBytes:  defaultMaxBytes,
		},
		History: HistoryConfig{
			Store: "sqlite",
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}

// ResolveDirs fills the path fields left empty in cfg from the resolved Paths.
func ResolveDirs(cfg *Config, p Paths) {
	if cfg.Plugins.Dir == "" {
		cfg.Plugins.Dir = p.Plugins
	}
	if cfg.History.Path == "" {
		cfg.History.Path = p.HistoryDB
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = p.LogFile
	}
}
