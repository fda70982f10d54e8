package config

// Config is the root configuration for DuckShell.
type Config struct {
	Shell   ShellConfig   `yaml:"shell,omitempty"`
	Plugins PluginsConfig `yaml:"plugins,omitempty"`
	Fetch   FetchConfig   `yaml:"fetch,omitempty"`
	History HistoryConfig `yaml:"history,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Hooks   HooksConfig   `yaml:"hooks,omitempty"`
}

// ShellConfig controls the interactive prompt.
type ShellConfig struct {
	Prompt       string `yaml:"prompt,omitempty"`
	HistoryLimit int    `yaml:"historyLimit,omitempty"` // default row count for `dsh --history` and `dupi -log`
}

// PluginsConfig controls where plugins live and which are registered at startup.
type PluginsConfig struct {
	Dir string `yaml:"dir,omitempty"` // empty means <base>/plugins

	// Register maps plugin names to executables registered on every start,
	// without installing anything on disk.
	Register map[string]string `yaml:"register,omitempty"`
}

// FetchConfig configures remote archive downloads.
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"` // 0 = no timeout
	RetryMax       int    `yaml:"retryMax,omitempty"`       // 0 = single attempt
	UserAgent      string `yaml:"userAgent,omitempty"`
	MaxBytes       int64  `yaml:"maxBytes,omitempty"`
}

// HistoryConfig controls the command-history and plugin-event store.
type HistoryConfig struct {
	Store string `yaml:"store,omitempty"` // "sqlite" | "none"
	Path  string `yaml:"path,omitempty"`  // empty means <base>/data/history.db
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`  // empty means <base>/logs/duckshell.log
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}

// HooksConfig lists shell commands run on lifecycle events.
type HooksConfig struct {
	PluginInstalled []HookEntry `yaml:"pluginInstalled,omitempty"`
	PluginRemoved   []HookEntry `yaml:"pluginRemoved,omitempty"`
	PluginUpdated   []HookEntry `yaml:"pluginUpdated,omitempty"`
	ShellStart      []HookEntry `yaml:"shellStart,omitempty"`
	ShellStop       []HookEntry `yaml:"shellStop,omitempty"`
}

// HookEntry defines a single hook action.
type HookEntry struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout,omitempty"` // milliseconds
}
