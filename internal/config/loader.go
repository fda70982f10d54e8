package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandFields processes ${ENV_VAR} references in fields that commonly carry
// host-specific values.
func expandFields(cfg *Config) {
	cfg.Fetch.UserAgent = expandEnvVars(cfg.Fetch.UserAgent)
	cfg.Plugins.Dir = expandEnvVars(cfg.Plugins.Dir)
	for _, entries := range []*[]HookEntry{
		&cfg.Hooks.PluginInstalled,
		&cfg.Hooks.PluginRemoved,
		&cfg.Hooks.PluginUpdated,
		&cfg.Hooks.ShellStart,
		&cfg.Hooks.ShellStop,
	} {
		for i := range *entries {
			(*entries)[i].Command = expandEnvVars((*entries)[i].Command)
		}
	}
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	// yaml.v3 merges into an existing map, so decode register from scratch.
	cfg.Plugins.Register = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandFields(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file, creating its
// directory when needed.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
// An explicit empty plugins.register map disables the built-in registrations.
func applyDefaults(cfg *Config) {
	if cfg.Plugins.Register == nil {
		cfg.Plugins.Register = Defaults().Plugins.Register
	}
	if cfg.Shell.Prompt == "" {
		cfg.Shell.Prompt = defaultPrompt
	}
	if cfg.Shell.HistoryLimit == 0 {
		cfg.Shell.HistoryLimit = defaultHistoryLimit
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = defaultUserAgent
	}
	if cfg.Fetch.MaxBytes == 0 {
		cfg.Fetch.MaxBytes = defaultMaxBytes
	}
	if cfg.History.Store == "" {
		cfg.History.Store = "sqlite"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads DUCKSHELL_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DUCKSHELL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("DUCKSHELL_PLUGIN_DIR"); v != "" {
		cfg.Plugins.Dir = v
	}
	if v := os.Getenv("DUCKSHELL_PROMPT"); v != "" {
		cfg.Shell.Prompt = v
	}
}
