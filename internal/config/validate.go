package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Shell.HistoryLimit < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "shell.historyLimit",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Shell.HistoryLimit),
		})
	}

	for name, path := range cfg.Plugins.Register {
		if name == "" || strings.ContainsAny(name, " \t") {
			issues = append(issues, ValidationIssue{
				Path:    "plugins.register",
				Message: fmt.Sprintf("plugin name %q must be a single non-empty word", name),
			})
		}
		if path == "" {
			issues = append(issues, ValidationIssue{
				Path:    "plugins.register." + name,
				Message: "executable path is required",
			})
		}
	}

	// Fetch validation
	if cfg.Fetch.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "fetch.timeoutSeconds",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Fetch.TimeoutSeconds),
		})
	}
	if cfg.Fetch.RetryMax < 0 || cfg.Fetch.RetryMax > 10 {
		issues = append(issues, ValidationIssue{
			Path:    "fetch.retryMax",
			Message: fmt.Sprintf("must be 0-10, got %d", cfg.Fetch.RetryMax),
		})
	}
	if cfg.Fetch.MaxBytes < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "fetch.maxBytes",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Fetch.MaxBytes),
		})
	}

	validStores := []string{"sqlite", "none"}
	if cfg.History.Store != "" && !slices.Contains(validStores, cfg.History.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "history.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.History.Store),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	hookLists := []struct {
		path    string
		entries []HookEntry
	}{
		{"hooks.pluginInstalled", cfg.Hooks.PluginInstalled},
		{"hooks.pluginRemoved", cfg.Hooks.PluginRemoved},
		{"hooks.pluginUpdated", cfg.Hooks.PluginUpdated},
		{"hooks.shellStart", cfg.Hooks.ShellStart},
		{"hooks.shellStop", cfg.Hooks.ShellStop},
	}
	for _, hl := range hookLists {
		for i, h := range hl.entries {
			if strings.TrimSpace(h.Command) == "" {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("%s[%d].command", hl.path, i),
					Message: "command is required",
				})
			}
			if h.Timeout < 0 {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("%s[%d].timeout", hl.path, i),
					Message: fmt.Sprintf("must be >= 0, got %d", h.Timeout),
				})
			}
		}
	}

	return issues
}
