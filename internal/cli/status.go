package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/soyeahso/duckshell/internal/config"
	"github.com/soyeahso/duckshell/internal/hooks"
	"github.com/soyeahso/duckshell/internal/logging"
	"github.com/soyeahso/duckshell/internal/version"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show DuckShell paths, configuration and installed plugin files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("DuckShell %s (commit %s)", version.Version, version.Commit)))
			fmt.Fprintln(w)

			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(w, "Config:  error loading: %v\n", err)
				return nil
			}
			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				fmt.Fprintf(w, "Config:  %s %s\n", paths.Config, mutedStyle.Render("(not found, using defaults)"))
			} else {
				fmt.Fprintf(w, "Config:  %s\n", paths.Config)
			}
			config.ResolveDirs(&cfg, paths)

			fmt.Fprintf(w, "Plugins: %s\n", cfg.Plugins.Dir)
			fmt.Fprintf(w, "Logs:    %s (level=%s)\n", cfg.Logging.File, cfg.Logging.Level)
			if cfg.History.Store == "none" {
				fmt.Fprintln(w, "History: disabled")
			} else {
				fmt.Fprintf(w, "History: %s%s\n", cfg.History.Path, fileSize(cfg.History.Path))
			}

			timeout := "none"
			if cfg.Fetch.TimeoutSeconds > 0 {
				timeout = fmt.Sprintf("%ds", cfg.Fetch.TimeoutSeconds)
			}
			fmt.Fprintf(w, "Fetch:   timeout=%s retries=%d limit=%s\n",
				timeout, cfg.Fetch.RetryMax, humanize.IBytes(uint64(cfg.Fetch.MaxBytes)))

			if len(cfg.Plugins.Register) > 0 {
				names := make([]string, 0, len(cfg.Plugins.Register))
				for name := range cfg.Plugins.Register {
					names = append(names, name)
				}
				sort.Strings(names)
				pairs := make([]string, len(names))
				for i, name := range names {
					pairs[i] = name + "=" + cfg.Plugins.Register[name]
				}
				fmt.Fprintf(w, "Preset:  %s\n", strings.Join(pairs, ", "))
			}

			printHooks(w, cfg.Hooks)

			fmt.Fprintln(w)
			printPluginFiles(w, cfg.Plugins.Dir)

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(w, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(w, "  - %s: %s\n", issue.Path, issue.Message)
				}
			}
			return nil
		},
	}
}

// printHooks summarizes the configured command hooks per event.
func printHooks(w io.Writer, cfg config.HooksConfig) {
	m := hooks.NewManager(logging.Nop())
	hooks.RegisterCommands(m, cfg)

	events := m.Events()
	if len(events) == 0 {
		fmt.Fprintln(w, "Hooks:   none")
		return
	}
	parts := make([]string, len(events))
	for i, ev := range events {
		parts[i] = fmt.Sprintf("%s=%d", ev, m.Count(ev))
	}
	fmt.Fprintf(w, "Hooks:   %s\n", strings.Join(parts, ", "))
}

// printPluginFiles lists the executables present in the plugin directory.
// The registry itself is not persisted, so this shows files on disk only.
func printPluginFiles(w io.Writer, dir string) {
	fmt.Fprintln(w, headerStyle.Render("Plugin files"))

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(w, "  (plugin directory not created yet)")
		} else {
			fmt.Fprintf(w, "  error reading %s: %v\n", dir, err)
		}
		return
	}

	shown := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "  %-20s %10s  %s\n", e.Name(), humanize.IBytes(uint64(info.Size())), mutedStyle.Render(humanize.Time(info.ModTime())))
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(w, "  (none)")
	}
}

func fileSize(path string) string {
	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return ""
	}
	return " (" + humanize.IBytes(uint64(info.Size())) + ")"
}
