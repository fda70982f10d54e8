package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soyeahso/duckshell/internal/config"
	"github.com/soyeahso/duckshell/internal/fetch"
	"github.com/soyeahso/duckshell/internal/hooks"
	"github.com/soyeahso/duckshell/internal/logging"
	"github.com/soyeahso/duckshell/internal/plugin"
	"github.com/soyeahso/duckshell/internal/shell"
	"github.com/soyeahso/duckshell/internal/store"
)

// runShell wires the shell from configuration and runs either the
// interactive loop or the single line given with -c.
func runShell(cmd *cobra.Command) error {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return err
	}
	config.ResolveDirs(&cfg, paths)

	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}

	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("creating directories: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	flog, closer, err := logging.NewFile(cfg.Logging.File, level, cfg.Logging.ConsoleStyle)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	hookMgr := hooks.NewManager(flog)
	hooks.RegisterCommands(hookMgr, cfg.Hooks)

	var history shell.History
	if cfg.History.Store == "sqlite" {
		db, err := store.Open(cfg.History.Path, flog)
		if err != nil {
			// Run without history when the store cannot be opened.
			flog.Warn().Err(err).Str("path", cfg.History.Path).Msg("history store unavailable")
		} else {
			defer db.Close()
			db.Subscribe(hookMgr)
			defer db.Unsubscribe(hookMgr)
			history = db
		}
	}

	out := cmd.OutOrStdout()

	reg, err := plugin.NewRegistry(cfg.Plugins.Dir, out, hookMgr, flog)
	if err != nil {
		return err
	}
	registerConfigured(reg, cfg.Plugins.Register)
	flog.Debug().
		Int("plugins", reg.Count()).
		Strs("hooks", hookMgr.Events()).
		Msg("shell wired")

	fetcher := fetch.New(fetch.Options{
		Timeout:   time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		RetryMax:  cfg.Fetch.RetryMax,
		UserAgent: cfg.Fetch.UserAgent,
		MaxBytes:  cfg.Fetch.MaxBytes,
	}, flog)

	dispatcher := shell.NewDispatcher(shell.Deps{
		Registry:     reg,
		Installer:    plugin.NewInstaller(reg, fetcher, flog),
		History:      history,
		HistoryLimit: cfg.Shell.HistoryLimit,
		Out:          out,
		Log:          flog,
	})

	if oneShot != "" {
		if history != nil {
			if err := history.AddHistory(ctx, oneShot); err != nil {
				flog.Warn().Err(err).Msg("recording history")
			}
		}
		if err := dispatcher.Dispatch(ctx, oneShot); err != nil && !errors.Is(err, shell.ErrExit) {
			return err
		}
		return nil
	}

	reader, err := newReader(cmd.InOrStdin(), out, cfg.Shell.Prompt, shell.NewCompleter(reg.Names))
	if err != nil {
		return fmt.Errorf("initializing line reader: %w", err)
	}
	defer reader.Close()

	return shell.New(shell.Options{
		Dispatcher: dispatcher,
		Reader:     reader,
		History:    history,
		Hooks:      hookMgr,
		Out:        out,
		Log:        flog,
	}).Run(ctx)
}

// newReader picks the terminal line editor for real files and a plain
// scanner for anything else.
func newReader(in io.Reader, out io.Writer, prompt string, c *shell.Completer) (shell.LineReader, error) {
	if f, ok := in.(*os.File); ok {
		return shell.NewLineReader(f, out, prompt, c)
	}
	return shell.NewScanReader(in, out, prompt), nil
}

// registerConfigured registers the plugins listed under plugins.register in
// name order.
func registerConfigured(reg *plugin.Registry, entries map[string]string) {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		reg.Register(name, entries[name])
	}
}
