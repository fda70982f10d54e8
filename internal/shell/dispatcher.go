// Package shell implements the interactive DuckShell: line dispatch to
// built-ins, plugins and external programs, tab completion and the read loop.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/soyeahso/duckshell/internal/logging"
	"github.com/soyeahso/duckshell/internal/plugin"
	"github.com/soyeahso/duckshell/internal/process"
	"github.com/soyeahso/duckshell/internal/store"
	"github.com/soyeahso/duckshell/internal/sysinfo"
)

// ErrExit is returned by Dispatch when the user asked to leave the shell.
var ErrExit = errors.New("exit requested")

// DefaultHistoryLimit is used when Deps.HistoryLimit is not positive.
const DefaultHistoryLimit = 20

// Builtins lists the commands handled by the dispatcher itself.
var Builtins = []string{"quack", "dsh", "dupi", "exit"}

// History is the persistent record the shell reads from and writes to.
type History interface {
	AddHistory(ctx context.Context, line string) error
	RecentHistory(ctx context.Context, limit int) ([]store.HistoryEntry, error)
	RecentEvents(ctx context.Context, limit int) ([]store.PluginEvent, error)
}

// Deps are the collaborators of a Dispatcher. History may be nil when
// persistence is disabled.
type Deps struct {
	Registry     *plugin.Registry
	Installer    *plugin.Installer
	SysInfo      sysinfo.Provider
	History      History
	HistoryLimit int
	Out          io.Writer
	Log          *logging.Logger
}

// Dispatcher resolves one input line at a time: built-ins first, then
// registered plugins, then external programs.
type Dispatcher struct {
	reg          *plugin.Registry
	installer    *plugin.Installer
	sysinfo      sysinfo.Provider
	history      History
	historyLimit int
	out          io.Writer
	log          *logging.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(d Deps) *Dispatcher {
	if d.SysInfo == nil {
		d.SysInfo = sysinfo.Host{}
	}
	if d.HistoryLimit <= 0 {
		d.HistoryLimit = DefaultHistoryLimit
	}
	return &Dispatcher{
		reg:          d.Registry,
		installer:    d.Installer,
		sysinfo:      d.SysInfo,
		history:      d.History,
		historyLimit: d.HistoryLimit,
		out:          d.Out,
		log:          d.Log.Sub("shell"),
	}
}

// Dispatch runs a single input line. Every failure is reported to the user
// and swallowed; the only error returned is ErrExit.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := fields[0], fields[1:]

	d.log.Debug().Str("command", name).Int("args", len(args)).Msg("dispatching")

	switch name {
	case "quack":
		d.quack(args)
	case "dsh":
		d.dsh(ctx, args)
	case "dupi":
		d.dupi(ctx, args)
	case "exit":
		return ErrExit
	default:
		if d.reg.Has(name) {
			if err := d.reg.Execute(ctx, name, args); err != nil {
				d.log.Debug().Err(err).Str("plugin", name).Msg("plugin execution failed")
			}
			return nil
		}
		d.external(ctx, line, name, args)
	}
	return nil
}

// external runs a program from PATH. A program that cannot be started is
// reported as an unknown command.
func (d *Dispatcher) external(ctx context.Context, line, name string, args []string) {
	res, err := process.Run(ctx, name, args)
	if err != nil {
		d.log.Debug().Err(err).Str("command", name).Msg("external command failed to start")
		fmt.Fprintf(d.out, "Quack? Unknown command: %s\n", strings.TrimSpace(line))
		return
	}
	process.Report(d.out, res)
}
