package shell

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/soyeahso/duckshell/internal/sysinfo"
	"github.com/soyeahso/duckshell/internal/version"
)

const (
	dshUsage  = "Quack! Use 'dsh --version' or 'dsh --info'"
	dupiUsage = "Quack! Use 'dupi -i <plugin|.pfds>', 'dupi -re <plugin>', 'dupi -ls', 'dupi -ud', or 'dupi -d <url>'"
)

func (d *Dispatcher) quack(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(d.out, "Quack quack!")
		return
	}
	fmt.Fprintf(d.out, "Quack! You said: %s\n", strings.Join(args, " "))
}

func (d *Dispatcher) dsh(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(d.out, dshUsage)
		return
	}

	switch strings.ToLower(args[0]) {
	case "--version", "-v":
		fmt.Fprintln(d.out, version.Banner())
	case "--info":
		info, err := d.sysinfo.Info(ctx)
		if err != nil {
			d.log.Debug().Err(err).Msg("incomplete system info")
		}
		sysinfo.Write(d.out, info)
	case "--history":
		d.showHistory(ctx, args[1:])
	default:
		fmt.Fprintf(d.out, "Quack? Unknown dsh option: %s\n", args[0])
	}
}

func (d *Dispatcher) dupi(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(d.out, dupiUsage)
		return
	}

	switch strings.ToLower(args[0]) {
	case "-i", "--install":
		if len(args) < 2 {
			fmt.Fprintln(d.out, "Quack? Specify a plugin name or .pfds file: 'dupi -i <plugin|.pfds>'")
			return
		}
		d.install(ctx, args[1])

	case "-re", "--remove":
		if len(args) < 2 {
			fmt.Fprintln(d.out, "Quack? Specify a plugin name: 'dupi -re <plugin>'")
			return
		}
		d.reg.Remove(ctx, args[1])

	case "-ls", "--list":
		d.reg.List()

	case "-ud", "--update":
		if _, err := d.installer.Update(ctx); err != nil {
			fmt.Fprintf(d.out, "Quack? Update failed: %v\n", err)
		}

	case "-d", "--download":
		if len(args) < 2 {
			fmt.Fprintln(d.out, "Quack? Specify a URL: 'dupi -d <url>'")
			return
		}
		if _, err := d.installer.DownloadAndInstall(ctx, args[1]); err != nil {
			fmt.Fprintf(d.out, "Quack? Failed to download plugin: %v\n", err)
		}

	case "-log", "--log":
		d.showEvents(ctx, args[1:])

	default:
		fmt.Fprintf(d.out, "Quack? Unknown dupi option: %s\n", args[0])
	}
}

// install takes an archive path when target ends in .pfds, otherwise it
// records target as both the plugin name and its executable.
func (d *Dispatcher) install(ctx context.Context, target string) {
	if !strings.HasSuffix(strings.ToLower(target), ".pfds") {
		d.reg.Install(ctx, target, target, "")
		return
	}
	if _, err := d.installer.InstallFromArchive(ctx, target, ""); err != nil {
		fmt.Fprintf(d.out, "Quack? Failed to install .pfds: %v\n", err)
	}
}

func (d *Dispatcher) showHistory(ctx context.Context, args []string) {
	limit, ok := d.limit(args)
	if !ok {
		return
	}
	if d.history == nil {
		fmt.Fprintln(d.out, "Quack? History is disabled.")
		return
	}

	entries, err := d.history.RecentHistory(ctx, limit)
	if err != nil {
		d.log.Warn().Err(err).Msg("reading history")
		fmt.Fprintf(d.out, "Quack? Cannot read history: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(d.out, "Quack! No history yet.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(d.out, "%5d  %s\n", e.ID, e.Line)
	}
}

func (d *Dispatcher) showEvents(ctx context.Context, args []string) {
	limit, ok := d.limit(args)
	if !ok {
		return
	}
	if d.history == nil {
		fmt.Fprintln(d.out, "Quack? History is disabled.")
		return
	}

	events, err := d.history.RecentEvents(ctx, limit)
	if err != nil {
		d.log.Warn().Err(err).Msg("reading plugin events")
		fmt.Fprintf(d.out, "Quack? Cannot read plugin log: %v\n", err)
		return
	}
	if len(events) == 0 {
		fmt.Fprintln(d.out, "Quack! No plugin events recorded.")
		return
	}
	for _, e := range events {
		line := fmt.Sprintf("  %s  %-16s  %s", e.CreatedAt.Local().Format(time.DateTime), e.Event, e.Plugin)
		if e.Origin != "" {
			line += " (from: " + e.Origin + ")"
		}
		fmt.Fprintln(d.out, line)
	}
}

// limit parses the optional count argument of --history and -log.
func (d *Dispatcher) limit(args []string) (int, bool) {
	if len(args) == 0 {
		return d.historyLimit, true
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		fmt.Fprintf(d.out, "Quack? Invalid count: %s\n", args[0])
		return 0, false
	}
	return n, true
}
