package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/soyeahso/duckshell/internal/config"
)

const defaultCommandTimeout = 5 * time.Second

// CommandHandler returns a Handler that runs entry.Command through /bin/sh.
// The event name is exported as DUCKSHELL_EVENT and every payload field as
// DUCKSHELL_<FIELD> (upper-cased).
func CommandHandler(entry config.HookEntry) Handler {
	timeout := defaultCommandTimeout
	if entry.Timeout > 0 {
		timeout = time.Duration(entry.Timeout) * time.Millisecond
	}

	return func(ctx context.Context, p Payload) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, "/bin/sh", "-c", entry.Command)
		cmd.Env = append(os.Environ(), payloadEnv(p)...)
		cmd.WaitDelay = time.Second

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("hook %q timed out after %s", entry.Command, timeout)
			}
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("hook %q: %w: %s", entry.Command, err, msg)
			}
			return fmt.Errorf("hook %q: %w", entry.Command, err)
		}
		return nil
	}
}

// RegisterCommands wires the configured shell-command hooks onto m.
func RegisterCommands(m *Manager, cfg config.HooksConfig) {
	byEvent := map[string][]config.HookEntry{
		EventPluginInstalled: cfg.PluginInstalled,
		EventPluginRemoved:   cfg.PluginRemoved,
		EventPluginUpdated:   cfg.PluginUpdated,
		EventShellStart:      cfg.ShellStart,
		EventShellStop:       cfg.ShellStop,
	}
	for _, event := range AllEvents {
		for i, entry := range byEvent[event] {
			m.On(event, fmt.Sprintf("config:%s[%d]", event, i), CommandHandler(entry))
		}
	}
}

func payloadEnv(p Payload) []string {
	env := []string{"DUCKSHELL_EVENT=" + p.Event}

	keys := make([]string, 0, len(p.Data))
	for k := range p.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		env = append(env, fmt.Sprintf("DUCKSHELL_%s=%v", strings.ToUpper(k), p.Data[k]))
	}
	return env
}
