package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/soyeahso/duckshell/internal/hooks"
	"github.com/soyeahso/duckshell/internal/logging"
	"github.com/soyeahso/duckshell/internal/process"
)

// Registry maps plugin names to executables. It is created once at startup
// and passed to everything that needs it.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]PluginRecord
	dir     string
	out     io.Writer
	hooks   *hooks.Manager
	log     *logging.Logger
}

// NewRegistry creates a registry whose installed plugins live in dir. The
// directory is created if missing. User-facing notices go to out.
func NewRegistry(dir string, out io.Writer, hm *hooks.Manager, log *logging.Logger) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating plugin directory: %w", ErrFilesystem, err)
	}
	return &Registry{
		plugins: make(map[string]PluginRecord),
		dir:     dir,
		out:     out,
		hooks:   hm,
		log:     log.Sub("plugins"),
	}, nil
}

// Dir returns the plugin directory.
func (r *Registry) Dir() string { return r.dir }

// Register adds or replaces a plugin without an origin. The path is not checked.
func (r *Registry) Register(name, path string) {
	r.mu.Lock()
	r.plugins[name] = PluginRecord{Name: name, Path: path}
	r.mu.Unlock()

	r.log.Debug().Str("name", name).Str("path", path).Msg("plugin registered")
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.plugins[name]
	return ok
}

// Get returns the record for name.
func (r *Registry) Get(name string) (PluginRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.plugins[name]
	return rec, ok
}

// Install adds or replaces a plugin and announces it. The file at path is
// left alone on removal.
func (r *Registry) Install(ctx context.Context, name, path, origin string) PluginRecord {
	return r.install(ctx, PluginRecord{Name: name, Path: path, Origin: origin})
}

func (r *Registry) install(ctx context.Context, rec PluginRecord) PluginRecord {
	r.mu.Lock()
	r.plugins[rec.Name] = rec
	r.mu.Unlock()

	fmt.Fprintf(r.out, "Quack! Installed plugin: %s\n", rec.Name)
	r.log.Info().
		Str("name", rec.Name).
		Str("path", rec.Path).
		Str("origin", rec.Origin).
		Bool("managed", rec.Managed).
		Msg("plugin installed")
	r.hooks.Emit(ctx, hooks.EventPluginInstalled, eventData(rec))
	return rec
}

// Remove forgets a plugin and deletes its file when the installer wrote it.
// Removing an unknown name only prints a notice, so repeated removal is
// safe. It reports whether a record was removed.
func (r *Registry) Remove(ctx context.Context, name string) bool {
	r.mu.Lock()
	rec, ok := r.plugins[name]
	delete(r.plugins, name)
	r.mu.Unlock()

	if !ok {
		fmt.Fprintf(r.out, "Quack? Plugin not found: %s\n", name)
		return false
	}

	r.deleteFile(rec)

	fmt.Fprintf(r.out, "Quack! Removed plugin: %s\n", name)
	r.log.Info().Str("name", name).Msg("plugin removed")
	r.hooks.Emit(ctx, hooks.EventPluginRemoved, eventData(rec))
	return true
}

// deleteFile removes a managed plugin's file. Failures are logged, never
// returned.
func (r *Registry) deleteFile(rec PluginRecord) {
	if !rec.Managed {
		r.log.Debug().Str("name", rec.Name).Str("path", rec.Path).Msg("plugin file not managed, leaving it")
		return
	}
	if err := os.Remove(rec.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.log.Warn().Err(err).Str("name", rec.Name).Str("path", rec.Path).Msg("deleting plugin file")
	}
}

// List prints every plugin, sorted by name.
func (r *Registry) List() {
	records := r.Records()
	if len(records) == 0 {
		fmt.Fprintln(r.out, "Quack! No plugins installed.")
		return
	}

	var b strings.Builder
	b.WriteString("🦆 Installed plugins:\n")
	for _, rec := range records {
		if rec.HasOrigin() {
			fmt.Fprintf(&b, "  %s -> %s (from: %s)\n", rec.Name, rec.Path, rec.Origin)
		} else {
			fmt.Fprintf(&b, "  %s -> %s\n", rec.Name, rec.Path)
		}
	}
	fmt.Fprint(r.out, b.String())
}

// Records returns a snapshot of all plugins sorted by name.
func (r *Registry) Records() []PluginRecord {
	r.mu.RLock()
	out := make([]PluginRecord, 0, len(r.plugins))
	for _, rec := range r.plugins {
		out = append(out, rec)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns all plugin names sorted.
func (r *Registry) Names() []string {
	records := r.Records()
	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Name
	}
	return names
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// Execute runs a plugin with args and prints its stdout, or "Error: <stderr>"
// when it exits non-zero. A non-zero exit is not an error.
func (r *Registry) Execute(ctx context.Context, name string, args []string) error {
	rec, ok := r.Get(name)
	if !ok {
		fmt.Fprintf(r.out, "Quack? Plugin not found: %s\n", name)
		return fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}

	res, err := process.Run(ctx, rec.Path, args)
	if err != nil {
		fmt.Fprintf(r.out, "Quack? Plugin failed: %s\n", name)
		r.log.Warn().Err(err).Str("name", name).Str("path", rec.Path).Msg("plugin failed to start")
		return fmt.Errorf("%w: %s: %w", ErrProcessSpawn, name, err)
	}

	r.log.Debug().Str("name", name).Int("exit_code", res.ExitCode).Msg("plugin finished")
	process.Report(r.out, res)
	return nil
}

func eventData(rec PluginRecord) map[string]any {
	return map[string]any{
		"plugin": rec.Name,
		"path":   rec.Path,
		"origin": rec.Origin,
	}
}
