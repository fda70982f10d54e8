package plugin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/soyeahso/duckshell/internal/archive"
	"github.com/soyeahso/duckshell/internal/hooks"
	"github.com/soyeahso/duckshell/internal/logging"
)

// FallbackScript is installed when an archive lacks the entry its manifest
// names as the script.
const FallbackScript = "#!/bin/sh\necho 'Quack! Default script'\n"

const scriptMode fs.FileMode = 0o755

// Fetcher retrieves the raw bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// UpdateResult is the outcome of refreshing one plugin.
type UpdateResult struct {
	Name   string
	Origin string
	// Installed is the name the refreshed archive was installed under.
	Installed string
	Err       error
}

// Installer materializes plugins from .pfds archives into the registry's
// plugin directory.
type Installer struct {
	reg     *Registry
	fetcher Fetcher
	log     *logging.Logger
}

// NewInstaller creates an installer writing into reg.
func NewInstaller(reg *Registry, fetcher Fetcher, log *logging.Logger) *Installer {
	return &Installer{
		reg:     reg,
		fetcher: fetcher,
		log:     log.Sub("installer"),
	}
}

// InstallFromArchive installs the plugin packaged at archivePath. origin is
// recorded for later updates and may be empty.
func (in *Installer) InstallFromArchive(ctx context.Context, archivePath, origin string) (PluginRecord, error) {
	ar, err := archive.Open(archivePath)
	if err != nil {
		return PluginRecord{}, fmt.Errorf("%w: %w", ErrArchiveOpen, err)
	}
	defer ar.Close()

	if !ar.Has(ManifestFile) {
		return PluginRecord{}, fmt.Errorf("%w in %s", ErrManifestMissing, archivePath)
	}
	raw, err := ar.ReadEntry(ManifestFile)
	if err != nil {
		return PluginRecord{}, fmt.Errorf("%w: %w", ErrArchiveOpen, err)
	}

	m, err := ParseManifest(raw)
	if err != nil {
		return PluginRecord{}, err
	}

	script, err := ar.ReadEntry(m.Script)
	switch {
	case errors.Is(err, archive.ErrEntryNotFound):
		in.log.Warn().Str("name", m.Name).Str("script", m.Script).Msg("script entry missing, installing fallback")
		script = []byte(FallbackScript)
	case err != nil:
		return PluginRecord{}, fmt.Errorf("%w: %w", ErrArchiveOpen, err)
	}

	dest := filepath.Join(in.reg.Dir(), m.Name)
	if err := writeExecutable(dest, script); err != nil {
		return PluginRecord{}, err
	}

	in.log.Debug().
		Str("name", m.Name).
		Str("version", m.Version).
		Str("dest", dest).
		Msg("plugin script written")

	return in.reg.install(ctx, PluginRecord{Name: m.Name, Path: dest, Origin: origin, Managed: true}), nil
}

// DownloadAndInstall fetches an archive from url and installs it with url as
// its origin.
func (in *Installer) DownloadAndInstall(ctx context.Context, url string) (PluginRecord, error) {
	data, err := in.fetch(ctx, url)
	if err != nil {
		return PluginRecord{}, err
	}
	return in.installBytes(ctx, data, url)
}

// Update refreshes every plugin that has an origin, in name order. A failing
// plugin does not stop the others; the returned error joins all failures.
// Plugins without an origin are left alone and not reported.
func (in *Installer) Update(ctx context.Context) ([]UpdateResult, error) {
	out := in.reg.out
	fmt.Fprintln(out, "Quack! Updating plugins...")

	var results []UpdateResult
	var errs []error
	for _, rec := range in.reg.Records() {
		if !rec.HasOrigin() {
			continue
		}

		fmt.Fprintf(out, "Updating %s from %s\n", rec.Name, rec.Origin)
		res := UpdateResult{Name: rec.Name, Origin: rec.Origin}

		installed, err := in.refresh(ctx, rec)
		if err != nil {
			res.Err = fmt.Errorf("%s: %w", rec.Name, err)
			errs = append(errs, res.Err)
			in.log.Warn().Err(err).Str("name", rec.Name).Str("origin", rec.Origin).Msg("plugin update failed")
		} else {
			res.Installed = installed.Name
			in.reg.hooks.Emit(ctx, hooks.EventPluginUpdated, eventData(installed))
		}
		results = append(results, res)
	}

	if len(errs) == 0 {
		fmt.Fprintln(out, "Quack! All plugins updated.")
	} else {
		fmt.Fprintf(out, "Quack? %d plugin(s) failed to update.\n", len(errs))
	}
	return results, errors.Join(errs...)
}

// refresh fetches rec's origin and, only once that succeeded, replaces the
// old installation.
func (in *Installer) refresh(ctx context.Context, rec PluginRecord) (PluginRecord, error) {
	data, err := in.fetch(ctx, rec.Origin)
	if err != nil {
		return PluginRecord{}, err
	}

	if !in.reg.Remove(ctx, rec.Name) {
		in.log.Debug().Str("name", rec.Name).Msg("plugin vanished before update")
	}
	return in.installBytes(ctx, data, rec.Origin)
}

func (in *Installer) fetch(ctx context.Context, url string) ([]byte, error) {
	if in.fetcher == nil {
		return nil, fmt.Errorf("%w: no fetcher configured", ErrFetch)
	}
	data, err := in.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return data, nil
}

// installBytes spills an archive to a uniquely named temporary file in the
// plugin directory, installs it and removes the file again.
func (in *Installer) installBytes(ctx context.Context, data []byte, origin string) (PluginRecord, error) {
	tmp := filepath.Join(in.reg.Dir(), ".download-"+uuid.NewString()+".pfds")
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return PluginRecord{}, fmt.Errorf("%w: writing %s: %w", ErrFilesystem, tmp, err)
	}
	defer func() {
		if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
			in.log.Warn().Err(err).Str("path", tmp).Msg("removing temporary archive")
		}
	}()

	return in.InstallFromArchive(ctx, tmp, origin)
}

// writeExecutable writes data to path and makes it executable. The explicit
// chmod covers files that already existed with other permissions.
func writeExecutable(path string, data []byte) error {
	if err := os.WriteFile(path, data, scriptMode); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrFilesystem, path, err)
	}
	if err := os.Chmod(path, scriptMode); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrFilesystem, path, err)
	}
	return nil
}
