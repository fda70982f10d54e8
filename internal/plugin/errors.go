package plugin

import "errors"

var (
	// ErrArchiveOpen is returned when a .pfds file cannot be opened or is not a zip.
	ErrArchiveOpen = errors.New("cannot open plugin archive")

	// ErrManifestMissing is returned when the archive has no manifest.json entry.
	ErrManifestMissing = errors.New("manifest.json not found")

	// ErrManifestParse is returned for malformed or incomplete manifests.
	ErrManifestParse = errors.New("invalid manifest")

	// ErrFetch is returned when a remote archive cannot be retrieved.
	ErrFetch = errors.New("fetch failed")

	// ErrFilesystem is returned when writing or chmodding plugin files fails.
	ErrFilesystem = errors.New("filesystem error")

	// ErrProcessSpawn is returned when a plugin executable cannot be started.
	ErrProcessSpawn = errors.New("plugin failed to start")

	// ErrPluginNotFound is returned for operations on an unknown plugin name.
	ErrPluginNotFound = errors.New("plugin not found")
)
