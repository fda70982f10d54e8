// Package plugin manages DuckShell plugins: named executables that are
// registered by hand or installed from .pfds archives, optionally remembering
// the URL they were downloaded from so they can be refreshed later.
package plugin

// PluginRecord describes one known plugin.
type PluginRecord struct {
	Name string
	Path string
	// Origin is the URL the plugin was downloaded from, empty otherwise.
	Origin string
	// Managed marks files the installer wrote into the plugin directory.
	// Only managed files are deleted when the plugin is removed.
	Managed bool
}

// HasOrigin reports whether the plugin can be updated from a remote source.
func (r PluginRecord) HasOrigin() bool { return r.Origin != "" }
