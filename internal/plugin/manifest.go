package plugin

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ManifestFile is the archive entry holding the plugin manifest.
const ManifestFile = "manifest.json"

// Manifest is the JSON descriptor inside a .pfds archive.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	// Script names the archive entry holding the executable payload.
	Script string `json:"script"`
}

// ParseManifest decodes and checks a manifest. Every failure wraps
// ErrManifestParse.
func ParseManifest(data []byte) (Manifest, error) {
	if !utf8.Valid(data) {
		return Manifest{}, fmt.Errorf("%w: not valid UTF-8", ErrManifestParse)
	}

	// Version is informational and may be empty, but the field must exist.
	var raw struct {
		Manifest
		Version *string `json:"version"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Manifest{}, fmt.Errorf("%w: %w", ErrManifestParse, err)
	}
	m := raw.Manifest

	switch {
	case m.Name == "":
		return Manifest{}, fmt.Errorf("%w: missing field \"name\"", ErrManifestParse)
	case raw.Version == nil:
		return Manifest{}, fmt.Errorf("%w: missing field \"version\"", ErrManifestParse)
	case m.Script == "":
		return Manifest{}, fmt.Errorf("%w: missing field \"script\"", ErrManifestParse)
	}

	m.Version = *raw.Version

	if !safeName(m.Name) {
		return Manifest{}, fmt.Errorf("%w: unsafe plugin name %q", ErrManifestParse, m.Name)
	}
	return m, nil
}

// safeName reports whether name can be used as a single file name inside the
// plugin directory.
func safeName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
