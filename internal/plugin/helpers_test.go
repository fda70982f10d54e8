package plugin

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soyeahso/duckshell/internal/hooks"
	"github.com/soyeahso/duckshell/internal/logging"
)

const greetScript = "#!/bin/sh\necho \"hello from greet $*\"\n"

type fixture struct {
	reg    *Registry
	inst   *Installer
	out    *bytes.Buffer
	logBuf *bytes.Buffer
	hooks  *hooks.Manager
	events *[]hooks.Payload
	fetch  *fakeFetcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logBuf := &bytes.Buffer{}
	log := logging.New(logBuf, "debug")
	hm := hooks.NewManager(log)

	var events []hooks.Payload
	for _, ev := range hooks.AllEvents {
		hm.On(ev, "test", func(_ context.Context, p hooks.Payload) error {
			events = append(events, p)
			return nil
		})
	}

	out := &bytes.Buffer{}
	reg, err := NewRegistry(filepath.Join(t.TempDir(), "plugins"), out, hm, log)
	require.NoError(t, err)

	ff := &fakeFetcher{bodies: map[string][]byte{}, errs: map[string]error{}}
	return &fixture{
		reg:    reg,
		inst:   NewInstaller(reg, ff, log),
		out:    out,
		logBuf: logBuf,
		hooks:  hm,
		events: &events,
		fetch:  ff,
	}
}

func (f *fixture) eventNames() []string {
	names := make([]string, 0, len(*f.events))
	for _, p := range *f.events {
		names = append(names, p.Event)
	}
	return names
}

// zipBytes builds an in-memory zip holding entries in the given order.
func zipBytes(t *testing.T, entries ...[2]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(e[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func manifestEntry(name, script string) [2]string {
	return [2]string{ManifestFile, fmt.Sprintf(`{"name":%q,"version":"1.0.0","description":"test plugin","script":%q}`, name, script)}
}

// greetArchive is a well-formed archive installing "greet" from run.sh.
func greetArchive(t *testing.T) []byte {
	return zipBytes(t, manifestEntry("greet", "run.sh"), [2]string{"run.sh", greetScript})
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string][]byte
	errs   map[string]error
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, fmt.Errorf("GET %s: 404 Not Found", url)
	}
	return body, nil
}
