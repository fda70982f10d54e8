package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "🦆> ", cfg.Shell.Prompt)
	assert.Equal(t, 20, cfg.Shell.HistoryLimit)
	assert.Equal(t, map[string]string{"test": "echo"}, cfg.Plugins.Register)
	assert.Equal(t, 0, cfg.Fetch.TimeoutSeconds)
	assert.Equal(t, 0, cfg.Fetch.RetryMax)
	assert.Equal(t, int64(64<<20), cfg.Fetch.MaxBytes)
	assert.Equal(t, "sqlite", cfg.History.Store)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "🦆> ", cfg.Shell.Prompt)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
shell:
  prompt: "duck> "
plugins:
  dir: /opt/duck/plugins
  register:
    ll: /bin/ls
fetch:
  timeoutSeconds: 30
  retryMax: 2
history:
  store: none
logging:
  level: debug
  consoleStyle: json
hooks:
  pluginInstalled:
    - command: "notify-send installed"
      timeout: 1500
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "duck> ", cfg.Shell.Prompt)
	assert.Equal(t, 20, cfg.Shell.HistoryLimit)
	assert.Equal(t, "/opt/duck/plugins", cfg.Plugins.Dir)
	assert.Equal(t, map[string]string{"ll": "/bin/ls"}, cfg.Plugins.Register)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSeconds)
	assert.Equal(t, 2, cfg.Fetch.RetryMax)
	assert.Equal(t, "duckshell/dev", cfg.Fetch.UserAgent)
	assert.Equal(t, "none", cfg.History.Store)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.ConsoleStyle)
	require.Len(t, cfg.Hooks.PluginInstalled, 1)
	assert.Equal(t, "notify-send installed", cfg.Hooks.PluginInstalled[0].Command)
	assert.Equal(t, 1500, cfg.Hooks.PluginInstalled[0].Timeout)
}

func TestLoadRegisterDefaults(t *testing.T) {
	dir := t.TempDir()

	t.Run("absent keeps built-in registrations", func(t *testing.T) {
		path := filepath.Join(dir, "absent.yaml")
		require.NoError(t, os.WriteFile(path, []byte("shell:\n  historyLimit: 5\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"test": "echo"}, cfg.Plugins.Register)
	})

	t.Run("explicit empty map disables them", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("plugins:\n  register: {}\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Empty(t, cfg.Plugins.Register)
	})
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shell: [invalid"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DUCKSHELL_LOG_LEVEL", "DEBUG")
	t.Setenv("DUCKSHELL_PLUGIN_DIR", "/tmp/duck-plugins")
	t.Setenv("DUCKSHELL_PROMPT", "q> ")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/duck-plugins", cfg.Plugins.Dir)
	assert.Equal(t, "q> ", cfg.Shell.Prompt)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("DUCK_UA", "ducky/1.0")
	t.Setenv("DUCK_HOOK_DIR", "/var/duck")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
fetch:
  userAgent: "${DUCK_UA}"
hooks:
  shellStart:
    - command: "touch ${DUCK_HOOK_DIR}/started ${UNSET_DUCK_VAR}"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ducky/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, "touch /var/duck/started ${UNSET_DUCK_VAR}", cfg.Hooks.ShellStart[0].Command)
}

func TestResolveDirs(t *testing.T) {
	p := PathsFrom("/home/duck/.duckshell")

	cfg := Defaults()
	ResolveDirs(&cfg, p)
	assert.Equal(t, "/home/duck/.duckshell/plugins", cfg.Plugins.Dir)
	assert.Equal(t, "/home/duck/.duckshell/data/history.db", cfg.History.Path)
	assert.Equal(t, "/home/duck/.duckshell/logs/duckshell.log", cfg.Logging.File)

	cfg.Plugins.Dir = "/custom"
	ResolveDirs(&cfg, p)
	assert.Equal(t, "/custom", cfg.Plugins.Dir)
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	raw, err := LoadRaw(path)
	require.NoError(t, err)
	assert.Empty(t, raw)

	SetValueAtPath(raw, []string{"fetch", "retryMax"}, 3)
	require.NoError(t, SaveRaw(path, raw))

	loaded, err := LoadRaw(path)
	require.NoError(t, err)
	val, ok := GetValueAtPath(loaded, []string{"fetch", "retryMax"})
	assert.True(t, ok)
	assert.Equal(t, 3, val)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Fetch.RetryMax)
}
