package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args against an isolated home.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func isolatedHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("DUCKSHELL_HOME", home)
	t.Setenv("DUCKSHELL_LOG_LEVEL", "")
	t.Setenv("DUCKSHELL_PLUGIN_DIR", "")
	t.Setenv("DUCKSHELL_PROMPT", "")
	return home
}

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(content), 0o600))
}

func TestVersionCmd(t *testing.T) {
	isolatedHome(t)

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "duckshell "), out)
}

func TestOneShot(t *testing.T) {
	isolatedHome(t)

	out, err := execute(t, "", "-c", "quack hi there")
	require.NoError(t, err)
	assert.Equal(t, "Quack! You said: hi there\n", out)
}

func TestOneShot_DefaultRegisteredPlugin(t *testing.T) {
	isolatedHome(t)

	out, err := execute(t, "", "-c", "test hello pond")
	require.NoError(t, err)
	assert.Equal(t, "hello pond\n", out)
}

func TestOneShot_Exit(t *testing.T) {
	isolatedHome(t)

	out, err := execute(t, "", "-c", "exit")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOneShot_WritesLogFile(t *testing.T) {
	home := isolatedHome(t)

	_, err := execute(t, "", "--log-level", "debug", "-c", "quack")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, "logs", "duckshell.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "dispatching")
}

func TestInteractive(t *testing.T) {
	isolatedHome(t)

	out, err := execute(t, "quack\ndupi -ls\nexit\nquack unreachable\n")
	require.NoError(t, err)

	assert.Contains(t, out, "Quack quack! 🦆")
	assert.Contains(t, out, "🦆> ")
	assert.Contains(t, out, "Quack quack!\n")
	assert.Contains(t, out, "  test -> echo\n")
	assert.NotContains(t, out, "unreachable")
	assert.True(t, strings.HasSuffix(out, "Quack! Exiting DuckShell.\n"), out)
}

func TestInteractive_EOF(t *testing.T) {
	isolatedHome(t)

	out, err := execute(t, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "Quack! Exiting DuckShell.\n"), out)
}

func TestHistoryPersistsAcrossRuns(t *testing.T) {
	isolatedHome(t)

	_, err := execute(t, "", "-c", "quack one")
	require.NoError(t, err)
	out, err := execute(t, "", "-c", "dsh --history")
	require.NoError(t, err)

	assert.Contains(t, out, "quack one\n")
	assert.Contains(t, out, "dsh --history\n")
}

func TestHistoryDisabled(t *testing.T) {
	home := isolatedHome(t)
	writeConfig(t, home, "history:\n  store: none\n")

	out, err := execute(t, "", "-c", "dsh --history")
	require.NoError(t, err)
	assert.Equal(t, "Quack? History is disabled.\n", out)
	assert.NoFileExists(t, filepath.Join(home, "data", "history.db"))
}

func TestConfiguredRegistrations(t *testing.T) {
	home := isolatedHome(t)
	writeConfig(t, home, "plugins:\n  register:\n    hello: echo\n")

	out, err := execute(t, "", "-c", "dupi -ls")
	require.NoError(t, err)
	assert.Equal(t, "🦆 Installed plugins:\n  hello -> echo\n", out)
}

func TestPluginHooksFromConfig(t *testing.T) {
	home := isolatedHome(t)
	marker := filepath.Join(home, "installed.txt")
	writeConfig(t, home, "hooks:\n  pluginInstalled:\n    - command: 'echo \"$DUCKSHELL_PLUGIN\" >> "+marker+"'\n")

	out, err := execute(t, "", "-c", "dupi -i cowsay")
	require.NoError(t, err)
	assert.Equal(t, "Quack! Installed plugin: cowsay\n", out)

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "cowsay\n", string(data))

	out, err = execute(t, "", "-c", "dupi -log")
	require.NoError(t, err)
	assert.Contains(t, out, "plugin_installed")
	assert.Contains(t, out, "cowsay")
}

func TestInvalidConfig(t *testing.T) {
	home := isolatedHome(t)
	writeConfig(t, home, "history:\n  store: postgres\n")

	_, err := execute(t, "", "-c", "quack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestUnparseableConfig(t *testing.T) {
	home := isolatedHome(t)
	writeConfig(t, home, "shell: [unclosed\n")

	_, err := execute(t, "", "-c", "quack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestConfigFlag(t *testing.T) {
	isolatedHome(t)
	alt := filepath.Join(t.TempDir(), "alt.yaml")
	require.NoError(t, os.WriteFile(alt, []byte("plugins:\n  register:\n    alt: echo\n"), 0o600))

	out, err := execute(t, "", "--config", alt, "-c", "alt works")
	require.NoError(t, err)
	assert.Equal(t, "works\n", out)
}

func TestRejectsPositionalArgs(t *testing.T) {
	isolatedHome(t)

	_, err := execute(t, "", "quack")
	assert.Error(t, err)
}

// --- config subcommands ---

func TestConfigCmd_SetGetUnset(t *testing.T) {
	home := isolatedHome(t)

	out, err := execute(t, "", "config", "set", "shell.prompt", "duck>")
	require.NoError(t, err)
	assert.Equal(t, "Set shell.prompt = duck>\n", out)

	out, err = execute(t, "", "config", "get", "shell.prompt")
	require.NoError(t, err)
	assert.Equal(t, "duck>\n", out)

	out, err = execute(t, "", "config", "set", "fetch.retryMax", "3")
	require.NoError(t, err)
	assert.Equal(t, "Set fetch.retryMax = 3\n", out)

	out, err = execute(t, "", "config", "get", "fetch")
	require.NoError(t, err)
	assert.Equal(t, "retryMax: 3\n", out)

	out, err = execute(t, "", "config", "unset", "shell.prompt")
	require.NoError(t, err)
	assert.Equal(t, "Unset shell.prompt\n", out)

	_, err = execute(t, "", "config", "get", "shell.prompt")
	assert.Error(t, err)

	assert.FileExists(t, filepath.Join(home, "config.yaml"))
}

func TestConfigCmd_SetWarnsOnInvalidValue(t *testing.T) {
	isolatedHome(t)

	out, err := execute(t, "", "config", "set", "fetch.retryMax", "99")
	require.NoError(t, err)
	assert.Contains(t, out, "Set fetch.retryMax = 99\n")
	assert.Contains(t, out, "Warning: fetch.retryMax")
}

func TestConfigCmd_BlockedKey(t *testing.T) {
	isolatedHome(t)

	_, err := execute(t, "", "config", "set", "shell.__proto__", "x")
	assert.Error(t, err)
}

func TestConfigCmd_Path(t *testing.T) {
	home := isolatedHome(t)

	out, err := execute(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.yaml")+"\n", out)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"FALSE", false},
		{"42", 42},
		{"-7", -7},
		{"1.5", 1.5},
		{"007", 7.0},
		{"echo", "echo"},
		{"🦆> ", "🦆> "},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.in))
		})
	}
}

// --- status ---

func TestStatusCmd(t *testing.T) {
	home := isolatedHome(t)
	plugins := filepath.Join(home, "plugins")
	require.NoError(t, os.MkdirAll(plugins, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(plugins, "greet"), []byte("#!/bin/sh\necho hi\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(plugins, ".download-x.pfds"), []byte("tmp"), 0o600))

	out, err := execute(t, "", "status")
	require.NoError(t, err)

	assert.Contains(t, out, "DuckShell ")
	assert.Contains(t, out, "not found, using defaults")
	assert.Contains(t, out, "Plugins: "+plugins+"\n")
	assert.Contains(t, out, "Fetch:   timeout=none retries=0 limit=64 MiB\n")
	assert.Contains(t, out, "Preset:  test=echo\n")
	assert.Contains(t, out, "Hooks:   none\n")
	assert.Contains(t, out, "greet")
	assert.Contains(t, out, "18 B")
	assert.NotContains(t, out, ".download-")
	assert.NotContains(t, out, "Validation issues")
}

func TestStatusCmd_Hooks(t *testing.T) {
	home := isolatedHome(t)
	writeConfig(t, home, "hooks:\n  shellStart:\n    - command: \"true\"\n  pluginInstalled:\n    - command: \"true\"\n    - command: \"echo $DUCKSHELL_PLUGIN\"\n")

	out, err := execute(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Hooks:   plugin_installed=2, shell_start=1\n")
}

func TestStatusCmd_ReportsValidationIssues(t *testing.T) {
	home := isolatedHome(t)
	writeConfig(t, home, "logging:\n  level: loud\n")

	out, err := execute(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Validation issues (1):")
	assert.Contains(t, out, "logging.level")
	assert.Contains(t, out, "plugin directory not created yet")
}
