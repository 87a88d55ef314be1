package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAliases_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcpcli", "servers.toml")

	a := &Aliases{Servers: map[string]ServerAlias{}}
	a.Set("everything", "npx", []string{"-y", "@modelcontextprotocol/server-everything"})
	a.Set("local", "./bin/server", nil)

	require.NoError(t, a.Save(path))

	loaded, err := LoadAliases(path)
	require.NoError(t, err)

	require.Equal(t, []string{"everything", "local"}, loaded.Names())
	require.Equal(t, "npx", loaded.Servers["everything"].Command)
	require.Equal(t,
		[]string{"-y", "@modelcontextprotocol/server-everything"},
		loaded.Servers["everything"].Args,
	)
}

func TestLoadAliases_MissingFileIsEmpty(t *testing.T) {
	a, err := LoadAliases(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Empty(t, a.Names())
}

func TestLoadAliases_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[[ not toml"), 0o644))

	_, err := LoadAliases(path)
	require.Error(t, err)
}

func TestAliases_Resolve(t *testing.T) {
	a := &Aliases{Servers: map[string]ServerAlias{
		"fs": {Command: "npx", Args: []string{"-y", "server-filesystem"}},
	}}

	command, cmdArgs := a.Resolve("fs", []string{"/tmp"})
	require.Equal(t, "npx", command)
	require.Equal(t, []string{"-y", "server-filesystem", "/tmp"}, cmdArgs)

	// Unknown names pass through as literal commands.
	command, cmdArgs = a.Resolve("./custom-server", []string{"--debug"})
	require.Equal(t, "./custom-server", command)
	require.Equal(t, []string{"--debug"}, cmdArgs)
}

func TestAliases_Remove(t *testing.T) {
	a := &Aliases{Servers: map[string]ServerAlias{"x": {Command: "x-bin"}}}

	require.True(t, a.Remove("x"))
	require.False(t, a.Remove("x"))
	require.Empty(t, a.Names())
}

func TestOptions_Normalized(t *testing.T) {
	var nilOpts *Options

	opts := nilOpts.Normalized()
	require.Equal(t, DefaultInitTimeout, opts.InitTimeout)
	require.Equal(t, DefaultCallTimeout, opts.CallTimeout)
	require.Equal(t, DefaultClientName, opts.ClientName)
	require.Equal(t, DefaultClientVersion, opts.ClientVersion)

	custom := (&Options{ClientName: "custom"}).Normalized()
	require.Equal(t, "custom", custom.ClientName)
	require.Equal(t, DefaultCallTimeout, custom.CallTimeout)
}
