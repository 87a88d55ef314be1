package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// ServerAlias is one saved server command line.
type ServerAlias struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Aliases maps short server names to spawn commands, persisted as TOML:
//
//	[servers.everything]
//	command = "npx"
//	args = ["-y", "@modelcontextprotocol/server-everything"]
type Aliases struct {
	Servers map[string]ServerAlias `toml:"servers"`
}

// DefaultAliasPath returns the per-user alias file location.
func DefaultAliasPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}

	return filepath.Join(dir, "mcpcli", "servers.toml"), nil
}

// LoadAliases reads the alias file. A missing file yields an empty store,
// not an error.
func LoadAliases(path string) (*Aliases, error) {
	a := &Aliases{Servers: map[string]ServerAlias{}}

	if _, err := toml.DecodeFile(path, a); err != nil {
		if os.IsNotExist(err) {
			return a, nil
		}

		return nil, fmt.Errorf("load aliases %s: %w", path, err)
	}

	if a.Servers == nil {
		a.Servers = map[string]ServerAlias{}
	}

	return a, nil
}

// Save writes the alias store back to disk, creating parent directories as
// needed.
func (a *Aliases) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write aliases %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(a); err != nil {
		return fmt.Errorf("encode aliases: %w", err)
	}

	return nil
}

// Set adds or replaces an alias.
func (a *Aliases) Set(name, command string, args []string) {
	a.Servers[name] = ServerAlias{Command: command, Args: args}
}

// Remove deletes an alias, reporting whether it existed.
func (a *Aliases) Remove(name string) bool {
	_, ok := a.Servers[name]

	delete(a.Servers, name)

	return ok
}

// Names returns all alias names in sorted order.
func (a *Aliases) Names() []string {
	names := make([]string, 0, len(a.Servers))
	for name := range a.Servers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Resolve maps a server name to a spawn command. When the name matches an
// alias, its command and args are used with any extra args appended; an
// unknown name is treated as a literal command.
func (a *Aliases) Resolve(name string, extra []string) (string, []string) {
	alias, ok := a.Servers[name]
	if !ok {
		return name, extra
	}

	args := append(append([]string(nil), alias.Args...), extra...)

	return alias.Command, args
}
