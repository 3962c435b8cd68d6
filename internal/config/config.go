package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/guseggert/ipcexec/internal/files"
)

// FileName is the config file looked for in the working directory and its parents.
const FileName = ".ipcexec.toml"

const DefaultFIFOPerm os.FileMode = 0o644

type Config struct {
	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// SearchPath overrides the inherited PATH for command resolution.
	SearchPath string `toml:"search_path"`
	// FIFOPerm is the mode a server creates its FIFO with, before umask.
	FIFOPerm os.FileMode `toml:"fifo_perm"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		FIFOPerm: DefaultFIFOPerm,
	}
}

// Load reads path over the defaults. Unknown keys are an error so that typos do not go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decoding config %q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("config %q has unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.FIFOPerm&^os.ModePerm != 0 {
		return Config{}, fmt.Errorf("config %q: fifo_perm %#o has bits outside 0777", path, uint32(cfg.FIFOPerm))
	}
	return cfg, nil
}

// Discover loads the config at explicit if set, otherwise the nearest FileName at or above dir.
// With neither, it returns the defaults.
func Discover(explicit, dir string) (Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	found, err := files.FindUp(FileName, dir)
	if err != nil {
		return Config{}, "", fmt.Errorf("looking for %s: %w", FileName, err)
	}
	if found == "" {
		return Default(), "", nil
	}
	cfg, err := Load(found)
	return cfg, found, err
}

// ResolveSearchPath picks the search path by precedence: flag, config file, inherited environment.
func (c Config) ResolveSearchPath(flagValue string, env func(string) string) string {
	if flagValue != "" {
		return flagValue
	}
	if c.SearchPath != "" {
		return c.SearchPath
	}
	return env("PATH")
}
