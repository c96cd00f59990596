package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the user-level configuration read from smith/smithrc.toml in the
// user's config directory and from .smithrc.toml in the current directory,
// when either file exists.
type Config struct {
	// Color controls whether output is colored: "always", "never", or "auto".
	Color string `koanf:"color" default:"auto"`
	// Watch debounce, in milliseconds, for the watch subcommand.
	WatchDebounceMS int `koanf:"watch.debounce_ms" default:"100"`
}

var tomlParser = toml.Parser()

func loadConfig() (*Config, error) {
	k := koanf.New(".")

	for _, path := range configPaths() {
		err := k.Load(file.Provider(path), tomlParser)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{Color: "auto", WatchDebounceMS: 100}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configPaths returns candidate .smithrc.toml locations, closest-wins order:
// the user's XDG config directory, then the current working directory.
func configPaths() []string {
	var paths []string

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		paths = append(paths, filepath.Join(configHome, "smith", "smithrc.toml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "smith", "smithrc.toml"))
	}

	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, ".smithrc.toml"))
	}

	return paths
}
