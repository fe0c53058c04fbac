package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/flist-dev/flist/internal/errors"
	"github.com/flist-dev/flist/internal/lock"
)

// DefaultMaxArchive is the default cap on archived entries.
const DefaultMaxArchive = 100

// Config is the per-project configuration stored in flist.toml.
type Config struct {
	// MaxArchive caps the archive list; archiving beyond it drops the
	// oldest archived entry.
	MaxArchive int `toml:"max_archive"`

	// PreferredSuffixes configures quick launch for directory entries:
	// layers of file suffixes consulted in order, where the first layer
	// matching exactly one file wins.
	PreferredSuffixes [][]string `toml:"preferred_suffixes,omitempty"`
}

// DefaultProjectConfig returns a project config with defaults applied.
func DefaultProjectConfig() Config {
	return Config{MaxArchive: DefaultMaxArchive}
}

// LoadConfig reads flist.toml from the project directory.
func LoadConfig(root string) (Config, error) {
	path := filepath.Join(root, lock.ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.NewProjectError("load", root, errors.ErrProjectNotFound)
		}
		return Config{}, errors.NewProjectError("load", root, err)
	}

	cfg := DefaultProjectConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.NewProjectError("load", root, fmt.Errorf("parse %s: %w", lock.ConfigFileName, err))
	}
	if cfg.MaxArchive <= 0 {
		cfg.MaxArchive = DefaultMaxArchive
	}
	return cfg, nil
}

// WriteConfig serializes the config into the project directory.
func WriteConfig(root string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.NewProjectError("init", root, fmt.Errorf("marshal config: %w", err))
	}
	path := filepath.Join(root, lock.ConfigFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewProjectError("init", root, err)
	}
	return nil
}

// InitOptions control project initialization.
type InitOptions struct {
	// Force overwrites an existing project's config.
	Force bool
	// Clear removes leftover lock and entry files from the directory.
	Clear bool
}

// Init initializes a project directory: creates it if absent, writes
// flist.toml, and optionally clears leftover flist files. Refuses to
// overwrite an existing project unless opts.Force is set.
func Init(root string, cfg Config, opts InitOptions) error {
	configPath := filepath.Join(root, lock.ConfigFileName)

	var leftovers []string
	info, err := os.Stat(root)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(root, 0755); err != nil {
			return errors.NewProjectError("init", root, err)
		}
	case err != nil:
		return errors.NewProjectError("init", root, err)
	case !info.IsDir():
		return errors.NewProjectError("init", root,
			fmt.Errorf("%w: not a directory", errors.ErrInvalidRequest))
	default:
		if !opts.Force {
			if _, err := os.Stat(configPath); err == nil {
				return errors.NewProjectError("init", root, errors.ErrProjectExists)
			}
		}
		for _, name := range []string{lock.RecordFileName, EntriesFileName, ArchiveFileName} {
			candidate := filepath.Join(root, name)
			if _, err := os.Stat(candidate); err == nil {
				leftovers = append(leftovers, candidate)
			}
		}
	}

	if cfg.MaxArchive <= 0 {
		cfg.MaxArchive = DefaultMaxArchive
	}
	if err := WriteConfig(root, cfg); err != nil {
		return err
	}

	if opts.Clear {
		for _, path := range leftovers {
			if err := os.Remove(path); err != nil {
				return errors.NewProjectError("init", root, err)
			}
		}
	}
	return nil
}

// ParseSuffixLayers parses the quick-launch flag format: layers separated
// by commas, suffixes within a layer separated by pipes.
// "pdf|epub,txt" means prefer a single pdf or epub, else a single txt.
func ParseSuffixLayers(s string) [][]string {
	if s == "" {
		return nil
	}
	var layers [][]string
	for _, layer := range strings.Split(s, ",") {
		var suffixes []string
		for _, suffix := range strings.Split(layer, "|") {
			if suffix = strings.TrimSpace(suffix); suffix != "" {
				suffixes = append(suffixes, suffix)
			}
		}
		if len(suffixes) > 0 {
			layers = append(layers, suffixes)
		}
	}
	return layers
}
