package cmd

import (
	"github.com/flist-dev/flist/internal/config"
	"github.com/flist-dev/flist/internal/logging"
)

// newLogger builds the command logger: a JSON log in the project directory
// (or the configured directory), or a no-op logger when logging is off.
func newLogger(root string, cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	dir := cfg.Logging.Dir
	if dir == "" {
		dir = root
	}
	return logging.NewLogger(dir, logging.ParseLevel(cfg.Logging.Level))
}
