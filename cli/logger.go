// Package cli holds the cobra commands of calc-server and calc-client.
package cli

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// setupLogger installs the global zap logger at level. Both configs write to
// stderr so stdout only carries command output.
func setupLogger(level string, development bool) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "log level %q", level), ErrInvalidArgument)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl

	log, err := cfg.Build()
	if err != nil {
		return errors.Wrap(err, "build logger")
	}
	zap.ReplaceGlobals(log)
	return nil
}
