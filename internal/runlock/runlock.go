// Package runlock guards against overlapping pipeline runs. Cron has no
// notion of "the previous invocation is still synthesizing", so every run
// takes a file lock before touching the ledger or the feed.
package runlock

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/zrn-ns/curacast/internal/logging"
)

// ErrAlreadyRunning indicates another process holds the run lock.
var ErrAlreadyRunning = errors.New("another run is already in progress")

// Lock is a held run lock. Release it when the run finishes.
type Lock struct {
	fl     *flock.Flock
	logger *slog.Logger
}

// Acquire takes the lock at path without blocking. A held lock returns
// ErrAlreadyRunning so callers can exit quietly instead of queueing up.
func Acquire(path string, logger *slog.Logger) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prepare lock directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}

	log := logging.NewComponentLogger(logger, "runlock")
	log.Debug("run lock acquired", logging.String("path", path))
	return &Lock{fl: fl, logger: log}, nil
}

// Release drops the lock. Safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	l.logger.Debug("run lock released", logging.String("path", l.fl.Path()))
	return nil
}
