// Package portlock serializes access to the transmitter across processes.
// The daemon and the one-shot CLI may both own a CM17A on the same port.
package portlock

import (
	"context"
	"time"

	"github.com/gofrs/flock"

	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const (
	// RetryDelay between lock attempts.
	RetryDelay = 500 * time.Millisecond
	// Timeout gives up after 10 attempts.
	Timeout = 5 * time.Second
)

type Lock struct {
	logger log.Logger
	fsLock *flock.Flock
}

func New(logger log.Logger, path string) *Lock {
	return &Lock{logger: logger, fsLock: flock.New(path)}
}

func (l *Lock) Path() string {
	return l.fsLock.Path()
}

// Acquire blocks until the lock is held, retrying every RetryDelay,
// and gives up when the Timeout passes.
func (l *Lock) Acquire(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	start := time.Now()
	locked, err := l.fsLock.TryLockContext(ctx, RetryDelay)
	if err != nil {
		return errors.Errorf(`cannot acquire port lock "%s": %w`, l.Path(), err)
	} else if !locked {
		return errors.Errorf(`cannot acquire port lock "%s": already locked`, l.Path())
	}

	if waited := time.Since(start); waited >= RetryDelay {
		l.logger.Debugf(`Acquired port lock "%s" after %s`, l.Path(), waited)
	}
	return nil
}

func (l *Lock) Release() error {
	if err := l.fsLock.Unlock(); err != nil {
		return errors.Errorf(`cannot release port lock "%s": %w`, l.Path(), err)
	}
	return nil
}
