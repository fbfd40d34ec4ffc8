// Package watch follows the status file written by a running client.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/bnema/ff1c/internal/domain"
	"github.com/bnema/ff1c/internal/logging"
	"github.com/bnema/ff1c/internal/ports"
)

// StatusWatcher reloads the bridge status whenever its file changes.
type StatusWatcher struct {
	path   string
	repo   ports.StatusRepository
	logger *logging.Logger
}

func NewStatusWatcher(path string, repo ports.StatusRepository, logger *logging.Logger) *StatusWatcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &StatusWatcher{path: filepath.Clean(path), repo: repo, logger: logger}
}

// WaitFor blocks until done reports true for the current status or ctx ends.
// onChange, when set, sees every status loaded along the way. The last status
// seen is returned together with ctx's error on timeout.
func (w *StatusWatcher) WaitFor(ctx context.Context, done func(domain.BridgeStatus) bool, onChange func(domain.BridgeStatus)) (domain.BridgeStatus, error) {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return domain.BridgeStatus{}, fmt.Errorf("create status directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return domain.BridgeStatus{}, fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	// The file is replaced by rename, so the directory is watched instead.
	if err := watcher.Add(dir); err != nil {
		return domain.BridgeStatus{}, fmt.Errorf("watch %s: %w", dir, err)
	}

	var last domain.BridgeStatus
	check := func() (bool, error) {
		status, err := w.repo.LoadStatus(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrStatusNotFound) || ctx.Err() != nil {
				return false, nil
			}
			return false, err
		}
		last = status
		if onChange != nil {
			onChange(status)
		}
		return done(status), nil
	}

	ok, err := check()
	if err != nil {
		return last, err
	}
	if ok {
		return last, nil
	}

	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()

		case event, open := <-watcher.Events:
			if !open {
				return last, errors.New("status watcher closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			ok, err := check()
			if err != nil {
				w.logger.Debug("reload status file", "error", err)
				continue
			}
			if ok {
				return last, nil
			}

		case err, open := <-watcher.Errors:
			if !open {
				return last, errors.New("status watcher closed")
			}
			w.logger.Warn("status watcher error", "error", err)
		}
	}
}
