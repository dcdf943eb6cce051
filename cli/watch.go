package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"go.viam.com/spinningbody/logging"
)

// editors usually save in several filesystem operations
const watchDebounce = 200 * time.Millisecond

// watchConfig calls rerun after every burst of changes to the file at path until ctx is done.
// The parent directory is watched so files replaced by a rename are still seen.
func watchConfig(ctx context.Context, path string, logger logging.Logger, rerun func()) error {
	if ctx == nil {
		ctx = context.Background()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "cannot watch config")
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Debugw("error closing config watcher", "error", err)
		}
	}()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "cannot watch %q", filepath.Dir(abs))
	}
	logger.Infow("watching config for changes", "path", abs)

	changed := make(chan struct{}, 1)
	debounced := debounce.New(watchDebounce)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			debounced(func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})
		case <-changed:
			logger.Infow("config changed, running again", "path", abs)
			rerun()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("config watcher error", "error", err)
		}
	}
}
