package config

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/wippyai/asset-redirect/errors"
)

// settle is how long Watch waits after the last change before reloading,
// so a half-written file is not read.
const settle = 50 * time.Millisecond

// Watch reloads path into store whenever the file changes, until ctx is
// done. A reload that fails is logged and the previous options stay in
// effect. Watch blocks; it returns ctx.Err() on cancellation or an error
// if the watch cannot be established.
func Watch(ctx context.Context, path string, store *Store) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindNotInitialized, err, "create watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return errors.NotFound(errors.PhaseConfig, "watched file", path, err)
	}

	timer := time.NewTimer(settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			Logger().Debug("options file event",
				zap.String("path", ev.Name),
				zap.Stringer("op", ev.Op))
			timer.Reset(settle)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			Logger().Warn("options watcher error", zap.Error(err))

		case <-timer.C:
			reload(path, store)
			// editors that save by rename drop the watch
			if err := watcher.Add(path); err != nil {
				Logger().Warn("re-watch options file", zap.String("path", path), zap.Error(err))
			}
		}
	}
}

func reload(path string, store *Store) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("panic reloading options", zap.String("path", path), zap.Any("panic", r))
		}
	}()

	opts, err := Load(path)
	if err != nil {
		Logger().Warn("reload options", zap.String("path", path), zap.Error(err))
		return
	}
	store.Set(opts)
	Logger().Debug("options reloaded",
		zap.String("path", path),
		zap.Bool("lightmap", opts.ApplyLightmapFix),
		zap.Bool("sampler", opts.ApplySamplerFix),
		zap.Int("versions", len(opts.AutofixVersions)))
}
