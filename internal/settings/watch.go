package settings

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/scienceol/playawake/internal/config"
	"github.com/scienceol/playawake/internal/logging"
)

// Watch calls onChange whenever the settings file is rewritten with a valid
// record that differs from the last one seen. It blocks until ctx is done.
// Edits made by another playawake process (the interval command) reach the
// running instance this way.
func Watch(ctx context.Context, store *Store, initial Settings, onChange func(Settings)) error {
	log := logging.FromContext(ctx)

	dir := filepath.Dir(store.Path())
	if err := config.EnsureDir(dir); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory, not the file: Save replaces the file by rename.
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(store.Path())
	last := initial
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("settings watcher error")
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cur, err := store.read()
			if err != nil {
				// partial write or a hand edit in progress; the next event will tell
				log.Debug().Err(err).Msg("settings changed but not readable yet")
				continue
			}
			if cur == last {
				continue
			}
			last = cur
			log.Info().Int("check_interval_ms", cur.CheckInterval).Msg("settings changed on disk")
			onChange(cur)
		}
	}
}
