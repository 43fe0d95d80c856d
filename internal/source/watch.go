package source

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// editors often write a file in several steps; wait for them to settle
const reloadDelay = 150 * time.Millisecond

// Update carries freshly loaded text, or the error that prevented loading it.
type Update struct {
	Path string
	Text string
	Err  error
}

// Watch reloads path whenever it changes and hands the result to onChange
// until ctx is cancelled. The parent directory is watched so that
// rename-on-save editors are picked up too.
func Watch(ctx context.Context, path string, onChange func(Update)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	go watchLoop(ctx, watcher, abs, onChange)

	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, onChange func(Update)) {
	defer watcher.Close()

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debug().Str("path", path).Str("op", event.Op.String()).Msg("lyrics file changed")
			pending = time.After(reloadDelay)

		case <-pending:
			pending = nil
			text, err := Load(path)
			onChange(Update{Path: path, Text: text, Err: err})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("path", path).Msg("file watcher error")
		}
	}
}
