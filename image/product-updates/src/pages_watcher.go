package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
)

// watchPages purges the rendered page cache whenever a file under the pages
// root changes. A missing pages root disables the watcher.
func watchPages(ctx context.Context, pages *ErrorPages) error {

	if _, err := os.Stat(pages.pagesRoot); os.IsNotExist(err) {
		logger.Info().
			Str("path", pages.pagesRoot).
			Msg("Pages root not found, serving built-in error pages")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(pages.pagesRoot); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", pages.pagesRoot, err)
	}

	go func() {
		<-ctx.Done()
		watcher.Close()
	}()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					logger.Info().
						Str("path", event.Name).
						Msg("Error page changed, purging cache")
					pages.Purge()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error().
					Err(err).
					Str("path", pages.pagesRoot).
					Msg("Watcher error")
			}
		}
	}()

	return nil
}
