package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/veikk/veikkd-go/memorywriter"
)

// reloadSettle is how long the watcher waits after the last event
// before reloading. An in-place write is a truncate followed by one or
// more writes; reloading on the first event would parse a half-written
// file.
const reloadSettle = 100 * time.Millisecond

// Watch reloads the config file on change and hands the result to
// onChange. The parent directory is watched rather than the file
// itself, so editors that replace the file (rename-over) keep
// working. A burst of events for the file coalesces into one reload
// once the file has settled. Runs until the context is canceled.
func Watch(ctx context.Context, path string, log *memorywriter.MemoryWriter, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	settle := time.NewTimer(reloadSettle)
	if !settle.Stop() {
		<-settle.C
	}
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// push the reload out until the writer goes quiet
			if !settle.Stop() {
				select {
				case <-settle.C:
				default:
				}
			}
			settle.Reset(reloadSettle)
		case <-settle.C:
			cfg, err := Load(path)
			if err != nil {
				log.Log(fmt.Sprintf("config reload: %s", err))
				continue
			}
			log.Log("config reloaded")
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Log(fmt.Sprintf("config watcher: %s", err))
		}
	}
}
