package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch sends the config at path to configs every time the file changes,
// until ctx is done. The parent directory is watched so that editors which
// replace the file on save keep being followed. A file that fails to parse is
// logged and skipped.
func Watch(ctx context.Context, path string, configs chan<- *Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("can't create watcher: %w", err)
	}
	// ignore close error
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("can't watch %s: %w", path, err)
	}
	log.Printf("watching %s\n", path)
	for {
		select {
		case <-ctx.Done():
			log.Println("Watch() interrupted.")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// getting rename, chmod, remove event when editing conf on linux
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			c, err := ReadConfig(path)
			if err != nil {
				log.Printf("ignoring config change: %v\n", err)
				continue
			}
			log.Println("new conf")
			select {
			case configs <- c:
			case <-ctx.Done():
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching config: %w", err)
		}
	}
}
