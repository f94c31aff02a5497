package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"
)

// watchFiles re-checks query files as they change until ctx is done.
// Directories in args are watched for new query files as well.
func watchFiles(ctx context.Context, cc *CommandContext, args, files []string, opts *CheckOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace files, so watch parent directories.
	dirs := map[string]bool{}
	for _, dir := range watchedDirs(args, files) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	tracked := map[string]bool{}
	for _, f := range files {
		tracked[filepath.Clean(f)] = true
	}

	cc.Renderer.Println(cc.Renderer.Styles().Muted.Render(
		fmt.Sprintf("watching %d file(s), press Ctrl-C to stop", len(files))))
	cc.Logger.Debug("watching", "dirs", len(dirs), "files", len(files))

	popts := cc.ParserOptions()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(event.Name)
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !tracked[name] {
				if filepath.Ext(name) != queryExt || !dirs[filepath.Dir(name)] {
					continue
				}
				tracked[name] = true
			}

			c, err := checkFile(name, popts)
			if err != nil {
				// The file may be mid-replace; the next event re-checks it.
				cc.Logger.Debug("skipping unreadable file", "file", name, "error", err)
				continue
			}
			if err := reportChecks(cc, []checked{c}, opts); err != nil {
				cc.Renderer.Println(cc.Renderer.Styles().Error.Render(err.Error()))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Warn("watch error", "error", err)
		}
	}
}

// watchedDirs lists the directories watchFiles would watch, sorted.
func watchedDirs(args, files []string) []string {
	seen := map[string]bool{}
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			seen[filepath.Clean(arg)] = true
		}
	}
	for _, f := range files {
		seen[filepath.Dir(filepath.Clean(f))] = true
	}
	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	slices.Sort(dirs)
	return dirs
}
