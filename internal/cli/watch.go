package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/edgebundle/pkg/pipeline"
	"github.com/matzehuels/edgebundle/pkg/source/remote"
)

// watchDebounce collapses the burst of events editors emit on save.
const watchDebounce = 100 * time.Millisecond

// watch bundles every input once, then again each time one of them is
// written, until ctx is cancelled. Failures are reported and watching
// continues.
func (c *CLI) watch(ctx context.Context, runner *pipeline.Runner, inputs []string, o *bundleOpts, opts pipeline.Options) error {
	logger := loggerFromContext(ctx)

	for _, in := range inputs {
		if in == stdio || remote.IsURL(in) {
			return fmt.Errorf("cannot watch %s: only local files can be watched", displayName(in))
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Editors often replace files on save, which drops a watch on the file
	// itself, so the parent directories are watched instead.
	watched := make(map[string]string, len(inputs))
	dirs := make(map[string]bool)
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		watched[abs] = in
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	rebuild := func(in string) {
		if err := c.bundleOne(ctx, runner, in, o, opts, len(inputs) > 1); err != nil {
			printError("%s: %v", in, err)
		}
	}
	for _, in := range inputs {
		rebuild(in)
	}
	printInfo("Watching %d file(s) for changes (Ctrl+C to stop)", len(inputs))

	timer := time.NewTimer(0)
	<-timer.C
	pending := make(map[string]bool)

	// Refreshing would bypass the cache on every change; an edited file
	// already produces a new key.
	opts.Refresh = false

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			in, ok := watched[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			logger.Debug("change detected", "file", in, "op", ev.Op.String())
			pending[in] = true
			timer.Reset(watchDebounce)

		case <-timer.C:
			for in := range pending {
				rebuild(in)
			}
			pending = make(map[string]bool)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
