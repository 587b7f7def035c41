package migrate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/datadrivenconstruction/skillmig/pkg/logger"
	"github.com/datadrivenconstruction/skillmig/pkg/skills"
)

// DefaultDebounce is the quiet period after the last change to a SKILL.md
// before the skill is processed
const DefaultDebounce = 500 * time.Millisecond

// ignoredDirs are never watched
var ignoredDirs = map[string]bool{".git": true, "node_modules": true}

// Watcher migrates skills as their SKILL.md files are created or written
type Watcher struct {
	migrator  *Migrator
	discovery *skills.Discovery
	debounce  time.Duration
	onResult  func(Result)
}

// NewWatcher creates a watcher over the discovery root. onResult receives
// every result except already-migrated skips, which the watcher's own
// header writes trigger.
func NewWatcher(m *Migrator, d *skills.Discovery, debounce time.Duration, onResult func(Result)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if onResult == nil {
		onResult = func(Result) {}
	}
	return &Watcher{migrator: m, discovery: d, debounce: debounce, onResult: onResult}
}

// Watch blocks until ctx is cancelled. Watcher errors are logged.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer fw.Close()

	fire := make(chan string, 16)
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	schedule := func(dir string) {
		if t, ok := pending[dir]; ok {
			t.Stop()
		}
		pending[dir] = time.AfterFunc(w.debounce, func() {
			select {
			case fire <- dir:
			case <-ctx.Done():
			}
		})
	}

	// addTree watches dir and its subdirectories and schedules any SKILL.md
	// already inside, which covers files written before the watch was added.
	addTree := func(dir string, scan bool) error {
		return filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				if p != dir && ignoredDirs[entry.Name()] {
					return filepath.SkipDir
				}
				logger.G(ctx).WithField("directory", p).Debug("adding directory to watcher")
				return fw.Add(p)
			}
			if scan && entry.Name() == skills.FileName {
				schedule(filepath.Dir(p))
			}
			return nil
		})
	}

	if err := addTree(w.discovery.Root(), false); err != nil {
		return errors.Wrap(err, "failed to watch skills root")
	}
	logger.G(ctx).WithField("root", w.discovery.Root()).Info("watching for skill changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if ignoredDirs[info.Name()] {
						continue
					}
					if err := addTree(event.Name, true); err != nil {
						logger.G(ctx).WithError(err).WithField("directory", event.Name).Warn("failed to watch directory")
					}
					continue
				}
			}
			if filepath.Base(event.Name) == skills.FileName {
				schedule(filepath.Dir(event.Name))
			}

		case dir := <-fire:
			delete(pending, dir)
			skill, ok := w.discovery.Lookup(dir)
			if !ok {
				continue
			}
			res := w.migrator.Process(ctx, skill)
			if res.Outcome == SkippedMigrated {
				continue
			}
			w.onResult(res)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Error("error watching skills")
		}
	}
}
