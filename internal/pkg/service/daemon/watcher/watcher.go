// Package watcher keeps the loaded registry in sync with the project files.
// Changed definitions are reloaded after a debounce pause and the registry
// pointer is swapped atomically, a running dispatcher pass never sees a half
// loaded project. A broken edit keeps the last good registry in place.
//
// The manifest location is read once at startup, a location change needs
// a daemon restart.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/mitchellh/hashstructure/v2"
	"go.uber.org/atomic"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/model"
	"github.com/homewire/x10/internal/pkg/project"
	"github.com/homewire/x10/internal/pkg/service/common/servicectx"
	"github.com/homewire/x10/internal/pkg/service/daemon/events"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// DefaultDebounce waits for an editor to finish writing before the reload.
const DefaultDebounce = 500 * time.Millisecond

type Watcher struct {
	logger   log.Logger
	clock    clockwork.Clock
	prj      *project.Project
	hub      *events.Hub
	debounce time.Duration

	pointer  *atomic.Pointer[project.Registry]
	lastHash *atomic.Uint64
}

func New(logger log.Logger, clock clockwork.Clock, prj *project.Project, initial *project.Registry, hub *events.Hub, debounce time.Duration) (*Watcher, error) {
	hash, err := registryHash(initial)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		logger:   logger.AddPrefix("[watcher]"),
		clock:    clock,
		prj:      prj,
		hub:      hub,
		debounce: debounce,
		pointer:  atomic.NewPointer(initial),
		lastHash: atomic.NewUint64(hash),
	}, nil
}

// Registry returns the current registry, the pointer is swapped on a reload.
func (w *Watcher) Registry() *project.Registry {
	return w.pointer.Load()
}

// Reload loads the project definitions again and swaps the registry if
// anything changed. The control "reload" command calls it directly.
func (w *Watcher) Reload(ctx context.Context, reason string) (bool, error) {
	registry, err := w.prj.LoadRegistry(ctx)
	if err != nil {
		return false, errors.PrefixError(err, "reload failed, keeping the last good project")
	}

	hash, err := registryHash(registry)
	if err != nil {
		return false, err
	}
	if hash == w.lastHash.Load() {
		w.logger.Debugf(`Project definitions unchanged (%s).`, reason)
		return false, nil
	}

	w.pointer.Store(registry)
	w.lastHash.Store(hash)

	units, scenes, schedules := len(registry.Units()), len(registry.Scenes()), len(registry.Schedules())
	w.logger.Infof(`Project reloaded (%s): %d units, %d scenes, %d schedules.`, reason, units, scenes, schedules)
	w.hub.Publish(events.NamespaceProject, "reload", "", map[string]any{
		"reason":    reason,
		"units":     units,
		"scenes":    scenes,
		"schedules": schedules,
	})
	return true, nil
}

// Start watches the definition directories, it stops with the process.
func (w *Watcher) Start(proc *servicectx.Process) error {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.PrefixError(err, "cannot start the project watcher")
	}

	fs := w.prj.Fs()
	watched := make([]string, 0)
	for _, dir := range []string{project.UnitsDir, project.ScenesDir, project.SchedulesDir, filesystem.MetadataDir} {
		if !fs.IsDir(dir) {
			continue
		}
		if err := notifier.Add(filepath.Join(fs.BasePath(), dir)); err != nil {
			_ = notifier.Close()
			return errors.Errorf(`cannot watch the "%s" directory: %w`, dir, err)
		}
		watched = append(watched, dir)
	}

	proc.Add(func(ctx context.Context, _ chan<- error) {
		w.run(ctx, notifier)
	})
	w.logger.Infof(`Watching %s.`, strings.Join(watched, ", "))
	return nil
}

func (w *Watcher) run(ctx context.Context, notifier *fsnotify.Watcher) {
	defer func() {
		if err := notifier.Close(); err != nil {
			w.logger.Warnf(`%s`, err)
		}
	}()

	var timer clockwork.Timer
	var timerCh <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-notifier.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debugf(`Change detected: %s`, event)
			if timer == nil {
				timer = w.clock.NewTimer(w.debounce)
				timerCh = timer.Chan()
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-notifier.Errors:
			if !ok {
				return
			}
			w.logger.Warnf(`Watch error: %s`, err)
		case <-timerCh:
			timer = nil
			timerCh = nil
			if _, err := w.Reload(ctx, "file change"); err != nil {
				w.logger.Errorf(`%s`, err)
			}
		}
	}
}

// relevant filters out editor temp files and directory noise.
func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return strings.HasSuffix(event.Name, ".json")
}

// registryHash fingerprints the loaded definitions, a reload that produces
// the same content does not swap the registry.
func registryHash(r *project.Registry) (uint64, error) {
	v := struct {
		Units     []*model.Unit
		Scenes    []*model.Scene
		Schedules []*model.Schedule
	}{r.Units(), r.Scenes(), r.Schedules()}

	hash, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, errors.PrefixError(err, "cannot hash the project definitions")
	}
	return hash, nil
}
