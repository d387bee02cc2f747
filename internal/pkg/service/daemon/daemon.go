// Package daemon wires the home automation service: the schedule
// dispatcher, the transmit queue, the runtime state, the journal, the
// project watcher and the control endpoint. The components stop together
// through the servicectx graceful shutdown.
package daemon

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/homewire/x10/internal/pkg/build"
	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/project"
	"github.com/homewire/x10/internal/pkg/schedule"
	"github.com/homewire/x10/internal/pkg/service/common/servicectx"
	"github.com/homewire/x10/internal/pkg/service/daemon/config"
	"github.com/homewire/x10/internal/pkg/service/daemon/control"
	"github.com/homewire/x10/internal/pkg/service/daemon/dispatcher"
	"github.com/homewire/x10/internal/pkg/service/daemon/events"
	"github.com/homewire/x10/internal/pkg/service/daemon/journal"
	"github.com/homewire/x10/internal/pkg/service/daemon/metrics"
	"github.com/homewire/x10/internal/pkg/service/daemon/state"
	"github.com/homewire/x10/internal/pkg/service/daemon/task"
	"github.com/homewire/x10/internal/pkg/service/daemon/transport"
	"github.com/homewire/x10/internal/pkg/service/daemon/watcher"
	"github.com/homewire/x10/internal/pkg/utils/errors"
	"github.com/homewire/x10/internal/pkg/x10/cm17a"
	"github.com/homewire/x10/internal/pkg/x10/portlock"
)

const sweepInterval = 24 * time.Hour

type Service struct {
	logger  log.Logger
	clock   clockwork.Clock
	config  config.Config
	proc    *servicectx.Process
	version string
	startAt time.Time

	project  *project.Project
	calendar *schedule.Calendar
	watcher  *watcher.Watcher
	state    *state.Store
	journal  *journal.Journal
	hub      *events.Hub
	metrics  *metrics.Metrics
	runner   *task.Runner
	control  *control.Server
}

// StartService builds the component graph and starts the background loops.
// The fs must be rooted in the project directory.
func StartService(ctx context.Context, proc *servicectx.Process, logger log.Logger, clock clockwork.Clock, fs filesystem.Fs, cfg config.Config) (*Service, error) {
	endpoint, err := transport.ParseEndpoint(cfg.Listen)
	if err != nil {
		return nil, err
	}

	prj, err := project.Load(ctx, fs)
	if err != nil {
		return nil, err
	}
	registry, err := prj.LoadRegistry(ctx)
	if err != nil {
		return nil, err
	}
	logger.Infof(
		`Loaded project "%s": %d units, %d scenes, %d schedules.`,
		prj.Manifest().ProjectName(), len(registry.Units()), len(registry.Scenes()), len(registry.Schedules()),
	)

	// The project manifest wins over the config,
	// older manifests carry no location.
	location := prj.Manifest().Location()
	if location.TimeZone == "" {
		location = cfg.Location
	}
	timeLocation, err := location.TimeLocation()
	if err != nil {
		return nil, err
	}
	solar, err := schedule.NewSolarCalendar(location.Latitude, location.Longitude, timeLocation)
	if err != nil {
		return nil, err
	}

	s := &Service{
		logger:   logger,
		clock:    clock,
		config:   cfg,
		proc:     proc,
		version:  build.BuildVersion,
		startAt:  clock.Now(),
		project:  prj,
		calendar: schedule.NewCalendar(solar),
		hub:      events.NewHub(logger, clock),
		metrics:  metrics.New(),
	}

	s.state = state.NewStore(logger, clock, fs, cfg.State.Path)

	dbPath, err := journalPath(fs, cfg.Journal.Path)
	if err != nil {
		return nil, err
	}
	s.journal, err = journal.New(logger, clock, dbPath)
	if err != nil {
		return nil, err
	}
	proc.OnShutdown(func() {
		if err := s.journal.Close(); err != nil {
			logger.Warnf(`Cannot close the journal: %s`, err)
		}
	})
	s.startJournalSweep(ctx)

	s.watcher, err = watcher.New(logger, clock, prj, registry, s.hub, watcher.DefaultDebounce)
	if err != nil {
		return nil, err
	}
	if err := s.watcher.Start(proc); err != nil {
		return nil, err
	}

	var transmitter cm17a.Transmitter
	if cfg.Serial.Dry {
		logger.Info(`Serial dry mode, the transmissions are only logged.`)
		transmitter = cm17a.NewDryRun(logger)
	} else {
		transmitter = cm17a.NewTransmitter(logger, clock, cm17a.OpenSerial(cfg.Serial.Port))
	}
	executor := task.NewExecutor(logger, clock, task.ExecutorConfig{
		Lock:        portlock.New(logger, cfg.Serial.LockFile),
		Transmitter: transmitter,
		Registry:    s.watcher.Registry,
		State:       s.state,
		Journal:     s.journal,
		Hub:         s.hub,
		Metrics:     s.metrics,
	})
	s.runner = task.NewRunner(logger, executor, s.metrics, cfg.Workers.QueueSize)
	s.runner.Start(proc, cfg.Workers.Count)

	dispatcher.New(logger, clock, cfg.Scheduler.Interval, s.watcher.Registry, s.calendar, s.runner, s.metrics).Start(proc)

	s.control = control.NewServer(logger, s, s.metrics, endpoint, s.version)
	if err := s.control.Start(proc); err != nil {
		return nil, err
	}

	logger.Infof(`Daemon started, version %s.`, s.version)
	return s, nil
}

// ControlAddr is the bound control listener address.
func (s *Service) ControlAddr() net.Addr {
	return s.control.Addr()
}

// startJournalSweep removes the expired records on start and then daily.
func (s *Service) startJournalSweep(ctx context.Context) {
	retention := s.config.Journal.Retention
	if retention <= 0 {
		return
	}

	run := func(ctx context.Context) {
		if _, err := s.journal.Sweep(ctx, retention); err != nil {
			s.logger.Errorf(`Journal sweep failed: %s`, err)
			return
		}
		if maxSize := s.config.Journal.MaxSize; maxSize > 0 {
			if size, err := s.journal.Size(); err == nil && size > maxSize {
				s.logger.Warnf(`Journal size %s exceeds the %s limit.`, size.HumanReadable(), maxSize.HumanReadable())
			}
		}
	}

	run(ctx)
	s.proc.Add(func(ctx context.Context, _ chan<- error) {
		ticker := s.clock.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				run(ctx)
			}
		}
	})
}

// journalPath resolves the configured path against the project directory,
// SQLite needs a real OS path.
func journalPath(fs filesystem.Fs, path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(fs.BasePath(), path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.PrefixError(err, "cannot create the journal directory")
	}
	return path, nil
}
