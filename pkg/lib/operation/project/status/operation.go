// Package status prints the project summary and probes the daemon
// over the control endpoint.
package status

import (
	"context"
	"strings"
	"time"

	"github.com/homewire/x10/internal/pkg/build"
	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/model"
	"github.com/homewire/x10/internal/pkg/project"
	"github.com/homewire/x10/internal/pkg/service/daemon/control"
	"github.com/homewire/x10/internal/pkg/service/daemon/transport"
)

// probeTimeout bounds the daemon probe, a stopped daemon is not an error.
const probeTimeout = 2 * time.Second

type Options struct {
	Endpoint string // daemon control endpoint
}

type dependencies interface {
	Logger() log.Logger
}

func Run(ctx context.Context, fs filesystem.Fs, o Options, d dependencies) error {
	logger := d.Logger()

	prj, err := project.Load(ctx, fs)
	if err != nil {
		return err
	}
	registry, err := prj.LoadRegistry(ctx)
	if err != nil {
		return err
	}

	m := prj.Manifest()
	location := m.Location()
	logger.Infof(`Project "%s"`, m.ProjectName())
	logger.Infof("Directory: %s", fs.BasePath())
	logger.Infof("Location:  %.6f, %.6f (%s)", location.Latitude, location.Longitude, location.TimeZone)
	logger.Infof("Units: %d, scenes: %d, schedules: %d", len(registry.Units()), len(registry.Scenes()), len(registry.Schedules()))

	if units := registry.Units(); len(units) > 0 {
		logger.Info("")
		for _, unit := range units {
			logger.Infof("  %-4s %-24s %s", unit.Address(), unit.Slug, unitFlags(unit))
		}
	}

	logger.Info("")
	probe(ctx, logger, o.Endpoint)
	return nil
}

// probe reports the daemon status, an unreachable daemon is only reported.
func probe(ctx context.Context, logger log.Logger, endpoint string) {
	parsed, err := transport.ParseEndpoint(endpoint)
	if err != nil {
		logger.Warnf(`%s`, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	client, err := control.Dial(ctx, logger, parsed, "x10/"+build.BuildVersion)
	if err != nil {
		logger.Infof("Daemon: not running (%s)", parsed)
		return
	}
	defer func() {
		_ = client.Close()
	}()

	status, err := client.Status(ctx)
	if err != nil {
		logger.Warnf(`Daemon: cannot read the status: %s`, err)
		return
	}

	logger.Infof("Daemon: running on %s, version %s, up %s", parsed, status.Version, time.Duration(status.UptimeSeconds)*time.Second)
	if status.Home {
		person := status.Person
		if person == "" {
			person = "somebody"
		}
		logger.Infof("Home: yes (%s)", person)
	} else {
		logger.Info("Home: no")
	}
	if len(status.OnUnits) > 0 {
		logger.Infof("On units: %s", strings.Join(status.OnUnits, ", "))
	} else {
		logger.Info("On units: none")
	}
}

func unitFlags(unit *model.Unit) string {
	flags := make([]string, 0, 2)
	if unit.Dimmable {
		flags = append(flags, "dimmable")
	}
	if unit.AutoManaged {
		flags = append(flags, "auto-managed")
	}
	if len(flags) == 0 {
		return unit.Name
	}
	return unit.Name + " (" + strings.Join(flags, ", ") + ")"
}
