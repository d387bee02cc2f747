package ctl

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/homewire/x10/internal/pkg/encoding/json"
	"github.com/homewire/x10/internal/pkg/service/daemon/control"
	"github.com/homewire/x10/internal/pkg/service/daemon/events"
	"github.com/homewire/x10/internal/pkg/service/daemon/journal"
)

// renderer prints the command results, as tables or as raw JSON.
// Colors are dropped automatically when the output is not a terminal.
type renderer struct {
	out     io.Writer
	rawJSON bool
}

var (
	onColor      = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	unknownColor = color.New(color.Faint)
)

func (r *renderer) Status(v *control.StatusResult) error {
	if r.rawJSON {
		return r.encode(v)
	}

	w := r.table()
	fmt.Fprintf(w, "Daemon:\t%s, up %s\n", v.Version, formatUptime(v.UptimeSeconds))
	fmt.Fprintf(w, "Project:\t%s\n", v.Project)
	fmt.Fprintf(w, "Definitions:\t%d units, %d scenes, %d schedules\n", v.Units, v.Scenes, v.Schedules)
	fmt.Fprintf(w, "Presence:\t%s\n", formatPresence(v.Home, v.Person))
	fmt.Fprintf(w, "Lights on:\t%s\n", formatOnUnits(v.OnUnits))
	return w.Flush()
}

func (r *renderer) List(v *control.ListResult) error {
	if r.rawJSON {
		return r.encode(v)
	}

	w := r.table()
	if len(v.Units) > 0 {
		fmt.Fprintln(w, "ADDRESS\tUNIT\tNAME\tSTATE")
		for _, unit := range v.Units {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", unit.Address, unit.Slug, unit.Name, formatState(unit.State))
		}
	}
	if len(v.Scenes) > 0 {
		fmt.Fprintln(w, "\nSCENE\tNAME\tUNITS")
		for _, scene := range v.Scenes {
			fmt.Fprintf(w, "%s\t%s\t%d\n", scene.Slug, scene.Name, scene.Units)
		}
	}
	if len(v.Schedules) > 0 {
		fmt.Fprintln(w, "\nSCHEDULE\tNAME\tCRONTAB")
		for _, schedule := range v.Schedules {
			fmt.Fprintf(w, "%s\t%s\t%s\n", schedule.Slug, schedule.Name, schedule.Crontab)
		}
	}
	return w.Flush()
}

func (r *renderer) Signal(v *control.SignalResult) error {
	if r.rawJSON {
		return r.encode(v)
	}

	if len(v.Units) > 0 {
		fmt.Fprintf(r.out, "Queued %d tasks for %s.\n", len(v.Tasks), strings.Join(v.Units, ", "))
	} else {
		fmt.Fprintf(r.out, "Queued %d tasks.\n", len(v.Tasks))
	}
	return nil
}

func (r *renderer) Presence(v *control.PresenceResult) error {
	if r.rawJSON {
		return r.encode(v)
	}

	fmt.Fprintf(r.out, "Presence: %s\n", formatPresence(v.Home, v.Person))
	return nil
}

func (r *renderer) Stats(v *control.StatsResult) error {
	if r.rawJSON {
		return r.encode(v)
	}

	names := make([]string, 0, len(v.Metrics))
	for name := range v.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := r.table()
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%g\n", name, v.Metrics[name])
	}
	return w.Flush()
}

func (r *renderer) Journal(v *control.JournalResult) error {
	if r.rawJSON {
		return r.encode(v)
	}

	if len(v.Records) == 0 {
		fmt.Fprintln(r.out, "The journal is empty.")
		return nil
	}

	w := r.table()
	fmt.Fprintln(w, "TIME\tTARGET\tACTION\tORIGIN\tRESULT")
	for _, record := range v.Records {
		fmt.Fprintf(
			w, "%s\t%s\t%s\t%s\t%s\n",
			record.Time.Format("2006-01-02 15:04:05"),
			formatTarget(record),
			formatAction(record.Action, record.Multiplier),
			record.Origin,
			formatResult(record),
		)
	}
	return w.Flush()
}

func (r *renderer) Reload(v *control.ReloadResult) error {
	if r.rawJSON {
		return r.encode(v)
	}

	if v.Changed {
		fmt.Fprintf(r.out, "Reloaded: %d units, %d scenes, %d schedules.\n", v.Units, v.Scenes, v.Schedules)
	} else {
		fmt.Fprintln(r.out, "No changes.")
	}
	return nil
}

func (r *renderer) Event(e events.Event) error {
	if r.rawJSON {
		line, err := json.EncodeString(e, false)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, line)
		return nil
	}

	payload := ""
	if e.Payload != nil {
		if v, err := json.EncodeString(e.Payload, false); err == nil {
			payload = v
		}
	}
	fmt.Fprintf(r.out, "%s  %-24s %s\n", e.Time.Format("15:04:05"), e.Namespace+"."+e.Action, payload)
	return nil
}

func (r *renderer) encode(v any) error {
	out, err := json.EncodeString(v, true)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, out)
	return nil
}

func (r *renderer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
}

func formatUptime(seconds int64) string {
	return (time.Duration(seconds) * time.Second).String()
}

func formatPresence(home bool, person string) string {
	if !home {
		return "away"
	}
	if person != "" {
		return onColor.Sprintf("home (%s)", person)
	}
	return onColor.Sprint("home")
}

func formatOnUnits(units []string) string {
	if len(units) == 0 {
		return "none"
	}
	return onColor.Sprint(strings.Join(units, ", "))
}

func formatState(state string) string {
	switch state {
	case "on":
		return onColor.Sprint(state)
	case "off":
		return state
	default:
		return unknownColor.Sprint(state)
	}
}

func formatTarget(record journal.Record) string {
	if record.Unit != "" {
		return record.Unit
	}
	if record.Number > 0 {
		return fmt.Sprintf("%s%d", record.House, record.Number)
	}
	return record.House
}

func formatAction(action string, multiplier int) string {
	if multiplier > 1 {
		return fmt.Sprintf("%s x%d", action, multiplier)
	}
	return action
}

func formatResult(record journal.Record) string {
	if record.OK {
		return onColor.Sprint("ok")
	}
	return errorColor.Sprint(record.Error)
}
