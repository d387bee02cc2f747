package project

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/umisama/go-regexpcache"

	"github.com/homewire/x10/internal/pkg/encoding/json"
	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/model"
	"github.com/homewire/x10/internal/pkg/project/schema"
	"github.com/homewire/x10/internal/pkg/schedule"
	"github.com/homewire/x10/internal/pkg/utils/errors"
	"github.com/homewire/x10/internal/pkg/validator"
)

const (
	UnitsDir     = "units"
	ScenesDir    = "scenes"
	SchedulesDir = "schedules"
	StaticDir    = "static"
)

// Registry is the loaded content of the project directory.
// It is immutable, the daemon swaps the whole registry on a reload.
type Registry struct {
	units           []*model.Unit
	unitsBySlug     map[string]*model.Unit
	unitsByAddress  map[model.Address]*model.Unit
	scenes          []*model.Scene
	scenesBySlug    map[string]*model.Scene
	schedules       []*model.Schedule
	schedulesBySlug map[string]*model.Schedule
	crons           map[string]*schedule.Cron
}

func newRegistry() *Registry {
	return &Registry{
		units:           make([]*model.Unit, 0),
		unitsBySlug:     make(map[string]*model.Unit),
		unitsByAddress:  make(map[model.Address]*model.Unit),
		scenes:          make([]*model.Scene, 0),
		scenesBySlug:    make(map[string]*model.Scene),
		schedules:       make([]*model.Schedule, 0),
		schedulesBySlug: make(map[string]*model.Schedule),
		crons:           make(map[string]*schedule.Cron),
	}
}

// LoadRegistry reads the definition files from the project directory.
// Each file is checked against its JSON schema, decoded, validated
// and finally the references between the definitions are checked.
// All found problems are reported together.
func LoadRegistry(ctx context.Context, fs filesystem.Fs) (*Registry, error) {
	val := validator.New()
	r := newRegistry()
	errs := errors.NewMultiError()

	r.loadSchedules(ctx, fs, val, errs)
	r.loadUnits(ctx, fs, val, errs)
	r.loadScenes(ctx, fs, val, errs)
	r.checkReferences(errs)

	if err := errs.ErrorOrNil(); err != nil {
		return nil, errors.PrefixError(err, "project is not valid")
	}
	return r, nil
}

// Units returns all units, sorted by the order field.
func (r *Registry) Units() []*model.Unit {
	return r.units
}

func (r *Registry) Unit(slug string) (*model.Unit, bool) {
	v, found := r.unitsBySlug[slug]
	return v, found
}

func (r *Registry) UnitByAddress(address model.Address) (*model.Unit, bool) {
	v, found := r.unitsByAddress[address]
	return v, found
}

// MatchUnits returns the units whose slug matches the pattern, "*" and "?" are wildcards.
func (r *Registry) MatchUnits(pattern string) []*model.Unit {
	out := make([]*model.Unit, 0)
	for _, unit := range r.units {
		if matchSlug(pattern, unit.Slug) {
			out = append(out, unit)
		}
	}
	return out
}

func (r *Registry) Scenes() []*model.Scene {
	return r.scenes
}

func (r *Registry) Scene(slug string) (*model.Scene, bool) {
	v, found := r.scenesBySlug[slug]
	return v, found
}

func (r *Registry) Schedules() []*model.Schedule {
	return r.schedules
}

func (r *Registry) Schedule(slug string) (*model.Schedule, bool) {
	v, found := r.schedulesBySlug[slug]
	return v, found
}

// SceneUnits resolves the scene entries to units, in the first occurrence order.
func (r *Registry) SceneUnits(scene *model.Scene) ([]*model.Unit, error) {
	seen := make(map[string]bool)
	out := make([]*model.Unit, 0)
	add := func(unit *model.Unit) {
		if !seen[unit.Slug] {
			seen[unit.Slug] = true
			out = append(out, unit)
		}
	}

	for _, entry := range scene.Units {
		if isGlob(entry) {
			for _, unit := range r.MatchUnits(entry) {
				add(unit)
			}
			continue
		}

		unit, found := r.unitsBySlug[entry]
		if !found {
			return nil, errors.Errorf(`scene "%s": unknown unit "%s"`, scene.Slug, entry)
		}
		add(unit)
	}
	return out, nil
}

// UnitBindings resolves the unit's schedule references to compiled bindings.
func (r *Registry) UnitBindings(unit *model.Unit) []schedule.Binding {
	out := make([]schedule.Binding, 0)
	for _, slug := range unit.OnSchedules {
		if c, found := r.crons[slug]; found {
			out = append(out, schedule.NewCronBinding(model.ActionOn, c, slug))
		}
	}
	for _, slug := range unit.OffSchedules {
		if c, found := r.crons[slug]; found {
			out = append(out, schedule.NewCronBinding(model.ActionOff, c, slug))
		}
	}
	for _, rule := range unit.OnSolarSchedules {
		out = append(out, schedule.NewSolarBinding(model.ActionOn, schedule.SolarEvent(rule.Event), rule.OnlyIfHome))
	}
	for _, rule := range unit.OffSolarSchedules {
		out = append(out, schedule.NewSolarBinding(model.ActionOff, schedule.SolarEvent(rule.Event), rule.OnlyIfHome))
	}
	return out
}

func (r *Registry) loadUnits(ctx context.Context, fs filesystem.Fs, val validator.Validator, errs errors.MultiError) {
	for _, path := range listDefinitions(fs, UnitsDir, errs) {
		unit := &model.Unit{Slug: slugFromPath(path)}
		if err := loadDefinition(ctx, fs, val, path, "unit", schema.ValidateUnit, unit); err != nil {
			errs.Append(err)
			continue
		}

		if other, found := r.unitsByAddress[unit.Address()]; found {
			errs.Append(errors.Errorf(`units "%s" and "%s" have the same address "%s"`, other.Slug, unit.Slug, unit.Address()))
			continue
		}

		r.units = append(r.units, unit)
		r.unitsBySlug[unit.Slug] = unit
		r.unitsByAddress[unit.Address()] = unit
	}
	model.SortUnits(r.units)
}

func (r *Registry) loadScenes(ctx context.Context, fs filesystem.Fs, val validator.Validator, errs errors.MultiError) {
	for _, path := range listDefinitions(fs, ScenesDir, errs) {
		scene := &model.Scene{Slug: slugFromPath(path)}
		if err := loadDefinition(ctx, fs, val, path, "scene", schema.ValidateScene, scene); err != nil {
			errs.Append(err)
			continue
		}

		r.scenes = append(r.scenes, scene)
		r.scenesBySlug[scene.Slug] = scene
	}
	sort.SliceStable(r.scenes, func(i, j int) bool {
		return r.scenes[i].Name < r.scenes[j].Name
	})
}

func (r *Registry) loadSchedules(ctx context.Context, fs filesystem.Fs, val validator.Validator, errs errors.MultiError) {
	for _, path := range listDefinitions(fs, SchedulesDir, errs) {
		item := &model.Schedule{Slug: slugFromPath(path)}
		if err := loadDefinition(ctx, fs, val, path, "schedule", schema.ValidateSchedule, item); err != nil {
			errs.Append(err)
			continue
		}

		c, err := schedule.ParseCron(item.Crontab)
		if err != nil {
			errs.AppendWithPrefixf(err, `schedule "%s" is not valid`, item.Slug)
			continue
		}

		r.schedules = append(r.schedules, item)
		r.schedulesBySlug[item.Slug] = item
		r.crons[item.Slug] = c
	}
	sort.SliceStable(r.schedules, func(i, j int) bool {
		return r.schedules[i].Name < r.schedules[j].Name
	})
}

// checkReferences verifies that schedule slugs in units and unit slugs in scenes exist.
func (r *Registry) checkReferences(errs errors.MultiError) {
	for _, unit := range r.units {
		for _, slug := range append(append([]string{}, unit.OnSchedules...), unit.OffSchedules...) {
			if _, found := r.schedulesBySlug[slug]; !found {
				errs.Append(errors.Errorf(`unit "%s": unknown schedule "%s"`, unit.Slug, slug))
			}
		}
	}
	for _, scene := range r.scenes {
		for _, entry := range scene.Units {
			if isGlob(entry) {
				continue
			}
			if _, found := r.unitsBySlug[entry]; !found {
				errs.Append(errors.Errorf(`scene "%s": unknown unit "%s"`, scene.Slug, entry))
			}
		}
	}
}

func listDefinitions(fs filesystem.Fs, dir string, errs errors.MultiError) []string {
	if !fs.IsDir(dir) {
		return nil
	}

	matches, err := fs.Glob(filesystem.Join(dir, "*.json"))
	if err != nil {
		errs.AppendWithPrefixf(err, `cannot list the "%s" directory`, dir)
		return nil
	}

	sort.Strings(matches)
	return matches
}

func loadDefinition(ctx context.Context, fs filesystem.Fs, val validator.Validator, path, desc string, validateSchema func(*orderedmap.OrderedMap) error, target any) error {
	raw, err := fs.ReadFile(filesystem.NewFileDef(path).SetDescription(desc))
	if err != nil {
		return err
	}

	jsonFile, err := raw.ToJsonFile()
	if err != nil {
		return err
	}

	if err := validateSchema(jsonFile.Content); err != nil {
		return errors.PrefixErrorf(err, `%s "%s" is not valid`, desc, path)
	}

	if err := json.DecodeString(raw.Content, target); err != nil {
		return errors.PrefixErrorf(err, `%s file "%s" is invalid`, desc, path)
	}

	if err := val.Validate(ctx, target); err != nil {
		return errors.PrefixErrorf(err, `%s "%s" is not valid`, desc, path)
	}
	return nil
}

func slugFromPath(path string) string {
	return strings.TrimSuffix(filesystem.Base(path), ".json")
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?")
}

func matchSlug(pattern, slug string) bool {
	if !isGlob(pattern) {
		return pattern == slug
	}
	return regexpcache.MustCompile(globToRegexp(pattern)).MatchString(slug)
}

func globToRegexp(pattern string) string {
	var out strings.Builder
	out.WriteString("^")
	for _, c := range pattern {
		switch c {
		case '*':
			out.WriteString(".*")
		case '?':
			out.WriteString(".")
		default:
			out.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	out.WriteString("$")
	return out.String()
}
