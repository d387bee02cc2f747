package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/model"
	"github.com/homewire/x10/internal/pkg/schedule"
	"github.com/homewire/x10/internal/pkg/utils/testhelper"
)

func TestLoadRegistry(t *testing.T) {
	t.Parallel()
	fs := testhelper.NewMemoryFs()
	writeFile(t, fs, "schedules/evening-on.json", `{"name": "Evening on", "crontab": "0 19 * * *"}`)
	writeFile(t, fs, "schedules/night-off.json", `{"name": "Night off", "crontab": "30 23 * * *"}`)
	writeFile(t, fs, "units/bedroom-lamp.json", `{
  "name": "Bedroom Lamp",
  "house": "A",
  "number": 3,
  "dimmable": true,
  "order": 2,
  "autoManaged": true,
  "onSchedules": ["evening-on"],
  "offSchedules": ["night-off"],
  "onSolarSchedules": [{"event": "sunset", "onlyIfHome": true}]
}`)
	writeFile(t, fs, "units/porch-light.json", `{"name": "Porch Light", "house": "A", "number": 4, "order": 1, "autoManaged": true}`)
	writeFile(t, fs, "scenes/evening.json", `{"name": "Evening", "units": ["porch-light", "bedroom-*"]}`)

	registry, err := LoadRegistry(context.Background(), fs)
	require.NoError(t, err)

	// Units are sorted by order
	units := registry.Units()
	require.Len(t, units, 2)
	assert.Equal(t, "porch-light", units[0].Slug)
	assert.Equal(t, "bedroom-lamp", units[1].Slug)

	// Lookups
	unit, found := registry.Unit("bedroom-lamp")
	require.True(t, found)
	assert.Equal(t, "Bedroom Lamp", unit.Name)
	byAddress, found := registry.UnitByAddress(model.Address{House: "A", Number: 3})
	require.True(t, found)
	assert.Same(t, unit, byAddress)
	_, found = registry.Unit("ghost")
	assert.False(t, found)

	// Glob matching
	matched := registry.MatchUnits("*-lamp")
	require.Len(t, matched, 1)
	assert.Equal(t, "bedroom-lamp", matched[0].Slug)
	assert.Len(t, registry.MatchUnits("porch-light"), 1)
	assert.Len(t, registry.MatchUnits("*"), 2)
	assert.Empty(t, registry.MatchUnits("kitchen-*"))

	// Scene resolution keeps the entry order
	scene, found := registry.Scene("evening")
	require.True(t, found)
	sceneUnits, err := registry.SceneUnits(scene)
	require.NoError(t, err)
	require.Len(t, sceneUnits, 2)
	assert.Equal(t, "porch-light", sceneUnits[0].Slug)
	assert.Equal(t, "bedroom-lamp", sceneUnits[1].Slug)

	// Schedules are sorted by name
	schedules := registry.Schedules()
	require.Len(t, schedules, 2)
	assert.Equal(t, "evening-on", schedules[0].Slug)
	assert.Equal(t, "night-off", schedules[1].Slug)

	// Bindings
	bindings := registry.UnitBindings(unit)
	require.Len(t, bindings, 3)
	assert.Equal(t, model.ActionOn, bindings[0].Action)
	assert.Equal(t, "evening-on", bindings[0].Source)
	assert.NotNil(t, bindings[0].Cron)
	assert.Equal(t, model.ActionOff, bindings[1].Action)
	assert.Equal(t, "night-off", bindings[1].Source)
	assert.Equal(t, model.ActionOn, bindings[2].Action)
	assert.Equal(t, schedule.Sunset, bindings[2].Solar)
	assert.True(t, bindings[2].OnlyIfHome)
	assert.Empty(t, registry.UnitBindings(units[0]))
}

func TestLoadRegistryEmptyProject(t *testing.T) {
	t.Parallel()
	registry, err := LoadRegistry(context.Background(), testhelper.NewMemoryFs())
	require.NoError(t, err)
	assert.Empty(t, registry.Units())
	assert.Empty(t, registry.Scenes())
	assert.Empty(t, registry.Schedules())
}

func TestLoadRegistryErrors(t *testing.T) {
	t.Parallel()
	fs := testhelper.NewMemoryFs()
	writeFile(t, fs, "units/dup-a.json", `{"name": "Dup A", "house": "A", "number": 3}`)
	writeFile(t, fs, "units/dup-b.json", `{"name": "Dup B", "house": "A", "number": 3}`)
	writeFile(t, fs, "units/missing-schedule.json", `{"name": "Missing", "house": "B", "number": 1, "onSchedules": ["nope"]}`)
	writeFile(t, fs, "scenes/broken.json", `{"name": "Broken", "units": ["ghost"]}`)

	_, err := LoadRegistry(context.Background(), fs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project is not valid:")
	assert.Contains(t, err.Error(), `units "dup-a" and "dup-b" have the same address "A3"`)
	assert.Contains(t, err.Error(), `unit "missing-schedule": unknown schedule "nope"`)
	assert.Contains(t, err.Error(), `scene "broken": unknown unit "ghost"`)
}

func TestLoadRegistryInvalidFiles(t *testing.T) {
	t.Parallel()
	fs := testhelper.NewMemoryFs()
	writeFile(t, fs, "units/no-json.json", `{`)
	writeFile(t, fs, "units/no-house.json", `{"name": "No House", "number": 1}`)
	writeFile(t, fs, "schedules/bad-crontab.json", `{"name": "Bad", "crontab": "61 25 * * *"}`)

	_, err := LoadRegistry(context.Background(), fs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unit file "units/no-json.json" is invalid`)
	assert.Contains(t, err.Error(), `unit "units/no-house.json" is not valid`)
	assert.Contains(t, err.Error(), `missing property "house"`)
	assert.Contains(t, err.Error(), `schedule "schedules/bad-crontab.json" is not valid`)
}

func writeFile(t *testing.T, fs filesystem.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.WriteFile(filesystem.NewRawFile(path, content)))
}
