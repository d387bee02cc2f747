// Package schema validates the project definition files against the embedded JSON schemas.
package schema

import (
	_ "embed"

	"github.com/keboola/go-utils/pkg/orderedmap"

	jsonschema "github.com/homewire/x10/internal/pkg/encoding/json/schema"
)

//go:embed unit.schema.json
var unitSchema []byte

//go:embed scene.schema.json
var sceneSchema []byte

//go:embed schedule.schema.json
var scheduleSchema []byte

func ValidateUnit(content *orderedmap.OrderedMap) error {
	return jsonschema.ValidateContent(unitSchema, content)
}

func ValidateScene(content *orderedmap.OrderedMap) error {
	return jsonschema.ValidateContent(sceneSchema, content)
}

func ValidateSchedule(content *orderedmap.OrderedMap) error {
	return jsonschema.ValidateContent(scheduleSchema, content)
}
