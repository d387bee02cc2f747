package dialog

import (
	"strconv"
	"strings"
	"time"

	"github.com/homewire/x10/internal/pkg/cli/prompt"
	"github.com/homewire/x10/internal/pkg/project/manifest"
	"github.com/homewire/x10/internal/pkg/utils/errors"
	initOp "github.com/homewire/x10/pkg/lib/operation/project/init"
)

// AskInitOptions asks for the options of the "init" command.
// The location defaults match the default manifest.
func (p *Dialogs) AskInitOptions(defaultName string) (initOp.Options, error) {
	out := initOp.Options{}

	name, ok := p.Ask(&prompt.Question{
		Label:       "Project name",
		Description: "Please enter a name for the new project.",
		Default:     defaultName,
		Validator:   prompt.ValueRequired,
	})
	if !ok || len(name) == 0 {
		return out, errors.New("please specify the project name")
	}
	out.Name = name

	latitude, ok := p.Ask(&prompt.Question{
		Label:       "Latitude",
		Description: "Location of the home, it drives the sunrise and sunset schedules.",
		Default:     formatCoordinate(manifest.DefaultLatitude),
		Validator:   LatitudeValidator,
	})
	if !ok {
		return out, errors.New("please specify the latitude")
	}

	longitude, ok := p.Ask(&prompt.Question{
		Label:     "Longitude",
		Default:   formatCoordinate(manifest.DefaultLongitude),
		Validator: LongitudeValidator,
	})
	if !ok {
		return out, errors.New("please specify the longitude")
	}

	timeZone, ok := p.Ask(&prompt.Question{
		Label:       "Time zone",
		Description: `Time zone of the home in the IANA format, eg. "America/New_York".`,
		Default:     manifest.DefaultTimeZone,
		Validator:   TimeZoneValidator,
	})
	if !ok {
		return out, errors.New("please specify the time zone")
	}

	out.Location = manifest.Location{
		Latitude:  parseCoordinate(latitude),
		Longitude: parseCoordinate(longitude),
		TimeZone:  timeZone,
	}

	out.CreateSamples = p.Confirm(&prompt.Confirm{
		Label:       "Create sample configs?",
		Description: "A sample unit, scene and schedule show the definition format.",
		Default:     true,
	})

	return out, nil
}

func LatitudeValidator(val any) error {
	str, _ := val.(string)
	v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return errors.New("please enter a number")
	}
	if v < -90 || v > 90 {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

func LongitudeValidator(val any) error {
	str, _ := val.(string)
	v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return errors.New("please enter a number")
	}
	if v < -180 || v > 180 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

func TimeZoneValidator(val any) error {
	str, _ := val.(string)
	str = strings.TrimSpace(str)
	if len(str) == 0 {
		return errors.New("value is required")
	}
	if _, err := time.LoadLocation(str); err != nil {
		return errors.Errorf(`invalid time zone "%s"`, str)
	}
	return nil
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseCoordinate(str string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(str), 64)
	return v
}
