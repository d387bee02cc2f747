// Package options provides the values of the CLI flags,
// merged with the ENV variables and the ".env" files.
package options

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/homewire/x10/internal/pkg/env"
	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
)

// secretValueRegexp matches the keys whose values are masked in the Dump output.
var secretValueRegexp = regexp.MustCompile(`(?i)(secret|token|password)`)

// Options manages the parsed flags, the ENV files and the ENV variables.
// The value sources, from the highest priority:
//  1. flag
//  2. ENV variable defined in the OS
//  3. ".env" file in the working dir
//  4. ".env" file in the project dir
type Options struct {
	envNaming *env.NamingConvention
	envs      *env.Map
	*viper.Viper
}

func NewOptions() *Options {
	return &Options{
		envNaming: env.NewNamingConvention(env.Prefix),
		Viper:     viper.New(),
	}
}

// Load all the sources of the options: the flags, the OS ENVs and the ".env" files.
func (o *Options) Load(logger log.Logger, osEnvs *env.Map, fs filesystem.Fs, flags *pflag.FlagSet) error {
	// Drop the values from a previous Load
	o.Viper = viper.New()

	// Load ENVs from the OS and the ".env" files, the OS and the working dir take precedence
	o.envs = env.LoadDotEnv(logger, osEnvs, fs, []string{fs.WorkingDir(), `.`})

	// Bind the flags, the flag default is used if nothing else is set
	if err := o.BindPFlags(flags); err != nil {
		return err
	}

	// Map the ENV variables to the flags, eg. X10_STATIC_ROOT -> static-root.
	// A flag set by the user beats the ENV variable.
	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Changed {
			o.Viper.Set(flag.Name, flag.Value.String())
			return
		}
		if value, found := o.envs.Lookup(o.envNaming.FlagToEnv(flag.Name)); found {
			o.Viper.Set(flag.Name, value)
		}
	})

	return nil
}

// Envs returns the ENV variables merged from the OS and the ".env" files.
func (o *Options) Envs() *env.Map {
	if o.envs == nil {
		return env.Empty()
	}
	return o.envs
}

// KeyToEnv returns the name of the ENV variable matching the option key.
func (o *Options) KeyToEnv(key string) string {
	return o.envNaming.FlagToEnv(key)
}

// Dump the options for debugging, secret values are masked.
func (o *Options) Dump() string {
	var out strings.Builder
	out.WriteString("Parsed options:\n")

	keys := o.AllKeys()
	sort.Strings(keys)
	for _, key := range keys {
		value := o.GetString(key)
		if secretValueRegexp.MatchString(key) && len(value) > 0 {
			visible := len(value)
			if visible > 7 {
				visible = 7
			}
			value = value[:visible] + "*****"
		}
		out.WriteString(fmt.Sprintf("  %s = \"%s\"\n", key, value))
	}

	return out.String()
}
