// Package config loads the daemon configuration from the "daemon.yml" file,
// the "X10D_*" environment variables and the command line flags,
// the later sources win.
package config

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/davecgh/go-spew/spew"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/project/manifest"
	"github.com/homewire/x10/internal/pkg/utils/errors"
	"github.com/homewire/x10/internal/pkg/validator"
)

const (
	// DefaultListen is the control endpoint the daemon binds when not configured.
	DefaultListen = "tcp://127.0.0.1:6666"
	// DefaultInterval between two dispatcher passes.
	DefaultInterval = 5 * time.Minute
	// EnvPrefix of the daemon environment overrides, for example X10D_SERIAL_PORT.
	EnvPrefix = "X10D"
)

type Config struct {
	Listen     string            `json:"listen" mapstructure:"listen" validate:"required"`
	ProjectDir string            `json:"projectDir" mapstructure:"projectDir" validate:"required"`
	Serial     SerialConfig      `json:"serial" mapstructure:"serial"`
	Location   manifest.Location `json:"location" mapstructure:"location"`
	Scheduler  SchedulerConfig   `json:"scheduler" mapstructure:"scheduler"`
	Workers    WorkersConfig     `json:"workers" mapstructure:"workers"`
	State      StateConfig       `json:"state" mapstructure:"state"`
	Journal    JournalConfig     `json:"journal" mapstructure:"journal"`
	Log        LogConfig         `json:"log" mapstructure:"log"`
}

type SerialConfig struct {
	// Port is the serial device with the CM17A module.
	Port string `json:"port" mapstructure:"port" validate:"required_if=Dry false"`
	// Dry replaces the transmitter with a no-op one, for development.
	Dry bool `json:"dry" mapstructure:"dry"`
	// LockFile serializes the port access with one-shot CLI sends.
	LockFile string `json:"lockFile" mapstructure:"lockFile" validate:"required"`
}

type SchedulerConfig struct {
	Interval time.Duration `json:"interval" mapstructure:"interval" validate:"required,gte=1s"`
}

type WorkersConfig struct {
	Count     int `json:"count" mapstructure:"count" validate:"required,min=1,max=16"`
	QueueSize int `json:"queueSize" mapstructure:"queueSize" validate:"required,min=1"`
}

type StateConfig struct {
	Path string `json:"path" mapstructure:"path" validate:"required"`
}

type JournalConfig struct {
	Path string `json:"path" mapstructure:"path" validate:"required"`
	// Retention of the journal records, zero keeps them forever.
	Retention time.Duration `json:"retention" mapstructure:"retention" validate:"min=0"`
	// MaxSize of the journal database, exceeding it is only warned about.
	MaxSize datasize.ByteSize `json:"maxSize" mapstructure:"maxSize"`
}

type LogConfig struct {
	Level  string `json:"level" mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `json:"format" mapstructure:"format" validate:"required,oneof=console json"`
	// File is an optional log file path, strftime placeholders are expanded.
	File string `json:"file" mapstructure:"file"`
}

func Default() Config {
	return Config{
		Listen:     DefaultListen,
		ProjectDir: ".",
		Serial: SerialConfig{
			Port:     "/dev/ttyS0",
			LockFile: "/tmp/x10-serial.lock",
		},
		Location: manifest.Location{
			Latitude:  manifest.DefaultLatitude,
			Longitude: manifest.DefaultLongitude,
			TimeZone:  manifest.DefaultTimeZone,
		},
		Scheduler: SchedulerConfig{Interval: DefaultInterval},
		Workers:   WorkersConfig{Count: 1, QueueSize: 64},
		State:     StateConfig{Path: "data/run/state.json"},
		Journal: JournalConfig{
			Path:      "data/run/journal.db",
			Retention: 90 * 24 * time.Hour,
			MaxSize:   64 * datasize.MB,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load merges the defaults, the optional YAML config file, the environment
// and the flags into a validated Config.
func Load(ctx context.Context, fs filesystem.Fs, configPath string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Defaults, they also make every key visible to the env override
	def := Default()
	v.SetDefault("listen", def.Listen)
	v.SetDefault("projectDir", def.ProjectDir)
	v.SetDefault("serial.port", def.Serial.Port)
	v.SetDefault("serial.dry", def.Serial.Dry)
	v.SetDefault("serial.lockFile", def.Serial.LockFile)
	v.SetDefault("location.latitude", def.Location.Latitude)
	v.SetDefault("location.longitude", def.Location.Longitude)
	v.SetDefault("location.timeZone", def.Location.TimeZone)
	v.SetDefault("scheduler.interval", def.Scheduler.Interval)
	v.SetDefault("workers.count", def.Workers.Count)
	v.SetDefault("workers.queueSize", def.Workers.QueueSize)
	v.SetDefault("state.path", def.State.Path)
	v.SetDefault("journal.path", def.Journal.Path)
	v.SetDefault("journal.retention", def.Journal.Retention)
	v.SetDefault("journal.maxSize", def.Journal.MaxSize.String())
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.file", def.Log.File)

	// Environment, X10D_SERIAL_PORT overrides serial.port
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file
	if configPath != "" {
		file, err := fs.ReadFile(filesystem.NewFileDef(configPath).SetDescription("config"))
		if err != nil {
			return Config{}, err
		}
		if err := v.ReadConfig(strings.NewReader(file.Content)); err != nil {
			return Config{}, errors.PrefixErrorf(err, `config file "%s" is invalid`, configPath)
		}
	}

	// Flags have the highest priority
	if flags != nil {
		for flagName, key := range flagToKey() {
			if f := flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	cfg := Config{}
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		StringToByteSizeHookFunc(),
	)))
	if err != nil {
		return Config{}, errors.PrefixError(err, "cannot parse the config")
	}

	if err := validator.New().Validate(ctx, &cfg); err != nil {
		return Config{}, errors.PrefixError(err, "config is not valid")
	}
	return cfg, nil
}

// Flags returns the flag set understood by Load, the daemon command registers it.
func Flags() *pflag.FlagSet {
	def := Default()
	flags := pflag.NewFlagSet("daemon", pflag.ContinueOnError)
	flags.String("listen", def.Listen, "control endpoint, tcp://host:port or unix://path")
	flags.String("project-dir", def.ProjectDir, "project directory")
	flags.String("serial-port", def.Serial.Port, "serial device with the CM17A module")
	flags.Bool("serial-dry", def.Serial.Dry, "log the transmissions instead of sending them")
	flags.Duration("interval", def.Scheduler.Interval, "scheduler pass interval")
	flags.String("log-level", def.Log.Level, "log level: debug, info, warn, error")
	flags.String("log-format", def.Log.Format, "log format: console, json")
	flags.String("log-file", def.Log.File, "log file path, strftime placeholders are expanded")
	return flags
}

func flagToKey() map[string]string {
	return map[string]string{
		"listen":      "listen",
		"project-dir": "projectDir",
		"serial-port": "serial.port",
		"serial-dry":  "serial.dry",
		"interval":    "scheduler.interval",
		"log-level":   "log.level",
		"log-format":  "log.format",
		"log-file":    "log.file",
	}
}

// StringToByteSizeHookFunc parses "64MB" style strings into datasize.ByteSize.
func StringToByteSizeHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(datasize.ByteSize(0)) {
			return data, nil
		}
		str := data.(string)
		size, err := datasize.ParseString(str)
		if err != nil {
			return nil, errors.Errorf(`invalid size "%s"`, str)
		}
		return size, nil
	}
}

// Dump returns the effective configuration for the verbose startup log.
func (c Config) Dump() string {
	return spew.Sdump(c)
}
