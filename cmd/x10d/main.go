package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"

	"github.com/homewire/x10/internal/pkg/filesystem/aferofs"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/service/common/servicectx"
	"github.com/homewire/x10/internal/pkg/service/daemon"
	"github.com/homewire/x10/internal/pkg/service/daemon/config"
	"github.com/homewire/x10/internal/pkg/utils/errors"
	"github.com/homewire/x10/internal/pkg/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("fatal error: %s\n", err.Error()) // nolint:forbidigo
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Parse flags
	flags := config.Flags()
	flags.String("config", "", `path to the "daemon.yml" config file`)
	flags.BoolP("version", "V", false, "print the version and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			// Stop on --help flag
			return nil
		}
		return err
	}
	if v, _ := flags.GetBool("version"); v {
		fmt.Println(version.Version()) // nolint:forbidigo
		return nil
	}

	// Load configuration
	configPath, _ := flags.GetString("config")
	cfg, err := loadConfig(ctx, configPath, flags)
	if err != nil {
		return err
	}

	// Create logger
	logger, logFile, err := newLogger(cfg)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.TearDown(false)
	}
	logger.Debugf("Effective config:\n%s", cfg.Dump())

	// Project filesystem
	fs, err := aferofs.NewLocalFs(logger, cfg.ProjectDir, "")
	if err != nil {
		return err
	}

	// Create process abstraction
	proc, err := servicectx.New(ctx, cancel, logger)
	if err != nil {
		return err
	}

	// Start the service
	logger.Infof(`Starting x10d, project dir "%s".`, cfg.ProjectDir)
	if _, err := daemon.StartService(ctx, proc, logger, clockwork.NewRealClock(), fs, cfg); err != nil {
		return err
	}

	// Wait for the service shutdown
	proc.WaitForShutdown()
	return nil
}

// loadConfig reads the optional YAML file and merges the other sources.
func loadConfig(ctx context.Context, configPath string, flags *pflag.FlagSet) (config.Config, error) {
	dir, file := ".", ""
	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return config.Config{}, err
		}
		dir, file = filepath.Dir(abs), filepath.Base(abs)
	}

	fs, err := aferofs.NewLocalFs(log.NewNopLogger(), dir, "")
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(ctx, fs, file, flags)
}

func newLogger(cfg config.Config) (log.Logger, *log.File, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	format, err := log.NewLogFormat(cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	var logFile *log.File
	if cfg.Log.File != "" {
		logFile, err = log.NewLogFile(cfg.Log.File)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(os.Stderr, logFile.File())
	}
	return log.NewServiceLogger(out, level, format), logFile, nil
}
