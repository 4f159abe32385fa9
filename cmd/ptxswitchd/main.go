package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"

	"github.com/ptxhome/ptxswitchd/internal/config"
	"github.com/ptxhome/ptxswitchd/internal/events"
	"github.com/ptxhome/ptxswitchd/internal/http/handlers"
	"github.com/ptxhome/ptxswitchd/internal/platform"
	"github.com/ptxhome/ptxswitchd/internal/server"
	"github.com/ptxhome/ptxswitchd/internal/utils"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

type options struct {
	configFile string
	logLevel   string
	logFormat  string
	listen     string
	discovery  bool
}

func parseFlags(args []string) (*options, *pflag.FlagSet, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("ptxswitchd", pflag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "Path to config file")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", "", "Log format (text, json)")
	fs.StringVar(&opts.listen, "listen", "", "HTTP API listen address, empty string disables the API")
	fs.BoolVar(&opts.discovery, "discovery", false, "Enable mDNS discovery of unconfigured switches")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return opts, fs, nil
}

// applyFlags overrides configuration with flags that were set explicitly.
func applyFlags(cfg *config.Config, opts *options, fs *pflag.FlagSet) {
	if fs.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
		cfg.Set("logging.level", opts.logLevel)
	}
	if fs.Changed("log-format") {
		cfg.Logging.Format = opts.logFormat
	}
	if fs.Changed("listen") {
		cfg.API.ListenAddress = opts.listen
	}
	if fs.Changed("discovery") {
		cfg.Discovery.Enabled = opts.discovery
	}
}

// watchLogLevel applies logging.level changes from the config file at runtime.
func watchLogLevel(cfg *config.Config, logger *slog.Logger) {
	v := cfg.Viper()
	path := v.ConfigFileUsed()
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		lvl := v.GetString("logging.level")
		if utils.ValidateLogLevel(lvl) != lvl {
			logger.Warn("config: ignoring invalid log level", "level", lvl)
			return
		}
		utils.SetLevel(lvl)
		logger.Info("config: log level changed", "level", lvl, "path", e.Name)
	})
	v.WatchConfig()
}

// run starts the daemon and blocks until ctx is cancelled.
func run(ctx context.Context, args []string) error {
	opts, fs, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.DaemonConfigFilename, opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(cfg, opts, fs)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := utils.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
	utils.SetAsDefaultLogger(logger)
	logger.Info("Starting ptxswitchd",
		"version", version,
		"commit", commit,
		"buildDate", buildDate,
	)
	watchLogLevel(cfg, logger)

	bus := events.NewBus()
	manager := platform.NewManager(logger, bus)
	if err := manager.SetupDevices(ctx, cfg.Devices); err != nil {
		logger.Warn("platform: some devices could not be set up", "error", err)
	}

	srv := server.New(logger, cfg, manager, bus,
		server.WithVersion(handlers.VersionInfo{Version: version, Commit: commit, Date: buildDate}))
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	<-ctx.Done()
	logger.Info("Shutting down...")
	srv.Stop()
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		utils.SetupErrorLogger().Error("ptxswitchd exited", "error", err)
		os.Exit(1)
	}
}
