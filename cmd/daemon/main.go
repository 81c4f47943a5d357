// SPDX-License-Identifier: MIT

// Command daemon runs the adrkit service: it indexes the decision-record
// tree, serves the HTTP API, and keeps the index fresh while documents
// change. The scan subcommand runs the pipeline once and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adrkit/adrkit/internal/api"
	"github.com/adrkit/adrkit/internal/config"
	"github.com/adrkit/adrkit/internal/daemon"
	"github.com/adrkit/adrkit/internal/jobs"
	"github.com/adrkit/adrkit/internal/library"
	adrlog "github.com/adrkit/adrkit/internal/log"
	"github.com/adrkit/adrkit/internal/telemetry"
	"github.com/adrkit/adrkit/internal/version"
)

// resolveConfigPath picks the effective config file: the explicit flag value
// wins, otherwise ${ADRKIT_DATA}/config.yaml is auto-loaded when it exists so
// a saved configuration survives restarts without extra flags.
func resolveConfigPath(explicit string) string {
	explicit = strings.TrimSpace(explicit)
	if explicit != "" {
		return explicit
	}
	dataDir := strings.TrimSpace(config.ParseString("ADRKIT_DATA", "data"))
	if dataDir == "" {
		dataDir = "data"
	}
	autoPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(autoPath); err == nil {
		return autoPath
	}
	return ""
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "scan" {
		os.Exit(runScanCLI(os.Args[2:]))
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded
	adrlog.Configure(adrlog.Config{
		Service: "adrkit",
		Version: version.Version,
	})

	logger := adrlog.WithComponent("daemon")

	// Create a context that listens for the interrupt signal from the OS
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	explicitConfigPath := strings.TrimSpace(*configPath)
	effectiveConfigPath := resolveConfigPath(explicitConfigPath)

	// Load configuration with precedence: ENV > File > Defaults
	loader := config.NewLoader(effectiveConfigPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	// Log config source
	if explicitConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", explicitConfigPath).
			Msg("loaded configuration from file")
	} else if effectiveConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file(auto)").
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	if err := config.EnsureDataDir(cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.data_dir_failed").
			Str("data_dir", cfg.DataDir).
			Msg("failed to prepare data directory")
	}

	serverCfg := config.ParseServerConfig(cfg)

	tel, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.OTelEnabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: version.Version,
		Environment:    config.ParseString("ADRKIT_ENVIRONMENT", "production"),
		ExporterType:   cfg.OTelProtocol,
		Endpoint:       cfg.OTelEndpoint,
		SamplingRate:   cfg.OTelSample,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "telemetry.init_failed").
			Msg("failed to initialise tracing")
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", serverCfg.ListenAddr).
		Msg("starting adrkit")

	// Log key configuration
	logger.Info().Msgf("→ Docs dir: %s", cfg.DocsDir)
	logger.Info().Msgf("→ Data dir: %s", cfg.DataDir)
	logger.Info().Msgf("→ Watch: %v, scan on start: %v, strict: %v", cfg.Watch, cfg.ScanOnStart, cfg.Strict)
	if cfg.APIToken != "" {
		logger.Info().Msg("→ API token: configured")
	} else {
		logger.Warn().
			Str("security", "weak").
			Msg("→ API token: NOT configured (scan trigger open). Set ADRKIT_API_TOKEN for security.")
	}
	if cfg.MetricsListen != "" {
		logger.Info().Msgf("→ Metrics: %s", cfg.MetricsListen)
	}

	store, err := library.NewStore(filepath.Join(cfg.DataDir, "index.db"))
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "store.open_failed").
			Msg("failed to open record index")
	}

	runner := jobs.NewRunner(store)

	// Hot reload support: watch config file and allow SIGHUP-triggered reload.
	cfgHolder := config.NewHolder(cfg, config.NewLoader(effectiveConfigPath, version.Version), effectiveConfigPath)

	s := api.New(cfgHolder, runner, store)

	deps := daemon.Deps{
		Logger:         logger,
		APIHandler:     s.Handler(),
		MetricsHandler: promhttp.Handler(),
		MetricsAddr:    strings.TrimSpace(cfg.MetricsListen),
	}

	mgr, err := daemon.NewManager(serverCfg, deps)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.creation.failed").
			Msg("failed to create daemon manager")
	}

	// LIFO: tracing flushes before the store closes.
	mgr.RegisterShutdownHook("index_store", func(context.Context) error {
		return store.Close()
	})
	mgr.RegisterShutdownHook("telemetry", tel.Shutdown)

	// Start daemon app (blocks until shutdown)
	app := daemon.NewApp(logger, mgr, cfgHolder, runner)
	if err := app.Run(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.failed").
			Msg("daemon app failed")
	}

	logger.Info().Msg("server exiting")
}
