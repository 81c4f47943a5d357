// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/adrkit/adrkit/internal/config"
	"github.com/adrkit/adrkit/internal/jobs"
	"github.com/adrkit/adrkit/internal/log"
	"github.com/adrkit/adrkit/internal/watch"
)

// scanTimeout bounds one background scan run.
const scanTimeout = 5 * time.Minute

// App owns the long-lived runtime lifecycle (config watcher, SIGHUP reload,
// docs watcher, initial scan) and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.Holder
	runner       *jobs.Runner
	reloadSignal os.Signal
}

// NewApp creates an App orchestrator.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.Holder, runner *jobs.Runner) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		runner:       runner,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts all owned background subsystems and blocks until ctx is
// cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	// Config watcher is best-effort: startup should not fail when the
	// watcher cannot be started.
	if a.cfgHolder != nil {
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("failed to start config watcher")
		}
	}

	// SIGHUP trigger for manual reload.
	if a.cfgHolder != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str("event", "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")

					if err := a.cfgHolder.Reload(context.Background()); err != nil {
						a.logger.Warn().
							Err(err).
							Str("event", "config.reload_failed").
							Msg("config reload failed")
					}
				}
			}
		})
	}

	if a.cfgHolder != nil && a.runner != nil {
		// Docs watcher, restarted when a reload moves the docs root.
		g.Go(func() error {
			a.runDocsWatcher(ctx)
			return nil
		})

		// Initial scan so readiness converges without waiting for a
		// trigger. Failures surface through readiness, not startup.
		if a.cfgHolder.Get().ScanOnStart {
			g.Go(func() error {
				a.triggerScan(ctx, "startup")
				return nil
			})
		}
	}

	// Main server lifecycle.
	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}

// runDocsWatcher owns the docs watcher, restarting it when a config reload
// moves the docs root or toggles watching. It returns when ctx is cancelled.
func (a *App) runDocsWatcher(ctx context.Context) {
	reloadCh := make(chan config.Config, 1)
	a.cfgHolder.RegisterListener(reloadCh)

	var (
		current     *watch.Watcher
		cancelWatch context.CancelFunc
	)
	stop := func() {
		if current != nil {
			cancelWatch()
			current.Stop()
			current = nil
		}
	}
	defer stop()

	start := func(cfg config.Config) {
		if !cfg.Watch {
			return
		}
		watchCtx, cancel := context.WithCancel(ctx)
		w := watch.New(cfg.DocsDir, watch.DefaultDebounce, func() {
			a.triggerScan(ctx, "watch")
		})
		if err := w.Start(watchCtx); err != nil {
			cancel()
			a.logger.Warn().
				Err(err).
				Str("event", "watch.start_failed").
				Str(log.FieldDocsDir, cfg.DocsDir).
				Msg("failed to start docs watcher")
			return
		}
		current, cancelWatch = w, cancel
	}

	cfg := a.cfgHolder.Get()
	start(cfg)

	for {
		select {
		case <-ctx.Done():
			return
		case newCfg := <-reloadCh:
			if newCfg.Watch == cfg.Watch && newCfg.DocsDir == cfg.DocsDir {
				cfg = newCfg
				continue
			}
			a.logger.Info().
				Str("event", "watch.restart").
				Str(log.FieldDocsDir, newCfg.DocsDir).
				Bool("watch", newCfg.Watch).
				Msg("docs watcher following config change")
			stop()
			cfg = newCfg
			start(cfg)
		}
	}
}

// triggerScan runs one scan with the current configuration. An already
// running scan wins; other failures are logged and surface through the
// status and readiness endpoints.
func (a *App) triggerScan(ctx context.Context, reason string) {
	scanCtx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	cfg := a.cfgHolder.Get()
	st, err := a.runner.Run(scanCtx, jobs.Config{
		DocsDir:     cfg.DocsDir,
		DataDir:     cfg.DataDir,
		Strict:      cfg.Strict,
		FilePattern: cfg.FilePattern,
		MaxParallel: cfg.MaxParallel,
	})

	switch {
	case errors.Is(err, jobs.ErrScanInFlight):
		a.logger.Debug().
			Str("event", "scan.skipped").
			Str("reason", reason).
			Msg("scan already in progress")
	case err != nil:
		a.logger.Error().
			Err(err).
			Str("event", "scan.failed").
			Str("reason", reason).
			Msg("background scan failed")
	default:
		a.logger.Info().
			Str("event", "scan.completed").
			Str("reason", reason).
			Int("records", st.Records).
			Int("findings", st.Findings).
			Msg("background scan completed")
	}
}
