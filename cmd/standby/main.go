package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/genricoloni/standby/internal/config"
	"github.com/genricoloni/standby/internal/controller"
	"github.com/genricoloni/standby/internal/domain"
	"github.com/genricoloni/standby/internal/executor"
	"github.com/genricoloni/standby/internal/fetcher"
	"github.com/genricoloni/standby/internal/layout"
	"github.com/genricoloni/standby/internal/media"
	"github.com/genricoloni/standby/internal/processor"
	"github.com/genricoloni/standby/internal/scheduler"
	"github.com/genricoloni/standby/internal/ui"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// AppOptions is the complete dependency graph of the standby screen
var AppOptions = fx.Options(
	fx.Provide(
		config.NewAppConfig,
		func(c *config.AppConfig) domain.Config { return c },
		func(c *config.AppConfig) ui.Settings { return c },
		newLogger,

		fx.Annotate(fetcher.NewArtFetcher, fx.As(new(domain.Fetcher))),
		fx.Annotate(processor.NewArtworkProcessor, fx.As(new(domain.ArtworkProcessor))),
		func(p domain.ArtworkProcessor) ui.ColorPicker { return p },

		media.NewMprisService,
		func(s *media.MprisService) domain.MediaService { return s },

		scheduler.NewGocronScheduler,
		func(s *scheduler.GocronScheduler) domain.Scheduler { return s },
		fx.Annotate(scheduler.NewSystemClock, fx.As(new(domain.Clock))),

		fx.Annotate(executor.NewIdleInhibitor, fx.As(new(domain.IdleInhibitor))),
		layout.NewScreenResolution,

		controller.NewController,
		func(c *controller.Controller) ui.Controls { return c },
		ui.NewUI,
	),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		AppOptions,
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Logs go to a file, so startup failures are also reported on stderr
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "standby: %v\n", err)
		os.Exit(1)
	}

	// Wait for a signal or for the screen to be closed
	exitCode := 0
	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		exitCode = sig.ExitCode
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "standby: %v\n", err)
		exitCode = 1
	}
	os.Exit(exitCode)
}

// newLogger creates a production zap logger writing to the configured log
// file, since the terminal is owned by the standby screen
func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	path := cfg.LogFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel())
	zapCfg.OutputPaths = []string{path}
	zapCfg.ErrorOutputPaths = []string{path}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

type hookParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *zap.Logger
	Config     *config.AppConfig
	Service    *media.MprisService
	Scheduler  *scheduler.GocronScheduler
	Controller *controller.Controller
	Inhibitor  domain.IdleInhibitor
	Screen     *ui.UI
}

// registerHooks sets up application lifecycle hooks
func registerHooks(p hookParams) {
	logger := p.Logger
	screenDone := make(chan struct{})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Config.Watch(logger)

			if err := p.Service.Start(ctx); err != nil {
				return err
			}

			p.Controller.Observe(p.Screen.Publish)
			if err := p.Controller.Activate(ctx); err != nil {
				return multierr.Append(err, p.Service.Close())
			}

			if p.Config.KeepAwake() {
				if err := p.Inhibitor.Inhibit(ctx); err != nil {
					logger.Warn("Failed to keep the display awake", zap.Error(err))
				}
			}

			go func() {
				defer close(screenDone)
				if err := p.Screen.Run(); err != nil {
					logger.Error("Standby screen failed", zap.Error(err))
				}
				// Closing the screen ends the application
				if err := p.Shutdowner.Shutdown(); err != nil {
					logger.Debug("Shutdown already in progress", zap.Error(err))
				}
			}()

			logger.Info("Standby started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")

			p.Screen.Quit()
			select {
			case <-screenDone:
			case <-ctx.Done():
				logger.Warn("Timed out waiting for the screen to close")
			}

			return multierr.Combine(
				p.Controller.Deactivate(),
				p.Inhibitor.Release(ctx),
				p.Service.Close(),
				p.Scheduler.Shutdown(),
			)
		},
	})
}
