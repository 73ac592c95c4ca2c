package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/pullfeed/component"
	"github.com/kbukum/pullfeed/logger"
	"github.com/kbukum/pullfeed/version"
)

var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// App owns the process lifecycle: it starts registered components, runs
// hooks around them, and tears everything down in reverse on exit. C is
// the config type.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	summaryOut      io.Writer
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it, and initializes logging.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	svc := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	log := o.logger
	if log == nil {
		logger.Init(&svc.Logging)
		log = logger.GetGlobalLogger()
	}

	app := &App[C]{
		Name:            svc.Name,
		Version:         version.Get().String(),
		Cfg:             cfg,
		Logger:          log,
		gracefulTimeout: o.timeoutOr(15 * time.Second),
		summaryOut:      o.summaryOr(os.Stdout),
	}
	app.Components = component.NewRegistry(log.WithComponent("registry"))
	app.Components.SetStopTimeout(app.gracefulTimeout)
	app.Summary = NewSummary(svc.Name, app.Version)
	return app, nil
}

// RegisterComponent adds c to the registry. Components start in
// registration order and stop in reverse.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback that runs after components start, with
// access to the app itself. Route wiring belongs here.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck fails when any registered component reports anything other
// than healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var bad []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		entry := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			entry += " (" + h.Message + ")"
		}
		bad = append(bad, entry)
	}
	if len(bad) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(bad, ", "))
	}
	return nil
}

// Run starts the app and serves until SIGINT/SIGTERM or ctx ends.
func (a *App[C]) Run(ctx context.Context) error {
	return a.RunTask(ctx, func(ctx context.Context) error {
		a.Logger.Info("Application ready, waiting for shutdown signal")
		<-ctx.Done()
		return nil
	})
}

// RunTask starts the app, runs task in the foreground, and shuts down once
// task returns. A shutdown signal cancels the task's context. The task's
// error wins over a shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, stopSignals := signal.NotifyContext(ctx, shutdownSignals...)
	defer stopSignals()

	taskErr := task(taskCtx)
	stopErr := a.stop()
	if taskErr != nil {
		return taskErr
	}
	return stopErr
}

type phase struct {
	name string
	run  func(ctx context.Context) error
}

func (a *App[C]) phases() []phase {
	return []phase{
		{"start components", a.Components.StartAll},
		{"start hooks", func(ctx context.Context) error { return runHooks(ctx, a.onStart) }},
		{"configure", func(ctx context.Context) error {
			for _, fn := range a.onConfigure {
				if err := fn(ctx, a); err != nil {
					return err
				}
			}
			return nil
		}},
		{"ready check", func(ctx context.Context) error {
			if err := a.ReadyCheck(ctx); err != nil {
				a.Logger.Warn("Ready check reported issues", logger.ErrorFields("ready_check", err))
			}
			return nil
		}},
		{"ready hooks", func(ctx context.Context) error { return runHooks(ctx, a.onReady) }},
	}
}

// startup runs each phase in order. A failing phase stops whatever already
// started before its error is returned.
func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	for _, p := range a.phases() {
		a.Logger.Debug("Startup phase", logger.Fields(logger.FieldOperation, p.name))
		if err := p.run(ctx); err != nil {
			err = fmt.Errorf("%s: %w", p.name, err)
			if stopErr := a.stop(); stopErr != nil {
				a.Logger.Error("Cleanup after failed startup", logger.ErrorFields("stop", stopErr))
			}
			return err
		}
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Display(a.summaryOut, a.Components)
	return nil
}

// WaitForSignal blocks until SIGINT/SIGTERM or ctx is done. It returns nil
// when ctx ended first.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		return nil
	}
}

// Shutdown stops the application. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(_ context.Context) error {
	return a.stop()
}

// stop runs the stop hooks, then stops components in reverse order, all
// under one graceful deadline. Both steps run even if the first fails.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("Stop hook failed", logger.ErrorFields("on_stop", err))
		errs = append(errs, err)
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Components stopped with errors", logger.ErrorFields("stop_all", err))
		errs = append(errs, err)
	}

	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}
