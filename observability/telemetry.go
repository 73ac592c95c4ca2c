package observability

import (
	"context"
	"errors"
)

// Shutdown flushes and stops the providers installed by Init.
type Shutdown func(ctx context.Context) error

// Init installs tracer and meter providers when cfg.Enabled is set. With
// telemetry disabled it returns a no-op Shutdown and the global no-op
// providers keep serving Tracer and Meter.
func Init(ctx context.Context, cfg Config, serviceVersion string) (Shutdown, error) {
	cfg.ApplyDefaults()
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	tp, err := InitTracer(ctx, cfg, serviceVersion)
	if err != nil {
		return nil, err
	}
	mp, err := InitMeter(ctx, cfg, serviceVersion)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
