// Package observability wires OpenTelemetry tracing and metrics.
//
// Init installs OTLP/HTTP exporters when enabled; otherwise the global
// no-op providers stay in place and instrumentation costs nothing:
//
//	shutdown, err := observability.Init(ctx, cfg.Observability, version.Get().Version)
//	defer shutdown(context.Background())
//
// FeedMetrics carries the feed instruments (pulls, items by outcome,
// batch size and latency, source terminations). HTTPMetrics carries the
// request instruments recorded by the server middleware.
package observability
