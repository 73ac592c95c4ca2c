package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/pullfeed/logger"
)

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, cfg Config, serviceVersion string) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, serviceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("Meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// FeedMetrics holds the instruments recorded by the feed controllers.
// A nil *FeedMetrics records nothing.
type FeedMetrics struct {
	pulls         metric.Int64Counter
	pullAmount    metric.Int64Histogram
	items         metric.Int64Counter
	batchSize     metric.Int64Histogram
	batchDuration metric.Float64Histogram
	terminations  metric.Int64Counter
}

// NewFeedMetrics creates the feed instruments on meter.
func NewFeedMetrics(meter metric.Meter) (*FeedMetrics, error) {
	pulls, err := meter.Int64Counter("pullfeed.scroll.pulls",
		metric.WithDescription("Pull requests by whether they were queued behind an in-flight session"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pullfeed.scroll.pulls counter: %w", err)
	}

	pullAmount, err := meter.Int64Histogram("pullfeed.scroll.pull_amount",
		metric.WithDescription("Requested pull sizes"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pullfeed.scroll.pull_amount histogram: %w", err)
	}

	items, err := meter.Int64Counter("pullfeed.items",
		metric.WithDescription("Items received from sources by outcome"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pullfeed.items counter: %w", err)
	}

	batchSize, err := meter.Int64Histogram("pullfeed.scroll.batch_size",
		metric.WithDescription("Items committed per finalized pull session"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pullfeed.scroll.batch_size histogram: %w", err)
	}

	batchDuration, err := meter.Float64Histogram("pullfeed.scroll.batch_duration",
		metric.WithDescription("Time from pull start to commit"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pullfeed.scroll.batch_duration histogram: %w", err)
	}

	terminations, err := meter.Int64Counter("pullfeed.source.terminations",
		metric.WithDescription("Source terminations by controller and reason (end, error)"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pullfeed.source.terminations counter: %w", err)
	}

	return &FeedMetrics{
		pulls:         pulls,
		pullAmount:    pullAmount,
		items:         items,
		batchSize:     batchSize,
		batchDuration: batchDuration,
		terminations:  terminations,
	}, nil
}

// RecordPull records a pull request of amount items.
func (m *FeedMetrics) RecordPull(ctx context.Context, feed string, amount int, queued bool) {
	if m == nil {
		return
	}
	m.pulls.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrFeed, feed),
		attribute.Bool("queued", queued),
	))
	m.pullAmount.Record(ctx, int64(amount), metric.WithAttributes(attribute.String(AttrFeed, feed)))
}

// RecordItem records one received item. Outcome is buffered, rebuffered,
// corrected, or prefixed.
func (m *FeedMetrics) RecordItem(ctx context.Context, feed, outcome string) {
	if m == nil {
		return
	}
	m.items.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrFeed, feed),
		attribute.String("outcome", outcome),
	))
}

// RecordBatch records a finalized pull session.
func (m *FeedMetrics) RecordBatch(ctx context.Context, feed string, size int, more bool, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrFeed, feed),
		attribute.Bool(AttrMoreAvailable, more),
	)
	m.batchSize.Record(ctx, int64(size), attrs)
	m.batchDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordTermination records a source ending, cleanly or with an error.
func (m *FeedMetrics) RecordTermination(ctx context.Context, feed, controller, reason string) {
	if m == nil {
		return
	}
	m.terminations.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrFeed, feed),
		attribute.String(AttrController, controller),
		attribute.String("reason", reason),
	))
}

// HTTPMetrics holds request instruments for the HTTP surface.
type HTTPMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
}

// NewHTTPMetrics creates the HTTP request instruments on meter.
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestTotal, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.requests counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("Duration of requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Number of in-flight requests, SSE streams included"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.active_requests counter: %w", err)
	}

	return &HTTPMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
	}, nil
}

// RecordRequestStart increments the active request count.
func (m *HTTPMetrics) RecordRequestStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements active requests and records the completed request.
func (m *HTTPMetrics) RecordRequestEnd(ctx context.Context, route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("method", method),
		attribute.Int("status", status),
	)
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, d.Seconds(), attrs)
}
