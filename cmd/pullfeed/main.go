// Command pullfeed materializes an infinite demo feed from pull sources and
// shows it in the terminal or serves it over HTTP with live updates.
//
//	pullfeed                      # terminal UI
//	pullfeed --mode serve --port 8080
//	pullfeed --config pullfeed.yaml --pull 10
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kbukum/pullfeed/bootstrap"
	"github.com/kbukum/pullfeed/component"
	"github.com/kbukum/pullfeed/demo"
	"github.com/kbukum/pullfeed/feed"
	"github.com/kbukum/pullfeed/feedhttp"
	"github.com/kbukum/pullfeed/logger"
	"github.com/kbukum/pullfeed/observability"
	"github.com/kbukum/pullfeed/sched"
	"github.com/kbukum/pullfeed/server"
	"github.com/kbukum/pullfeed/server/endpoint"
	"github.com/kbukum/pullfeed/sse"
	"github.com/kbukum/pullfeed/tui"
)

const instrumentation = "github.com/kbukum/pullfeed"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "pullfeed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	var opts []bootstrap.Option
	if cfg.Mode == ModeTUI {
		opts = append(opts, bootstrap.WithSummaryOutput(io.Discard))
	}
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return err
	}

	if err := initTelemetry(ctx, app); err != nil {
		return err
	}

	f, err := wireFeed(app)
	if err != nil {
		return err
	}

	if cfg.Mode == ModeServe {
		if err := wireHTTP(app, f); err != nil {
			return err
		}
		return app.Run(ctx)
	}
	return app.RunTask(ctx, func(ctx context.Context) error {
		return tui.Run(ctx, f, demo.Text, tui.Options{Title: "pullfeed"})
	})
}

// initTelemetry installs the OTel providers and flushes them on shutdown.
func initTelemetry(ctx context.Context, app *bootstrap.App[*AppConfig]) error {
	shutdown, err := observability.Init(ctx, app.Cfg.Observability, app.Version)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	app.OnStop(bootstrap.Hook(shutdown))
	return nil
}

// wireFeed registers the scheduler loop, the live publisher and the feed.
// Registration order is start order: the loop must run before the feed
// binds its sources.
func wireFeed(app *bootstrap.App[*AppConfig]) (*feed.Feed[demo.Post, string], error) {
	metrics, err := observability.NewFeedMetrics(observability.Meter(instrumentation))
	if err != nil {
		return nil, fmt.Errorf("feed metrics: %w", err)
	}

	loop := sched.NewLoop("feed-loop")
	live := demo.NewLive(app.Cfg.Demo)
	f, err := feed.New(app.Cfg.Feed, demo.PostKey,
		feed.WithName("posts"),
		feed.WithScheduler(loop),
		feed.WithLogger(app.Logger.WithComponent("feed")),
		feed.WithMetrics(metrics),
		feed.WithTracer(observability.Tracer(instrumentation)),
		feed.WithScrollSource(demo.Posts(app.Cfg.Demo)),
		feed.WithPrefixSource(live.Factory()),
	)
	if err != nil {
		return nil, err
	}

	if err := register(app, loop, f, live); err != nil {
		return nil, err
	}
	return f, nil
}

// wireHTTP registers the event hub, the feed handler and the HTTP server.
func wireHTTP(app *bootstrap.App[*AppConfig], f *feed.Feed[demo.Post, string]) error {
	httpMetrics, err := observability.NewHTTPMetrics(observability.Meter(instrumentation))
	if err != nil {
		return fmt.Errorf("http metrics: %w", err)
	}

	hub := sse.NewHub(app.Logger.WithComponent("sse"))
	handler := feedhttp.NewHandler(f, hub, app.Logger.WithComponent("feedhttp"))

	srv := server.New(app.Cfg.Server, app.Logger.WithComponent("http"))
	// Open event streams would otherwise hold Shutdown until its deadline.
	srv.RegisterOnShutdown(hub.Stop)
	srv.ApplyMiddleware(httpMetrics)
	engine := srv.Engine()
	engine.GET("/healthz", endpoint.Health(app.Name, app.Components.HealthAll))
	engine.GET("/version", endpoint.Version())
	handler.Register(engine)
	for _, r := range engine.Routes() {
		app.Summary.TrackRoute(r.Method, r.Path)
	}

	// The hub must run before the handler attaches, and the server stops
	// first so no request reaches a stopped hub.
	if err := register(app, sse.NewComponent(hub, "/feed/events"), handler, server.NewComponent(srv)); err != nil {
		return err
	}
	app.Logger.Debug("HTTP surface wired", logger.Fields("routes", len(engine.Routes())))
	return nil
}

func register(app *bootstrap.App[*AppConfig], comps ...component.Component) error {
	for _, c := range comps {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}
	return nil
}
