// Package bootstrap runs an application's lifecycle: start registered
// components in order, run hooks, print a startup summary, then either
// block on SIGINT/SIGTERM (Run) or execute a finite task (RunTask), and
// finally stop everything in reverse order within a graceful timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(loop)
//	app.RegisterComponent(feed)
//	app.RegisterComponent(server.NewComponent(srv))
//	err = app.Run(ctx)
package bootstrap
