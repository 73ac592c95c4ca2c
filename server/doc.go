// Package server provides the HTTP server: a Gin engine served over
// HTTP/1.1 and h2c, the standard middleware stack, JSON response helpers,
// and a component.Component wrapper for the registry.
//
//	srv := server.New(cfg.Server, log)
//	srv.ApplyMiddleware(httpMetrics)
//	srv.Engine().GET("/feed", handler)
//	registry.Register(server.NewComponent(srv))
package server
