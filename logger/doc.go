// Package logger provides structured logging using zerolog.
//
// It supports JSON and console output, level configuration, component- and
// field-scoped child loggers, and output to stdout, stderr, a file, or
// nowhere (useful while a terminal UI owns the screen).
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//	  output: "pullfeed.log"
//
// # Usage
//
//	log := logger.WithComponent("feed")
//	log.Debug("Pull committed", logger.Fields("committed", 30))
package logger
