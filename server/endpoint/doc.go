// Package endpoint provides the probe handlers mounted by every surface:
// /healthz and /version.
package endpoint
