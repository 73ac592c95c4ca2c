// Package version reports build information for the pullfeed binary.
//
//	go build -ldflags "-X github.com/kbukum/pullfeed/version.Version=1.2.0" ./cmd/pullfeed
package version
