// Package component defines the lifecycle interface shared by every
// long-running part of the process and a Registry that starts them in
// order and stops them in reverse.
package component
