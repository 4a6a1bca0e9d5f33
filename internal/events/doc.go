// Package events carries task requests from the transport that received them
// to the handlers that turn them into background tasks.
//
// The broker consumer emits a TaskRequestEvent for every delivery; the task
// package registers a handler that creates and submits the matching task.
// Neither side needs to know about the other.
package events
