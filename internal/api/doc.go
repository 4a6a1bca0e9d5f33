// Package api exposes the notifier over HTTP. Services that cannot publish to
// the broker directly submit task contexts here; the handler validates them
// and publishes them to the task queue. A health endpoint reports whether the
// service's dependencies are reachable.
package api
