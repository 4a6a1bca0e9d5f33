// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config.yaml. It provides
// type-safe access to the broker, store, discussion service, SMTP and
// platform settings the notifier needs.
package config
