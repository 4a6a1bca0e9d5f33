// Package postgres provides PostgreSQL-specific implementations for the
// interfaces defined in internal/store and internal/task. It handles query
// execution, mapping rows to domain entities, and the embedded schema
// migrations applied with goose.
package postgres
