// Package db provides the PostgreSQL data-access layer: connection
// establishment for the supported authentication methods and a Store
// implementation that replays operations on transient connection
// failures via internal/retry.
package db
