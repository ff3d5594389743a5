// Package storage provides the object store behind page uploads: a GCS
// implementation for production and an in-memory implementation for tests
// and single-node development.
package storage
