// Package wiki implements the domain services: users, wikis, pages with
// immutable revision history, settings, uploads, and full-text search.
// All database access goes through the retrying Store.
package wiki
