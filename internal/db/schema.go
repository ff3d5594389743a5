package db

import (
	"context"
	"fmt"

	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// schemaStatements creates every table the wiki needs. Each statement is
// idempotent so Bootstrap can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            uuid PRIMARY KEY,
		email         text NOT NULL UNIQUE,
		name          text NOT NULL,
		password_hash text NOT NULL,
		role          text NOT NULL CHECK (role IN ('admin', 'editor', 'viewer')),
		created_at    timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS wikis (
		id          uuid PRIMARY KEY,
		slug        text NOT NULL UNIQUE,
		title       text NOT NULL,
		description text NOT NULL DEFAULT '',
		owner_id    uuid NOT NULL REFERENCES users(id),
		created_at  timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS pages (
		id         uuid PRIMARY KEY,
		wiki_id    uuid NOT NULL REFERENCES wikis(id) ON DELETE CASCADE,
		slug       text NOT NULL,
		title      text NOT NULL,
		source     text NOT NULL,
		version    integer NOT NULL DEFAULT 1,
		updated_by uuid NOT NULL REFERENCES users(id),
		updated_at timestamptz NOT NULL DEFAULT now(),
		UNIQUE (wiki_id, slug)
	)`,

	`CREATE INDEX IF NOT EXISTS pages_search_idx ON pages
		USING GIN (to_tsvector('english', title || ' ' || source))`,

	`CREATE TABLE IF NOT EXISTS page_revisions (
		id           uuid PRIMARY KEY,
		page_id      uuid NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
		version      integer NOT NULL,
		title        text NOT NULL,
		source       text NOT NULL,
		checksum     text NOT NULL,
		checksum_raw text NOT NULL,
		created_by   uuid NOT NULL REFERENCES users(id),
		created_at   timestamptz NOT NULL DEFAULT now(),
		UNIQUE (page_id, version)
	)`,

	`CREATE TABLE IF NOT EXISTS settings (
		key        text PRIMARY KEY,
		value      text NOT NULL,
		encrypted  boolean NOT NULL DEFAULT false,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS uploads (
		id           uuid PRIMARY KEY,
		wiki_id      uuid NOT NULL REFERENCES wikis(id) ON DELETE CASCADE,
		object_key   text NOT NULL UNIQUE,
		file_name    text NOT NULL,
		content_type text NOT NULL,
		size_bytes   bigint NOT NULL,
		checksum     text NOT NULL,
		created_by   uuid NOT NULL REFERENCES users(id),
		created_at   timestamptz NOT NULL DEFAULT now()
	)`,
}

// Bootstrap creates the schema if it does not exist yet. Statements go
// through the Store, so schema creation enjoys the same retry behavior as
// regular queries.
func Bootstrap(ctx context.Context, store deepwiki.Store) error {
	for _, stmt := range schemaStatements {
		if _, err := store.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema bootstrap failed: %w", err)
		}
	}
	return nil
}
