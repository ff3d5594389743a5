package wiki

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// Wikis manages wiki containers.
type Wikis struct {
	store deepwiki.Store
}

func NewWikis(store deepwiki.Store) *Wikis {
	return &Wikis{store: store}
}

const wikiColumns = `id, slug, title, description, owner_id, created_at`

// Create registers a new wiki under a unique slug.
func (w *Wikis) Create(ctx context.Context, slug, title, description string, ownerID uuid.UUID) (*deepwiki.Wiki, error) {
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, fmt.Errorf("wiki title cannot be empty")
	}

	wiki := &deepwiki.Wiki{
		ID:          uuid.New(),
		Slug:        slug,
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := w.store.Exec(ctx,
		`INSERT INTO wikis (id, slug, title, description, owner_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		wiki.ID, wiki.Slug, wiki.Title, wiki.Description, wiki.OwnerID, wiki.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("wiki %s: %w", slug, deepwiki.ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create wiki: %w", err)
	}
	return wiki, nil
}

func (w *Wikis) GetBySlug(ctx context.Context, slug string) (*deepwiki.Wiki, error) {
	var wiki deepwiki.Wiki
	err := w.store.QueryRow(ctx,
		`SELECT `+wikiColumns+` FROM wikis WHERE slug = $1`,
		[]any{&wiki.ID, &wiki.Slug, &wiki.Title, &wiki.Description, &wiki.OwnerID, &wiki.CreatedAt},
		slug)
	if err != nil {
		return nil, err
	}
	return &wiki, nil
}

func (w *Wikis) List(ctx context.Context) ([]deepwiki.Wiki, error) {
	rows, err := w.store.Query(ctx,
		`SELECT `+wikiColumns+` FROM wikis ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wikis []deepwiki.Wiki
	for rows.Next() {
		var wiki deepwiki.Wiki
		if err := rows.Scan(&wiki.ID, &wiki.Slug, &wiki.Title, &wiki.Description, &wiki.OwnerID, &wiki.CreatedAt); err != nil {
			return nil, err
		}
		wikis = append(wikis, wiki)
	}
	return wikis, rows.Err()
}

// Update changes title and description. The slug is immutable; links into a
// wiki must not break.
func (w *Wikis) Update(ctx context.Context, slug, title, description string) (*deepwiki.Wiki, error) {
	if title == "" {
		return nil, fmt.Errorf("wiki title cannot be empty")
	}
	tag, err := w.store.Exec(ctx,
		`UPDATE wikis SET title = $2, description = $3 WHERE slug = $1`,
		slug, title, description)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, deepwiki.ErrNotFound
	}
	return w.GetBySlug(ctx, slug)
}

// Delete removes a wiki and, via cascading constraints, its pages,
// revisions, and upload records.
func (w *Wikis) Delete(ctx context.Context, slug string) error {
	tag, err := w.store.Exec(ctx, `DELETE FROM wikis WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return deepwiki.ErrNotFound
	}
	return nil
}

// validateSlug enforces lowercase url-safe slugs: letters, digits, hyphens.
func validateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	for _, r := range slug {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
		if !ok {
			return fmt.Errorf("invalid slug %q: only lowercase letters, digits, and hyphens are allowed", slug)
		}
	}
	if slug[0] == '-' || slug[len(slug)-1] == '-' {
		return fmt.Errorf("invalid slug %q: cannot start or end with a hyphen", slug)
	}
	return nil
}
