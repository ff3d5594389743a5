package wiki

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/charles1614/deepwiki-sub003/internal/checksum"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// Pages manages page heads and their immutable revision history.
//
// A save bumps the head version and writes the matching revision row in a
// single transaction. The Store retries the whole transaction on transient
// failures, so the version/revision pair can never diverge.
type Pages struct {
	store deepwiki.Store
	sums  checksum.Calculator
}

func NewPages(store deepwiki.Store) *Pages {
	return &Pages{store: store, sums: checksum.New()}
}

const pageColumns = `id, wiki_id, slug, title, source, version, updated_by, updated_at`

// Create adds a new page at version 1 together with its first revision.
func (p *Pages) Create(ctx context.Context, wikiID uuid.UUID, slug, title, source string, authorID uuid.UUID) (*deepwiki.Page, error) {
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, fmt.Errorf("page title cannot be empty")
	}

	page := &deepwiki.Page{
		ID:        uuid.New(),
		WikiID:    wikiID,
		Slug:      slug,
		Title:     title,
		Source:    source,
		Version:   1,
		UpdatedBy: authorID,
		UpdatedAt: time.Now().UTC(),
	}

	err := p.store.InTx(ctx, func(ctx context.Context, tx deepwiki.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO pages (id, wiki_id, slug, title, source, version, updated_by, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			page.ID, page.WikiID, page.Slug, page.Title, page.Source, page.Version, page.UpdatedBy, page.UpdatedAt)
		if err != nil {
			return err
		}
		return p.insertRevision(ctx, tx, page)
	})
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("page %s: %w", slug, deepwiki.ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return page, nil
}

func (p *Pages) Get(ctx context.Context, wikiID uuid.UUID, slug string) (*deepwiki.Page, error) {
	var page deepwiki.Page
	err := p.store.QueryRow(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE wiki_id = $1 AND slug = $2`,
		pageDest(&page), wikiID, slug)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func pageDest(page *deepwiki.Page) []any {
	return []any{&page.ID, &page.WikiID, &page.Slug, &page.Title, &page.Source,
		&page.Version, &page.UpdatedBy, &page.UpdatedAt}
}

func (p *Pages) List(ctx context.Context, wikiID uuid.UUID) ([]deepwiki.Page, error) {
	rows, err := p.store.Query(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE wiki_id = $1 ORDER BY slug`, wikiID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []deepwiki.Page
	for rows.Next() {
		var page deepwiki.Page
		if err := rows.Scan(pageDest(&page)...); err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// Save updates a page head. If the normalized checksum of the new content
// matches the current head revision, nothing is written and the current
// page is returned with changed == false. Otherwise the version is bumped
// and a new revision recorded.
//
// A positive baseVersion asserts the version the caller edited; when the
// head has moved past it the save fails with ErrVersionConflict. Zero
// skips the check (last writer wins).
func (p *Pages) Save(ctx context.Context, wikiID uuid.UUID, slug, title, source string, baseVersion int, authorID uuid.UUID) (page *deepwiki.Page, changed bool, err error) {
	if title == "" {
		return nil, false, fmt.Errorf("page title cannot be empty")
	}

	newSum := p.sums.CalculateNormalized([]byte(title + "\n" + source))

	err = p.store.InTx(ctx, func(ctx context.Context, tx deepwiki.Tx) error {
		var current deepwiki.Page
		if err := tx.QueryRow(ctx,
			`SELECT `+pageColumns+` FROM pages WHERE wiki_id = $1 AND slug = $2 FOR UPDATE`,
			pageDest(&current), wikiID, slug); err != nil {
			return err
		}

		if baseVersion > 0 && current.Version != baseVersion {
			return fmt.Errorf("page %q is at version %d, not %d: %w",
				slug, current.Version, baseVersion, deepwiki.ErrVersionConflict)
		}

		var headSum string
		err := tx.QueryRow(ctx,
			`SELECT checksum FROM page_revisions WHERE page_id = $1 AND version = $2`,
			[]any{&headSum}, current.ID, current.Version)
		if err != nil && !errors.Is(err, deepwiki.ErrNotFound) {
			return err
		}

		if headSum == newSum {
			page = &current
			changed = false
			return nil
		}

		current.Title = title
		current.Source = source
		current.Version++
		current.UpdatedBy = authorID
		current.UpdatedAt = time.Now().UTC()

		if _, err := tx.Exec(ctx,
			`UPDATE pages SET title = $2, source = $3, version = $4, updated_by = $5, updated_at = $6
			 WHERE id = $1`,
			current.ID, current.Title, current.Source, current.Version, current.UpdatedBy, current.UpdatedAt); err != nil {
			return err
		}
		if err := p.insertRevision(ctx, tx, &current); err != nil {
			return err
		}

		page = &current
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return page, changed, nil
}

// insertRevision records the page head as an immutable revision row.
func (p *Pages) insertRevision(ctx context.Context, tx deepwiki.Tx, page *deepwiki.Page) error {
	content := []byte(page.Title + "\n" + page.Source)
	_, err := tx.Exec(ctx,
		`INSERT INTO page_revisions (id, page_id, version, title, source, checksum, checksum_raw, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(), page.ID, page.Version, page.Title, page.Source,
		p.sums.CalculateNormalized(content), p.sums.CalculateRaw(content),
		page.UpdatedBy, page.UpdatedAt)
	return err
}

func (p *Pages) Delete(ctx context.Context, wikiID uuid.UUID, slug string) error {
	tag, err := p.store.Exec(ctx,
		`DELETE FROM pages WHERE wiki_id = $1 AND slug = $2`, wikiID, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return deepwiki.ErrNotFound
	}
	return nil
}

const revisionColumns = `id, page_id, version, title, source, checksum, checksum_raw, created_by, created_at`

func revisionDest(rev *deepwiki.Revision) []any {
	return []any{&rev.ID, &rev.PageID, &rev.Version, &rev.Title, &rev.Source,
		&rev.Checksum, &rev.ChecksumRaw, &rev.CreatedBy, &rev.CreatedAt}
}

// Revisions lists a page's history, newest first.
func (p *Pages) Revisions(ctx context.Context, pageID uuid.UUID) ([]deepwiki.Revision, error) {
	rows, err := p.store.Query(ctx,
		`SELECT `+revisionColumns+` FROM page_revisions WHERE page_id = $1 ORDER BY version DESC`, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revs []deepwiki.Revision
	for rows.Next() {
		var rev deepwiki.Revision
		if err := rows.Scan(revisionDest(&rev)...); err != nil {
			return nil, err
		}
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}

func (p *Pages) GetRevision(ctx context.Context, pageID uuid.UUID, version int) (*deepwiki.Revision, error) {
	var rev deepwiki.Revision
	err := p.store.QueryRow(ctx,
		`SELECT `+revisionColumns+` FROM page_revisions WHERE page_id = $1 AND version = $2`,
		revisionDest(&rev), pageID, version)
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

// Restore makes an old revision the new head by saving its content as a new
// version. History is append-only; nothing is rewritten.
func (p *Pages) Restore(ctx context.Context, wikiID uuid.UUID, slug string, version int, authorID uuid.UUID) (*deepwiki.Page, error) {
	current, err := p.Get(ctx, wikiID, slug)
	if err != nil {
		return nil, err
	}

	rev, err := p.GetRevision(ctx, current.ID, version)
	if err != nil {
		return nil, err
	}

	// Restoring against the head we just read aborts if someone edits
	// concurrently, instead of silently clobbering their change.
	page, changed, err := p.Save(ctx, wikiID, slug, rev.Title, rev.Source, current.Version, authorID)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Restoring the current head is a no-op.
		return page, nil
	}
	return page, nil
}
