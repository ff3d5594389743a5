package wiki

import (
	"context"
	"strings"

	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// Search runs full-text queries over page titles and sources using
// Postgres websearch syntax ("foo -bar", quoted phrases).
type Search struct {
	store deepwiki.Store
	limit int
}

func NewSearch(store deepwiki.Store) *Search {
	return &Search{store: store, limit: deepwiki.DefaultSearchLimit}
}

const searchSQL = `
	SELECT w.slug, p.slug, p.title,
	       ts_headline('english', p.source, q, 'MaxWords=25, MinWords=10') AS snippet,
	       ts_rank(to_tsvector('english', p.title || ' ' || p.source), q) AS rank
	FROM pages p
	JOIN wikis w ON w.id = p.wiki_id,
	     websearch_to_tsquery('english', $1) q
	WHERE to_tsvector('english', p.title || ' ' || p.source) @@ q
	  AND ($2 = '' OR w.slug = $2)
	ORDER BY rank DESC, w.slug, p.slug
	LIMIT $3`

// Query searches all wikis; wikiSlug, when non-empty, scopes the search to
// one wiki.
func (s *Search) Query(ctx context.Context, query, wikiSlug string) ([]deepwiki.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	rows, err := s.store.Query(ctx, searchSQL, query, wikiSlug, s.limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []deepwiki.SearchHit
	for rows.Next() {
		var hit deepwiki.SearchHit
		if err := rows.Scan(&hit.WikiSlug, &hit.PageSlug, &hit.Title, &hit.Snippet, &hit.Rank); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}
