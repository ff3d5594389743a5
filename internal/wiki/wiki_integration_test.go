package wiki_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles1614/deepwiki-sub003/internal/crypto"
	"github.com/charles1614/deepwiki-sub003/internal/storage"
	"github.com/charles1614/deepwiki-sub003/internal/testinfra"
	"github.com/charles1614/deepwiki-sub003/internal/wiki"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

func TestWikiIntegration(t *testing.T) {
	store := testinfra.NewTestStore(t)
	ctx := context.Background()

	users := wiki.NewUsers(store)
	wikis := wiki.NewWikis(store)
	pages := wiki.NewPages(store)

	admin, err := users.Create(ctx, "Admin@Example.com", "Admin", "correct horse battery", deepwiki.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", admin.Email)

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := users.Create(ctx, "admin@example.com", "Other", "password123", deepwiki.RoleViewer)
		assert.ErrorIs(t, err, deepwiki.ErrAlreadyExists)
	})

	t.Run("authenticate", func(t *testing.T) {
		got, err := users.Authenticate(ctx, "admin@example.com", "correct horse battery")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, got.ID)

		_, err = users.Authenticate(ctx, "admin@example.com", "wrong")
		assert.ErrorIs(t, err, deepwiki.ErrUnauthorized)

		_, err = users.Authenticate(ctx, "nobody@example.com", "whatever")
		assert.ErrorIs(t, err, deepwiki.ErrUnauthorized)
	})

	t.Run("role change and delete", func(t *testing.T) {
		viewer, err := users.Create(ctx, "viewer@example.com", "Viewer", "password123", deepwiki.RoleViewer)
		require.NoError(t, err)

		require.NoError(t, users.SetRole(ctx, viewer.ID, deepwiki.RoleEditor))
		got, err := users.GetByID(ctx, viewer.ID)
		require.NoError(t, err)
		assert.Equal(t, deepwiki.RoleEditor, got.Role)

		require.NoError(t, users.Delete(ctx, viewer.ID))
		_, err = users.GetByID(ctx, viewer.ID)
		assert.ErrorIs(t, err, deepwiki.ErrNotFound)
	})

	w, err := wikis.Create(ctx, "handbook", "Engineering Handbook", "How we work", admin.ID)
	require.NoError(t, err)

	t.Run("wiki slug rules", func(t *testing.T) {
		_, err := wikis.Create(ctx, "Bad Slug", "x", "", admin.ID)
		assert.Error(t, err)
		_, err = wikis.Create(ctx, "handbook", "Duplicate", "", admin.ID)
		assert.ErrorIs(t, err, deepwiki.ErrAlreadyExists)
	})

	t.Run("wiki update and list", func(t *testing.T) {
		updated, err := wikis.Update(ctx, "handbook", "Handbook", "v2")
		require.NoError(t, err)
		assert.Equal(t, "Handbook", updated.Title)

		all, err := wikis.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
	})

	page, err := pages.Create(ctx, w.ID, "onboarding", "Onboarding", "# Welcome\n\nStart here.", admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Version)

	t.Run("save bumps version and records revision", func(t *testing.T) {
		saved, changed, err := pages.Save(ctx, w.ID, "onboarding", "Onboarding", "# Welcome\n\nStart here. Then read on.", 0, admin.ID)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 2, saved.Version)

		revs, err := pages.Revisions(ctx, page.ID)
		require.NoError(t, err)
		require.Len(t, revs, 2)
		assert.Equal(t, 2, revs[0].Version)
		assert.Equal(t, 1, revs[1].Version)
	})

	t.Run("identical content does not create a revision", func(t *testing.T) {
		// Same content modulo case and whitespace: normalized checksums match.
		saved, changed, err := pages.Save(ctx, w.ID, "onboarding", "Onboarding", "# welcome\n\nstart here.  then read on.", 0, admin.ID)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, 2, saved.Version)

		revs, err := pages.Revisions(ctx, page.ID)
		require.NoError(t, err)
		assert.Len(t, revs, 2)
	})

	t.Run("stale base version is rejected", func(t *testing.T) {
		draft, err := pages.Create(ctx, w.ID, "faq", "FAQ", "# Q1", admin.ID)
		require.NoError(t, err)
		require.Equal(t, 1, draft.Version)

		// First editor wins and moves the head to version 2.
		_, changed, err := pages.Save(ctx, w.ID, "faq", "FAQ", "# Q1\n\nA1", 1, admin.ID)
		require.NoError(t, err)
		assert.True(t, changed)

		// Second editor still holds version 1: conflict, head untouched.
		_, _, err = pages.Save(ctx, w.ID, "faq", "FAQ", "# Divergent", 1, admin.ID)
		require.ErrorIs(t, err, deepwiki.ErrVersionConflict)

		head, err := pages.Get(ctx, w.ID, "faq")
		require.NoError(t, err)
		assert.Equal(t, 2, head.Version)
		assert.Equal(t, "# Q1\n\nA1", head.Source)

		require.NoError(t, pages.Delete(ctx, w.ID, "faq"))
	})

	t.Run("restore writes a new head revision", func(t *testing.T) {
		restored, err := pages.Restore(ctx, w.ID, "onboarding", 1, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, restored.Version)
		assert.Equal(t, "# Welcome\n\nStart here.", restored.Source)

		revs, err := pages.Revisions(ctx, page.ID)
		require.NoError(t, err)
		assert.Len(t, revs, 3)

		rev1, err := pages.GetRevision(ctx, page.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, "# Welcome\n\nStart here.", rev1.Source)
	})

	t.Run("search finds pages", func(t *testing.T) {
		search := wiki.NewSearch(store)

		hits, err := search.Query(ctx, "welcome", "")
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, "handbook", hits[0].WikiSlug)
		assert.Equal(t, "onboarding", hits[0].PageSlug)
		assert.NotEmpty(t, hits[0].Snippet)

		hits, err = search.Query(ctx, "welcome", "other-wiki")
		require.NoError(t, err)
		assert.Empty(t, hits)

		hits, err = search.Query(ctx, "   ", "")
		require.NoError(t, err)
		assert.Nil(t, hits)
	})

	t.Run("settings round trip with encryption", func(t *testing.T) {
		enc, err := crypto.New(make([]byte, crypto.KeySize))
		require.NoError(t, err)
		settings := wiki.NewSettings(store, enc)

		_, err = settings.Put(ctx, "site.title", "DeepWiki", false)
		require.NoError(t, err)
		_, err = settings.Put(ctx, "github.token", "ghp_secret", true)
		require.NoError(t, err)

		got, err := settings.Get(ctx, "github.token")
		require.NoError(t, err)
		assert.Equal(t, "ghp_secret", got.Value)
		assert.True(t, got.Encrypted)

		all, err := settings.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		for _, s := range all {
			if s.Encrypted {
				assert.Equal(t, "********", s.Value)
			}
		}

		require.NoError(t, settings.Delete(ctx, "site.title"))
		_, err = settings.Get(ctx, "site.title")
		assert.ErrorIs(t, err, deepwiki.ErrNotFound)
	})

	t.Run("uploads", func(t *testing.T) {
		objects := storage.NewMemoryStore()
		uploads := wiki.NewUploads(store, objects)

		up, err := uploads.Put(ctx, w, "diagram.png", "image/png", strings.NewReader("png bytes"), admin.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(9), up.SizeBytes)
		assert.True(t, strings.HasPrefix(up.ObjectKey, "handbook/"))

		got, r, err := uploads.Get(ctx, w.ID, up.ID)
		require.NoError(t, err)
		defer r.Close()
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "png bytes", string(data))
		assert.Equal(t, up.Checksum, got.Checksum)

		list, err := uploads.List(ctx, w.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, uploads.Delete(ctx, w.ID, up.ID))
		_, _, err = uploads.Get(ctx, w.ID, up.ID)
		assert.ErrorIs(t, err, deepwiki.ErrNotFound)
	})

	t.Run("page delete cascades revisions", func(t *testing.T) {
		require.NoError(t, pages.Delete(ctx, w.ID, "onboarding"))
		_, err := pages.Get(ctx, w.ID, "onboarding")
		assert.ErrorIs(t, err, deepwiki.ErrNotFound)

		revs, err := pages.Revisions(ctx, page.ID)
		require.NoError(t, err)
		assert.Empty(t, revs)
	})
}
