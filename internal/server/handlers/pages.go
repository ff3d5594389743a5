package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/charles1614/deepwiki-sub003/internal/markdown"
	"github.com/charles1614/deepwiki-sub003/internal/server/middleware"
	"github.com/charles1614/deepwiki-sub003/internal/wiki"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

type pageRequest struct {
	Title  string `json:"title" binding:"required"`
	Source string `json:"source"`

	// BaseVersion, when positive, asserts the version the client edited;
	// a concurrent save in between yields 409.
	BaseVersion int `json:"base_version,omitempty"`
}

// pageResponse augments the stored page with the rendered view.
type pageResponse struct {
	*deepwiki.Page
	HTML     string              `json:"html,omitempty"`
	Headings []markdown.Heading  `json:"headings,omitempty"`
	TOC      []*markdown.TOCItem `json:"toc,omitempty"`
}

func renderPage(c *gin.Context, renderer *markdown.Renderer, page *deepwiki.Page) (pageResponse, bool) {
	resp := pageResponse{Page: page}
	if c.Query("render") != "html" {
		return resp, true
	}

	html, err := renderer.Render(page.Source)
	if err != nil {
		writeError(c, err)
		return resp, false
	}
	resp.HTML = html
	resp.Headings = markdown.ExtractHeadings(page.Source)
	resp.TOC = markdown.TableOfContents(resp.Headings)
	return resp, true
}

func CreatePage(wikis *wiki.Wikis, pages *wiki.Pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			pageRequest
			Slug string `json:"slug" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		w, err := wikis.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}

		principal, _ := middleware.Principal(c)
		page, err := pages.Create(c.Request.Context(), w.ID, req.Slug, req.Title, req.Source, principal.UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, pageResponse{Page: page})
	}
}

func ListPages(wikis *wiki.Wikis, pages *wiki.Pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := wikis.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}

		all, err := pages.List(c.Request.Context(), w.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"pages": all})
	}
}

func GetPage(wikis *wiki.Wikis, pages *wiki.Pages, renderer *markdown.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := wikis.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}

		page, err := pages.Get(c.Request.Context(), w.ID, c.Param("page"))
		if err != nil {
			writeError(c, err)
			return
		}

		resp, ok := renderPage(c, renderer, page)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// SavePage updates a page head. The response reports whether a new revision
// was created; saving identical content is a no-op.
func SavePage(wikis *wiki.Wikis, pages *wiki.Pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pageRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		w, err := wikis.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}

		principal, _ := middleware.Principal(c)
		page, changed, err := pages.Save(c.Request.Context(), w.ID, c.Param("page"), req.Title, req.Source, req.BaseVersion, principal.UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"page": page, "changed": changed})
	}
}

func DeletePage(wikis *wiki.Wikis, pages *wiki.Pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := wikis.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}

		if err := pages.Delete(c.Request.Context(), w.ID, c.Param("page")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func ListRevisions(wikis *wiki.Wikis, pages *wiki.Pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := wikis.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}

		page, err := pages.Get(c.Request.Context(), w.ID, c.Param("page"))
		if err != nil {
			writeError(c, err)
			return
		}

		revs, err := pages.Revisions(c.Request.Context(), page.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"revisions": revs})
	}
}

func GetRevision(wikis *wiki.Wikis, pages *wiki.Pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		version, err := strconv.Atoi(c.Param("version"))
		if err != nil || version < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version"})
			return
		}

		w, err := wikis.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}

		page, err := pages.Get(c.Request.Context(), w.ID, c.Param("page"))
		if err != nil {
			writeError(c, err)
			return
		}

		rev, err := pages.GetRevision(c.Request.Context(), page.ID, version)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rev)
	}
}

func RestoreRevision(wikis *wiki.Wikis, pages *wiki.Pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		version, err := strconv.Atoi(c.Param("version"))
		if err != nil || version < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version"})
			return
		}

		w, err := wikis.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}

		principal, _ := middleware.Principal(c)
		page, err := pages.Restore(c.Request.Context(), w.ID, c.Param("page"), version, principal.UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}
