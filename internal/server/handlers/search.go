package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charles1614/deepwiki-sub003/internal/wiki"
)

// SearchPages runs a full-text query. ?q= is the websearch expression;
// ?wiki= optionally scopes to one wiki.
func SearchPages(search *wiki.Search) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
			return
		}

		hits, err := search.Query(c.Request.Context(), query, c.Query("wiki"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	}
}
