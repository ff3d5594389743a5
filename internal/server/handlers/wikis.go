package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charles1614/deepwiki-sub003/internal/server/middleware"
	"github.com/charles1614/deepwiki-sub003/internal/wiki"
)

type createWikiRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func CreateWiki(wikis *wiki.Wikis) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createWikiRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		principal, _ := middleware.Principal(c)
		created, err := wikis.Create(c.Request.Context(), req.Slug, req.Title, req.Description, principal.UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func ListWikis(wikis *wiki.Wikis) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := wikis.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wikis": all})
	}
}

func GetWiki(wikis *wiki.Wikis) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := wikis.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, w)
	}
}

type updateWikiRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func UpdateWiki(wikis *wiki.Wikis) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateWikiRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updated, err := wikis.Update(c.Request.Context(), c.Param("slug"), req.Title, req.Description)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteWiki(wikis *wiki.Wikis) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := wikis.Delete(c.Request.Context(), c.Param("slug")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
