package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/charles1614/deepwiki-sub003/internal/server/middleware"
	"github.com/charles1614/deepwiki-sub003/internal/wiki"
)

// UploadFile accepts a multipart form with a single "file" field.
func UploadFile(wikis *wiki.Wikis, uploads *wiki.Uploads) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := wikis.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
			return
		}

		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
			return
		}
		defer f.Close()

		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		principal, _ := middleware.Principal(c)
		up, err := uploads.Put(c.Request.Context(), w, fileHeader.Filename, contentType, f, principal.UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, up)
	}
}

func ListUploads(wikis *wiki.Wikis, uploads *wiki.Uploads) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := wikis.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}

		all, err := uploads.List(c.Request.Context(), w.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"uploads": all})
	}
}

// DownloadUpload streams the stored object.
func DownloadUpload(wikis *wiki.Wikis, uploads *wiki.Uploads) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload id"})
			return
		}

		w, err := wikis.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}

		up, r, err := uploads.Get(c.Request.Context(), w.ID, id)
		if err != nil {
			writeError(c, err)
			return
		}
		defer r.Close()

		c.Header("Content-Disposition", `attachment; filename="`+up.FileName+`"`)
		c.DataFromReader(http.StatusOK, up.SizeBytes, up.ContentType, r, nil)
	}
}

func DeleteUpload(wikis *wiki.Wikis, uploads *wiki.Uploads) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload id"})
			return
		}

		w, err := wikis.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}

		if err := uploads.Delete(c.Request.Context(), w.ID, id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
