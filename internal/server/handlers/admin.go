package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/charles1614/deepwiki-sub003/internal/wiki"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

func ListUsers(users *wiki.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := users.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": all})
	}
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

func CreateUser(users *wiki.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		role := deepwiki.Role(req.Role)
		if !role.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}

		user, err := users.Create(c.Request.Context(), req.Email, req.Name, req.Password, role)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func SetUserRole(users *wiki.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		var req setRoleRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		role := deepwiki.Role(req.Role)
		if !role.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}

		if err := users.SetRole(c.Request.Context(), id, role); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func DeleteUser(users *wiki.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		if err := users.Delete(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func ListSettings(settings *wiki.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := settings.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": all})
	}
}

func GetSetting(settings *wiki.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		setting, err := settings.Get(c.Request.Context(), c.Param("key"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, setting)
	}
}

type putSettingRequest struct {
	Value     string `json:"value" binding:"required"`
	Encrypted bool   `json:"encrypted"`
}

func PutSetting(settings *wiki.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req putSettingRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		setting, err := settings.Put(c.Request.Context(), c.Param("key"), req.Value, req.Encrypted)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, setting)
	}
}

func DeleteSetting(settings *wiki.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := settings.Delete(c.Request.Context(), c.Param("key")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
