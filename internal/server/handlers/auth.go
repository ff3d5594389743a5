package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charles1614/deepwiki-sub003/internal/auth"
	"github.com/charles1614/deepwiki-sub003/internal/wiki"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token string         `json:"token"`
	User  *deepwiki.User `json:"user"`
}

// Login authenticates credentials and returns a bearer token.
func Login(users *wiki.Users, tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		user, err := users.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}

		token, err := tokens.Issue(user)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, tokenResponse{Token: token, User: user})
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register creates a viewer account and returns a token for it. Only wired
// when self-registration is enabled in config.
func Register(users *wiki.Users, tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		user, err := users.Create(c.Request.Context(), req.Email, req.Name, req.Password, deepwiki.RoleViewer)
		if err != nil {
			writeError(c, err)
			return
		}

		token, err := tokens.Issue(user)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, tokenResponse{Token: token, User: user})
	}
}
