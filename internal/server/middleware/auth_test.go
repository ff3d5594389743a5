package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles1614/deepwiki-sub003/internal/auth"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

func newTestRouter(t *testing.T, required deepwiki.Role) (*gin.Engine, *auth.TokenIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)

	router := gin.New()
	group := router.Group("", Authenticate(tokens))
	if required != "" {
		group.Use(RequireRole(required))
	}
	group.GET("/probe", func(c *gin.Context) {
		principal, ok := Principal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"email": principal.Email})
	})
	return router, tokens
}

func issueToken(t *testing.T, tokens *auth.TokenIssuer, role deepwiki.Role) string {
	t.Helper()
	token, err := tokens.Issue(&deepwiki.User{ID: uuid.New(), Email: "user@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func probe(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	router, tokens := newTestRouter(t, "")
	rec := probe(router, issueToken(t, tokens, deepwiki.RoleViewer))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user@example.com")
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	router, _ := newTestRouter(t, "")
	rec := probe(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	router, _ := newTestRouter(t, "")
	rec := probe(router, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleOrdering(t *testing.T) {
	tests := []struct {
		role     deepwiki.Role
		required deepwiki.Role
		want     int
	}{
		{deepwiki.RoleViewer, deepwiki.RoleEditor, http.StatusForbidden},
		{deepwiki.RoleEditor, deepwiki.RoleEditor, http.StatusOK},
		{deepwiki.RoleAdmin, deepwiki.RoleEditor, http.StatusOK},
		{deepwiki.RoleEditor, deepwiki.RoleAdmin, http.StatusForbidden},
		{deepwiki.RoleAdmin, deepwiki.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		router, tokens := newTestRouter(t, tt.required)
		rec := probe(router, issueToken(t, tokens, tt.role))
		assert.Equal(t, tt.want, rec.Code, "role %s required %s", tt.role, tt.required)
	}
}
