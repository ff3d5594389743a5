// Package routes wires the HTTP surface onto a gin engine.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/charles1614/deepwiki-sub003/internal/auth"
	"github.com/charles1614/deepwiki-sub003/internal/markdown"
	"github.com/charles1614/deepwiki-sub003/internal/metrics"
	"github.com/charles1614/deepwiki-sub003/internal/server/handlers"
	"github.com/charles1614/deepwiki-sub003/internal/server/middleware"
	"github.com/charles1614/deepwiki-sub003/internal/wiki"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// Deps carries everything the routes need, built once by the composition
// root and passed explicitly.
type Deps struct {
	Users    *wiki.Users
	Wikis    *wiki.Wikis
	Pages    *wiki.Pages
	Settings *wiki.Settings
	Uploads  *wiki.Uploads
	Search   *wiki.Search
	Tokens   *auth.TokenIssuer
	Renderer *markdown.Renderer
	Metrics  *metrics.Metrics

	// AllowRegistration enables the public /v1/auth/register endpoint.
	AllowRegistration bool
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	router.Use(middleware.Observe(deps.Metrics))

	router.GET("/healthz", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	v1 := router.Group("/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login(deps.Users, deps.Tokens))
		if deps.AllowRegistration {
			authGroup.POST("/register", handlers.Register(deps.Users, deps.Tokens))
		}
	}

	authed := v1.Group("")
	authed.Use(middleware.Authenticate(deps.Tokens))
	{
		// Reading requires any valid account.
		authed.GET("/wikis", handlers.ListWikis(deps.Wikis))
		authed.GET("/wikis/:slug", handlers.GetWiki(deps.Wikis))
		authed.GET("/wikis/:slug/pages", handlers.ListPages(deps.Wikis, deps.Pages))
		authed.GET("/wikis/:slug/pages/:page", handlers.GetPage(deps.Wikis, deps.Pages, deps.Renderer))
		authed.GET("/wikis/:slug/pages/:page/revisions", handlers.ListRevisions(deps.Wikis, deps.Pages))
		authed.GET("/wikis/:slug/pages/:page/revisions/:version", handlers.GetRevision(deps.Wikis, deps.Pages))
		authed.GET("/wikis/:slug/uploads", handlers.ListUploads(deps.Wikis, deps.Uploads))
		authed.GET("/wikis/:slug/uploads/:id", handlers.DownloadUpload(deps.Wikis, deps.Uploads))
		authed.GET("/search", handlers.SearchPages(deps.Search))

		// Writing requires at least editor.
		editors := authed.Group("")
		editors.Use(middleware.RequireRole(deepwiki.RoleEditor))
		{
			editors.POST("/wikis", handlers.CreateWiki(deps.Wikis))
			editors.PUT("/wikis/:slug", handlers.UpdateWiki(deps.Wikis))
			editors.POST("/wikis/:slug/pages", handlers.CreatePage(deps.Wikis, deps.Pages))
			editors.PUT("/wikis/:slug/pages/:page", handlers.SavePage(deps.Wikis, deps.Pages))
			editors.DELETE("/wikis/:slug/pages/:page", handlers.DeletePage(deps.Wikis, deps.Pages))
			editors.POST("/wikis/:slug/pages/:page/revisions/:version/restore", handlers.RestoreRevision(deps.Wikis, deps.Pages))
			editors.POST("/wikis/:slug/uploads", handlers.UploadFile(deps.Wikis, deps.Uploads))
			editors.DELETE("/wikis/:slug/uploads/:id", handlers.DeleteUpload(deps.Wikis, deps.Uploads))
		}

		// Destructive and administrative surfaces are admin-only.
		admin := authed.Group("/admin")
		admin.Use(middleware.RequireRole(deepwiki.RoleAdmin))
		{
			admin.GET("/users", handlers.ListUsers(deps.Users))
			admin.POST("/users", handlers.CreateUser(deps.Users))
			admin.PUT("/users/:id/role", handlers.SetUserRole(deps.Users))
			admin.DELETE("/users/:id", handlers.DeleteUser(deps.Users))
			admin.GET("/settings", handlers.ListSettings(deps.Settings))
			admin.GET("/settings/:key", handlers.GetSetting(deps.Settings))
			admin.PUT("/settings/:key", handlers.PutSetting(deps.Settings))
			admin.DELETE("/settings/:key", handlers.DeleteSetting(deps.Settings))
		}

		adminOnly := authed.Group("")
		adminOnly.Use(middleware.RequireRole(deepwiki.RoleAdmin))
		{
			adminOnly.DELETE("/wikis/:slug", handlers.DeleteWiki(deps.Wikis))
		}
	}
}
