package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/elibrary/internal/auth"
	"github.com/openshelf/elibrary/internal/catalog"
	"github.com/openshelf/elibrary/internal/database"
	"github.com/openshelf/elibrary/internal/entities"
	"github.com/openshelf/elibrary/internal/search"
)

// RouterConfig carries all router dependencies, keeping NewRouter's
// signature stable as the dependency set grows.
type RouterConfig struct {
	Database *database.Database
	Store    *catalog.Repository
	Searcher *search.Aggregator

	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool

	TemplatesPath string
	StaticPath    string
	Version       string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Resolve the current user once per request; every page below reads it
	// from the gin context.
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.CurrentUser())
	}

	funcMap := template.FuncMap{
		"subtract": func(a, b int) int {
			return a - b
		},
		"add": func(a, b int) int {
			return a + b
		},
	}

	tmpl := template.Must(template.New("").Funcs(funcMap).ParseGlob(cfg.TemplatesPath + "/*.html"))
	router.SetHTMLTemplate(tmpl)

	router.Static("/static", cfg.StaticPath)

	if cfg.AuthService != nil {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager)
		authController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	catalogController := NewCatalogController(cfg.Store, cfg.Searcher)
	userController := NewUserController(cfg.Store)
	adminController := NewAdminController(cfg.Store)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Public catalog routes
	router.GET("/", catalogController.BooksPage)
	router.GET("/book/:id", catalogController.BookPage)
	router.GET("/search", catalogController.SearchPage)
	router.GET("/user/:username", userController.ProfilePage)

	// Shelf routes require a signed-in user
	shelf := router.Group("/book/:id")
	shelf.Use(cfg.AuthMiddleware.RequireAuthenticated())
	shelf.POST("/shelve", catalogController.Shelve)
	shelf.POST("/unshelve", catalogController.Unshelve)

	// Admin routes, gated per permission bit
	admin := router.Group("/admin")
	{
		addBooks := admin.Group("/book")
		addBooks.Use(cfg.AuthMiddleware.RequirePermission(entities.PermissionAddBooks))
		addBooks.GET("/new", adminController.NewBookPage)
		addBooks.POST("/new", adminController.CreateBook)

		moderate := admin.Group("/book/:id")
		moderate.Use(cfg.AuthMiddleware.RequirePermission(entities.PermissionModerateBooks))
		moderate.GET("/edit", adminController.EditBookPage)
		moderate.POST("/edit", adminController.UpdateBook)
		moderate.POST("/delete", adminController.DeleteBook)

		administer := admin.Group("/user/:id")
		administer.Use(cfg.AuthMiddleware.RequirePermission(entities.PermissionAdminister))
		administer.GET("/edit", adminController.EditProfilePage)
		administer.POST("/edit", adminController.UpdateProfile)
	}

	router.NoRoute(renderNotFound)

	return router
}
