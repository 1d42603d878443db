package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/elibrary/internal/auth"
	"github.com/openshelf/elibrary/internal/catalog"
	"github.com/openshelf/elibrary/internal/config"
	"github.com/openshelf/elibrary/internal/database"
	http_controllers "github.com/openshelf/elibrary/internal/http"
	"github.com/openshelf/elibrary/internal/search"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown: wait for SIGINT/SIGTERM, then drain within the
	// configured timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the reindex scheduler)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting elibrary v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	store := catalog.NewRepository(db.DB, catalog.Config{
		PerPage:         cfg.Library.BooksPerPage,
		ErrorOutOfRange: cfg.Library.PaginateErrorOut,
	})

	// Seed the role table on every start; the upsert keeps permission
	// bitmasks in line with the current definitions.
	if err := store.InsertDefaultRoles(); err != nil {
		log.Fatalf("Failed to insert default roles: %v", err)
	}

	sqlDB, err := db.SQLDB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB: %v", err)
	}

	// Build the full-text index from a catalog snapshot. The index serves
	// queries as of its last build; the scheduler below refreshes it.
	snapshot := func() (search.Snapshot, error) {
		return catalogSnapshot(store)
	}

	snap, err := snapshot()
	if err != nil {
		log.Fatalf("Failed to snapshot catalog for indexing: %v", err)
	}
	index, err := search.BuildIndex(sqlDB, snap)
	if err != nil {
		log.Fatalf("Failed to build search index: %v", err)
	}
	searcher := search.NewAggregator(index, store, cfg.Library.MaxSearchResults)

	reindexer := search.NewReindexer(sqlDB, snapshot)
	if cfg.Reindex.Enabled {
		if err := reindexer.Start(cfg.Reindex.Schedule); err != nil {
			log.Fatalf("Failed to start reindex scheduler: %v", err)
		}
		log.Printf("Reindex scheduler started (%s)", cfg.Reindex.Schedule)
	}

	// Authentication is always on; only the cookie policy is configurable.
	authService := auth.NewService(db.DB, store, cfg.Auth, cfg.Library.AdminEmail)

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(store, sessionManager)

	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Store:          store,
		Searcher:       searcher,
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		reindexer.Stop()
	}

	Serve(router, cfg, onShutdown)
}

// catalogSnapshot adapts the catalog store into the index's input shape.
func catalogSnapshot(store *catalog.Repository) (search.Snapshot, error) {
	books, err := store.ListAllBooks()
	if err != nil {
		return search.Snapshot{}, fmt.Errorf("listing books: %w", err)
	}
	authors, err := store.ListAuthors()
	if err != nil {
		return search.Snapshot{}, fmt.Errorf("listing authors: %w", err)
	}

	snap := search.Snapshot{
		Books:   make([]search.IndexEntry, 0, len(books)),
		Authors: make([]search.IndexEntry, 0, len(authors)),
	}
	for _, b := range books {
		snap.Books = append(snap.Books, search.IndexEntry{ID: b.ID, Name: b.Name})
	}
	for _, a := range authors {
		snap.Authors = append(snap.Authors, search.IndexEntry{ID: a.ID, Name: a.Name})
	}
	return snap, nil
}
