package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/rodokubooks/rodoku/pkg/audiobooks"
	"github.com/rodokubooks/rodoku/pkg/auth"
	"github.com/rodokubooks/rodoku/pkg/authors"
	"github.com/rodokubooks/rodoku/pkg/binder"
	"github.com/rodokubooks/rodoku/pkg/chapters"
	"github.com/rodokubooks/rodoku/pkg/config"
	"github.com/rodokubooks/rodoku/pkg/errcodes"
	"github.com/rodokubooks/rodoku/pkg/genres"
	"github.com/rodokubooks/rodoku/pkg/tags"
	"github.com/rodokubooks/rodoku/pkg/testutils"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	// Register auth routes and get the auth service
	authService := auth.RegisterRoutes(e, db, cfg.JWTSecret)
	authMiddleware := auth.NewMiddleware(authService)

	registerProtectedRoutes(e, db, cfg, authMiddleware)

	if cfg.Environment == "test" {
		testutils.RegisterRoutes(e, db)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

// registerProtectedRoutes registers all catalog API routes behind authentication.
func registerProtectedRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config, authMiddleware *auth.Middleware) {
	// Audiobooks routes
	audiobooksGroup := e.Group("/audiobooks")
	audiobooksGroup.Use(authMiddleware.Authenticate)
	audiobooks.RegisterRoutesWithGroup(audiobooksGroup, db)

	// Chapters routes. The reorder controller persists through these.
	chaptersGroup := e.Group("/chapters")
	chaptersGroup.Use(authMiddleware.Authenticate)
	chapters.RegisterRoutesWithGroup(chaptersGroup, db, cfg)

	// Genres routes
	genresGroup := e.Group("/genres")
	genresGroup.Use(authMiddleware.Authenticate)
	genres.RegisterRoutesWithGroup(genresGroup, db)

	// Tags routes
	tagsGroup := e.Group("/tags")
	tagsGroup.Use(authMiddleware.Authenticate)
	tags.RegisterRoutesWithGroup(tagsGroup, db)

	// Authors routes
	authorsGroup := e.Group("/authors")
	authorsGroup.Use(authMiddleware.Authenticate)
	authors.RegisterRoutesWithGroup(authorsGroup, db)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
