package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers auth routes and returns the auth service so the
// server can build middleware from it.
func RegisterRoutes(e *echo.Echo, db *bun.DB, jwtSecret string) *Service {
	authService := NewService(db, jwtSecret)
	h := &handler{authService: authService}

	m := NewMiddleware(authService)

	e.POST("/auth/login", h.login)
	e.POST("/auth/logout", h.logout)
	e.GET("/auth/me", h.me, m.Authenticate)
	e.GET("/auth/setup", h.setupStatus)
	e.POST("/auth/setup", h.setup)

	return authService
}
