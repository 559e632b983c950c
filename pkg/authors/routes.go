package authors

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers author routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{authorService: NewService(db)}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.GET("/:id/audiobooks", h.audiobooks)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.deleteAuthor)
}
