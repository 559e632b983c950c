package chapters

import (
	"github.com/labstack/echo/v4"
	"github.com/rodokubooks/rodoku/pkg/audiobooks"
	"github.com/rodokubooks/rodoku/pkg/config"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers chapter routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config) {
	h := &handler{
		chapterService:   NewService(db),
		audiobookService: audiobooks.NewService(db),
		itemsPerPage:     cfg.ItemsPerPage,
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.deleteChapter)
}
