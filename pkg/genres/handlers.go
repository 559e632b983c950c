package genres

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rodokubooks/rodoku/pkg/errcodes"
	"github.com/rodokubooks/rodoku/pkg/models"
)

type handler struct {
	genreService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	audiobookCount, err := h.genreService.GetAudiobookCount(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	genre.AudiobookCount = audiobookCount

	return errors.WithStack(c.JSON(http.StatusOK, genre))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListGenresQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	genres, total, err := h.genreService.ListGenresWithTotal(ctx, ListGenresOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	for _, g := range genres {
		audiobookCount, _ := h.genreService.GetAudiobookCount(ctx, g.ID)
		g.AudiobookCount = audiobookCount
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"genres": genres,
		"total":  total,
	}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateGenrePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return errcodes.ValidationError("Genre name cannot be empty")
	}

	// Reject duplicates instead of silently reusing the existing genre.
	if existing, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{Name: &name}); err == nil {
		return errcodes.ValidationError("A genre named " + strconv.Quote(existing.Name) + " already exists")
	}

	genre := &models.Genre{Name: name}
	if err := h.genreService.CreateGenre(ctx, genre); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, genre))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	params := UpdateGenrePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	if params.Name == nil || *params.Name == genre.Name {
		// No change, just return current
		audiobookCount, _ := h.genreService.GetAudiobookCount(ctx, id)
		genre.AudiobookCount = audiobookCount
		return errors.WithStack(c.JSON(http.StatusOK, genre))
	}

	newName := strings.TrimSpace(*params.Name)
	if newName == "" {
		return errcodes.ValidationError("Genre name cannot be empty")
	}

	// Renaming onto an existing genre merges the associations into it.
	existing, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{Name: &newName})
	if err == nil && existing.ID != id {
		if err := h.genreService.MergeGenres(ctx, existing.ID, id); err != nil {
			return errors.WithStack(err)
		}

		audiobookCount, _ := h.genreService.GetAudiobookCount(ctx, existing.ID)
		existing.AudiobookCount = audiobookCount
		return errors.WithStack(c.JSON(http.StatusOK, existing))
	}

	genre.Name = newName
	err = h.genreService.UpdateGenre(ctx, genre, UpdateGenreOptions{Columns: []string{"name"}})
	if err != nil {
		return errors.WithStack(err)
	}

	audiobookCount, _ := h.genreService.GetAudiobookCount(ctx, id)
	genre.AudiobookCount = audiobookCount

	return errors.WithStack(c.JSON(http.StatusOK, genre))
}

func (h *handler) audiobooks(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	if _, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	audiobooks, err := h.genreService.GetAudiobooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, audiobooks))
}

func (h *handler) deleteGenre(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	if _, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	if err := h.genreService.DeleteGenre(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
