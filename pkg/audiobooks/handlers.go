package audiobooks

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rodokubooks/rodoku/pkg/errcodes"
	"github.com/rodokubooks/rodoku/pkg/models"
)

type handler struct {
	audiobookService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListAudiobooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	audiobooks, total, err := h.audiobookService.ListAudiobooksWithTotal(ctx, ListAudiobooksOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"audiobooks": audiobooks,
		"total":      total,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Audiobook")
	}

	audiobook, err := h.audiobookService.RetrieveAudiobook(ctx, RetrieveAudiobookOptions{
		ID:               &id,
		IncludeRelations: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, audiobook))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateAudiobookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	audiobook := &models.Audiobook{
		Title:           params.Title,
		Description:     params.Description,
		Narrator:        params.Narrator,
		DurationSeconds: params.DurationSeconds,
		CoverURL:        params.CoverURL,
	}
	if params.PublishedAt != nil && *params.PublishedAt != "" {
		publishedAt, err := time.Parse("2006-01-02", *params.PublishedAt)
		if err != nil {
			return errcodes.ValidationError(`"published_at" should be in the format of YYYY-MM-DD`)
		}
		audiobook.PublishedAt = &publishedAt
	}

	err := h.audiobookService.CreateAudiobook(ctx, audiobook, CreateAudiobookOptions{
		GenreIDs:  params.GenreIDs,
		TagIDs:    params.TagIDs,
		AuthorIDs: params.AuthorIDs,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	created, err := h.audiobookService.RetrieveAudiobook(ctx, RetrieveAudiobookOptions{
		ID:               &audiobook.ID,
		IncludeRelations: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, created))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Audiobook")
	}

	params := UpdateAudiobookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	audiobook, err := h.audiobookService.RetrieveAudiobook(ctx, RetrieveAudiobookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	columns := make([]string, 0, 6)
	if params.Title != nil {
		audiobook.Title = *params.Title
		columns = append(columns, "title")
	}
	if params.Description != nil {
		audiobook.Description = params.Description
		columns = append(columns, "description")
	}
	if params.Narrator != nil {
		audiobook.Narrator = params.Narrator
		columns = append(columns, "narrator")
	}
	if params.DurationSeconds != nil {
		audiobook.DurationSeconds = params.DurationSeconds
		columns = append(columns, "duration_seconds")
	}
	if params.CoverURL != nil {
		audiobook.CoverURL = params.CoverURL
		columns = append(columns, "cover_url")
	}
	if params.PublishedAt != nil {
		if *params.PublishedAt == "" {
			audiobook.PublishedAt = nil
		} else {
			publishedAt, err := time.Parse("2006-01-02", *params.PublishedAt)
			if err != nil {
				return errcodes.ValidationError(`"published_at" should be in the format of YYYY-MM-DD`)
			}
			audiobook.PublishedAt = &publishedAt
		}
		columns = append(columns, "published_at")
	}

	err = h.audiobookService.UpdateAudiobook(ctx, audiobook, UpdateAudiobookOptions{
		Columns:   columns,
		GenreIDs:  params.GenreIDs,
		TagIDs:    params.TagIDs,
		AuthorIDs: params.AuthorIDs,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	updated, err := h.audiobookService.RetrieveAudiobook(ctx, RetrieveAudiobookOptions{
		ID:               &id,
		IncludeRelations: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, updated))
}

func (h *handler) deleteAudiobook(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Audiobook")
	}

	if err := h.audiobookService.DeleteAudiobook(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
