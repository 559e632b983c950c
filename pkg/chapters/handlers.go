package chapters

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rodokubooks/rodoku/pkg/audiobooks"
	"github.com/rodokubooks/rodoku/pkg/errcodes"
	"github.com/rodokubooks/rodoku/pkg/models"
)

type handler struct {
	chapterService   *Service
	audiobookService *audiobooks.Service
	itemsPerPage     int
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListChaptersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Verify the audiobook exists so an unknown id is a 404, not an empty page.
	_, err := h.audiobookService.RetrieveAudiobook(ctx, audiobooks.RetrieveAudiobookOptions{ID: &params.AudiobookID})
	if err != nil {
		return errors.WithStack(err)
	}

	chapters, total, err := h.chapterService.ListChaptersPage(ctx, ListChaptersOptions{
		AudiobookID:  params.AudiobookID,
		Page:         params.Page,
		ItemsPerPage: h.itemsPerPage,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	totalPages := (total + h.itemsPerPage - 1) / h.itemsPerPage

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"chapters":       chapters,
		"page":           params.Page,
		"total_pages":    totalPages,
		"items_per_page": h.itemsPerPage,
		"total":          total,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Chapter")
	}

	chapter, err := h.chapterService.RetrieveChapter(ctx, RetrieveChapterOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, chapter))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateChapterPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Verify the audiobook exists.
	_, err := h.audiobookService.RetrieveAudiobook(ctx, audiobooks.RetrieveAudiobookOptions{ID: &params.AudiobookID})
	if err != nil {
		return errors.WithStack(err)
	}

	chapter := &models.Chapter{
		AudiobookID:     params.AudiobookID,
		Title:           params.Title,
		Description:     params.Description,
		DurationSeconds: params.DurationSeconds,
		AudioURL:        params.AudioURL,
	}
	if params.ChapterNumber != nil {
		chapter.ChapterNumber = *params.ChapterNumber
	}

	if err := h.chapterService.CreateChapter(ctx, chapter); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, chapter))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Chapter")
	}

	params := UpdateChapterPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	chapter, err := h.chapterService.RetrieveChapter(ctx, RetrieveChapterOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	columns := make([]string, 0, 5)
	if params.Title != nil {
		chapter.Title = *params.Title
		columns = append(columns, "title")
	}
	if params.Description != nil {
		chapter.Description = params.Description
		columns = append(columns, "description")
	}
	if params.DurationSeconds != nil {
		chapter.DurationSeconds = params.DurationSeconds
		columns = append(columns, "duration_seconds")
	}
	if params.AudioURL != nil {
		chapter.AudioURL = params.AudioURL
		columns = append(columns, "audio_url")
	}
	if params.ChapterNumber != nil {
		// The reorder write path: a body of just {chapter_number}.
		chapter.ChapterNumber = *params.ChapterNumber
		columns = append(columns, "chapter_number")
	}

	if err := h.chapterService.UpdateChapter(ctx, chapter, UpdateChapterOptions{Columns: columns}); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, chapter))
}

func (h *handler) deleteChapter(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Chapter")
	}

	if err := h.chapterService.DeleteChapter(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
