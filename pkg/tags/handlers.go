package tags

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
	tagService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Tag")
	}

	tag, err := h.tagService.RetrieveTag(ctx, RetrieveTagOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	audiobookCount, err := h.tagService.GetAudiobookCount(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	tag.AudiobookCount = audiobookCount

	return errors.WithStack(c.JSON(http.StatusOK, tag))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListTagsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	tags, total, err := h.tagService.ListTagsWithTotal(ctx, ListTagsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	for _, t := range tags {
		audiobookCount, _ := h.tagService.GetAudiobookCount(ctx, t.ID)
		t.AudiobookCount = audiobookCount
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"tags":  tags,
		"total": total,
	}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateTagPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return errcodes.ValidationError("Tag name cannot be empty")
	}

	// Reject duplicates instead of silently reusing the existing tag.
	if existing, err := h.tagService.RetrieveTag(ctx, RetrieveTagOptions{Name: &name}); err == nil {
		return errcodes.ValidationError("A tag named " + strconv.Quote(existing.Name) + " already exists")
	}

	tag := &models.Tag{Name: name}
	if err := h.tagService.CreateTag(ctx, tag); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, tag))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Tag")
	}

	params := UpdateTagPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	tag, err := h.tagService.RetrieveTag(ctx, RetrieveTagOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	if params.Name == nil || *params.Name == tag.Name {
		// No change, just return current
		audiobookCount, _ := h.tagService.GetAudiobookCount(ctx, id)
		tag.AudiobookCount = audiobookCount
		return errors.WithStack(c.JSON(http.StatusOK, tag))
	}

	newName := strings.TrimSpace(*params.Name)
	if newName == "" {
		return errcodes.ValidationError("Tag name cannot be empty")
	}

	// Renaming onto an existing tag merges the associations into it.
	existing, err := h.tagService.RetrieveTag(ctx, RetrieveTagOptions{Name: &newName})
	if err == nil && existing.ID != id {
		if err := h.tagService.MergeTags(ctx, existing.ID, id); err != nil {
			return errors.WithStack(err)
		}

		audiobookCount, _ := h.tagService.GetAudiobookCount(ctx, existing.ID)
		existing.AudiobookCount = audiobookCount
		return errors.WithStack(c.JSON(http.StatusOK, existing))
	}

	tag.Name = newName
	err = h.tagService.UpdateTag(ctx, tag, UpdateTagOptions{Columns: []string{"name"}})
	if err != nil {
		return errors.WithStack(err)
	}

	audiobookCount, _ := h.tagService.GetAudiobookCount(ctx, id)
	tag.AudiobookCount = audiobookCount

	return errors.WithStack(c.JSON(http.StatusOK, tag))
}

func (h *handler) audiobooks(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Tag")
	}

	if _, err := h.tagService.RetrieveTag(ctx, RetrieveTagOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	audiobooks, err := h.tagService.GetAudiobooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, audiobooks))
}

func (h *handler) deleteTag(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Tag")
	}

	if _, err := h.tagService.RetrieveTag(ctx, RetrieveTagOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	if err := h.tagService.DeleteTag(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
