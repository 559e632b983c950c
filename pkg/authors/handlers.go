package authors

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rodokubooks/rodoku/pkg/errcodes"
	"github.com/rodokubooks/rodoku/pkg/models"
	"github.com/rodokubooks/rodoku/pkg/sortname"
)

type handler struct {
	authorService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	audiobookCount, err := h.authorService.GetAudiobookCount(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	author.AudiobookCount = audiobookCount

	return errors.WithStack(c.JSON(http.StatusOK, author))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListAuthorsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	authors, total, err := h.authorService.ListAuthorsWithTotal(ctx, ListAuthorsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	for _, a := range authors {
		audiobookCount, _ := h.authorService.GetAudiobookCount(ctx, a.ID)
		a.AudiobookCount = audiobookCount
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"authors": authors,
		"total":   total,
	}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return errcodes.ValidationError("Author name cannot be empty")
	}

	if existing, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{Name: &name}); err == nil {
		return errcodes.ValidationError("An author named " + strconv.Quote(existing.Name) + " already exists")
	}

	author := &models.Author{Name: name}
	if params.SortName != nil {
		author.SortName = strings.TrimSpace(*params.SortName)
	}

	if err := h.authorService.CreateAuthor(ctx, author); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, author))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	params := UpdateAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	columns := make([]string, 0, 2)
	if params.Name != nil && *params.Name != author.Name {
		newName := strings.TrimSpace(*params.Name)
		if newName == "" {
			return errcodes.ValidationError("Author name cannot be empty")
		}
		author.Name = newName
		columns = append(columns, "name")

		// Recompute the sort name unless the caller supplies one.
		if params.SortName == nil {
			author.SortName = sortname.ForPerson(newName)
			columns = append(columns, "sort_name")
		}
	}
	if params.SortName != nil {
		author.SortName = strings.TrimSpace(*params.SortName)
		columns = append(columns, "sort_name")
	}

	err = h.authorService.UpdateAuthor(ctx, author, UpdateAuthorOptions{Columns: columns})
	if err != nil {
		return errors.WithStack(err)
	}

	audiobookCount, _ := h.authorService.GetAudiobookCount(ctx, id)
	author.AudiobookCount = audiobookCount

	return errors.WithStack(c.JSON(http.StatusOK, author))
}

func (h *handler) audiobooks(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	if _, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	audiobooks, err := h.authorService.GetAudiobooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, audiobooks))
}

func (h *handler) deleteAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	if _, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	if err := h.authorService.DeleteAuthor(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
