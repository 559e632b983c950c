package testutils

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rodokubooks/rodoku/pkg/auth"
	"github.com/rodokubooks/rodoku/pkg/models"
	"github.com/uptrace/bun"
)

type handler struct {
	db *bun.DB
}

// createUserRequest is the request body for creating a test user.
type createUserRequest struct {
	Username string  `json:"username" validate:"required"`
	Password string  `json:"password" validate:"required"`
	Email    *string `json:"email"`
}

// createUserResponse is the response body for creating a test user.
type createUserResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// createUser creates an active test user.
// POST /test/users.
func (h *handler) createUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		IsActive:     true,
	}

	_, err = h.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}

	return c.JSON(http.StatusCreated, createUserResponse{ID: user.ID, Username: user.Username})
}

// deleteAllUsers removes every user so the next test can run setup again.
// DELETE /test/users.
func (h *handler) deleteAllUsers(c echo.Context) error {
	ctx := c.Request().Context()

	_, err := h.db.NewDelete().Model((*models.User)(nil)).Where("1 = 1").Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to delete users")
	}

	return c.NoContent(http.StatusNoContent)
}

// createAudiobookRequest seeds an audiobook with a run of chapters.
type createAudiobookRequest struct {
	Title        string `json:"title" validate:"required"`
	ChapterCount int    `json:"chapter_count"`
}

// createAudiobook creates an audiobook plus sequentially numbered chapters.
// POST /test/audiobooks.
func (h *handler) createAudiobook(c echo.Context) error {
	ctx := c.Request().Context()

	var req createAudiobookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title is required")
	}

	audiobook := &models.Audiobook{Title: req.Title}
	err := h.db.RunInTx(ctx, nil, func(txCtx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(audiobook).Exec(txCtx); err != nil {
			return errors.Wrap(err, "failed to create audiobook")
		}
		for i := 1; i <= req.ChapterCount; i++ {
			chapter := &models.Chapter{
				AudiobookID:   audiobook.ID,
				ChapterNumber: i,
				Title:         fmt.Sprintf("Chapter %d", i),
			}
			if _, err := tx.NewInsert().Model(chapter).Exec(txCtx); err != nil {
				return errors.Wrap(err, "failed to create chapter")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, audiobook)
}

// deleteAllCatalogData clears audiobooks, chapters, and taxonomy tables.
// DELETE /test/catalog.
func (h *handler) deleteAllCatalogData(c echo.Context) error {
	ctx := c.Request().Context()

	tables := []string{
		"audiobook_genres",
		"audiobook_tags",
		"audiobook_authors",
		"chapters",
		"audiobooks",
		"genres",
		"tags",
		"authors",
	}
	for _, table := range tables {
		if _, err := h.db.NewDelete().Table(table).Where("1 = 1").Exec(ctx); err != nil {
			return errors.Wrapf(err, "failed to clear table %s", table)
		}
	}

	return c.NoContent(http.StatusNoContent)
}
