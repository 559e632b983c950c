package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rodokubooks/rodoku/pkg/models"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "rodoku_session"
	// CookieMaxAge is how long the cookie is valid.
	CookieMaxAge = 7 * 24 * time.Hour // 7 days
)

type handler struct {
	authService *Service
}

// login handles user login.
func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.Authenticate(ctx, params.Username, params.Password)
	if err != nil {
		return err
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return errors.WithStack(err)
	}

	setSessionCookie(c, token, int(CookieMaxAge.Seconds()))

	return errors.WithStack(c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  user,
	}))
}

// logout clears the session cookie.
func (h *handler) logout(c echo.Context) error {
	setSessionCookie(c, "", -1)
	return c.NoContent(http.StatusNoContent)
}

// me returns the currently authenticated user.
func (h *handler) me(c echo.Context) error {
	user, ok := GetUserFromContext(c)
	if !ok {
		return errors.New("user missing from context")
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

// setupStatus reports whether the first user has been created yet.
func (h *handler) setupStatus(c echo.Context) error {
	ctx := c.Request().Context()

	count, err := h.authService.CountUsers(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"needs_setup": count == 0,
	}))
}

// setup creates the first user. Only allowed while no users exist.
func (h *handler) setup(c echo.Context) error {
	ctx := c.Request().Context()

	params := SetupPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.CreateFirstUser(ctx, params.Username, params.Email, params.Password)
	if err != nil {
		return err
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return errors.WithStack(err)
	}

	setSessionCookie(c, token, int(CookieMaxAge.Seconds()))

	return errors.WithStack(c.JSON(http.StatusCreated, LoginResponse{
		Token: token,
		User:  user,
	}))
}

func setSessionCookie(c echo.Context, token string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoginResponse is returned from login and setup.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}
