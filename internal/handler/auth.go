package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinetick/internal/config"
	"github.com/iliyamo/cinetick/internal/middleware"
	"github.com/iliyamo/cinetick/internal/model"
	"github.com/iliyamo/cinetick/internal/repository"
	"github.com/iliyamo/cinetick/internal/session"
	"github.com/iliyamo/cinetick/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *session.Provider
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *session.Provider) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s}
}

// ----- DTOs -----

type registerReq struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResp struct {
	User   model.User        `json:"user"`
	Access utils.AccessToken `json:"access"`
}

// Register creates a client account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	resp, err := h.signIn(ctx, u)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and opens a session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Login(ctx, req.Email, req.Password)
	if err != nil {
		logrus.WithField("email", req.Email).Info("login rejected")
		return writeError(c, err)
	}
	resp, err := h.signIn(ctx, u)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) signIn(ctx context.Context, u model.User) (authResp, error) {
	s, err := h.Sessions.Begin(ctx, u)
	if err != nil {
		return authResp{}, err
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, s.ID, h.Cfg.AccessTTL())
	if err != nil {
		return authResp{}, err
	}
	return authResp{User: u, Access: access}, nil
}

// Logout ends the session.  The access token stops working immediately
// because its session record is gone.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.Sessions.End(c.Request().Context(), middleware.CurrentSession(c)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the session user.
func (h *AuthHandler) Me(c echo.Context) error {
	u, _ := middleware.CurrentSession(c).User()
	return c.JSON(http.StatusOK, u)
}

// Roles lists the role catalog.
func (h *AuthHandler) Roles(c echo.Context) error {
	roles, err := h.Users.Roles(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": roles})
}
