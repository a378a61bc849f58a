package auth

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mmfoods/storefront/internal/apperror"
	"github.com/mmfoods/storefront/internal/backend"
	"github.com/mmfoods/storefront/internal/middleware"
)

// Handler handles HTTP requests for the session endpoints. Handlers are
// thin: they bind the request, call the service, and render the
// response. No business logic lives here.
type Handler struct {
	service SessionService
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service SessionService) *Handler {
	return &Handler{service: service}
}

// sessionResponse is the payload for GET /api/session. The CSRF token
// rides along so the display client can pick it up in one round trip.
type sessionResponse struct {
	*Session
	CSRFToken string `json:"csrf_token,omitempty"`
}

// Session returns the resolved session for the calling browser
// (GET /api/session).
func (h *Handler) Session(c echo.Context) error {
	return middleware.JSON(c, http.StatusOK, sessionResponse{
		Session:   GetSession(c),
		CSRFToken: middleware.GetCSRFToken(c),
	})
}

// Login authenticates against the upstream store (POST /api/login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid login request")
	}

	user, err := h.service.Login(c.Request().Context(), GetSessionID(c), LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, user)
}

// Logout ends the session (POST /api/logout). It always succeeds from
// the caller's point of view.
func (h *Handler) Logout(c echo.Context) error {
	h.service.Logout(c.Request().Context(), GetSessionID(c))
	return middleware.JSONMessage(c, http.StatusOK, "logged out")
}

// Register creates a new account (POST /api/register). Accepts multipart
// form data so an avatar image can be attached.
func (h *Handler) Register(c echo.Context) error {
	input := backend.RegisterInput{
		Username:    c.FormValue("username"),
		FullName:    c.FormValue("fullname"),
		Email:       c.FormValue("email"),
		Password:    c.FormValue("password"),
		PhoneNumber: c.FormValue("phoneNumber"),
		Address:     c.FormValue("address"),
		City:        c.FormValue("city"),
		PostalCode:  c.FormValue("postalCode"),
	}

	if file, err := c.FormFile("avatar"); err == nil {
		src, err := file.Open()
		if err != nil {
			return apperror.NewBadRequest("could not read avatar upload")
		}
		defer src.Close()
		data, err := io.ReadAll(io.LimitReader(src, 8<<20))
		if err != nil {
			return apperror.NewBadRequest("could not read avatar upload")
		}
		input.AvatarName = file.Filename
		input.AvatarData = data
	}

	if err := h.service.Register(c.Request().Context(), input); err != nil {
		return err
	}
	return middleware.JSONMessage(c, http.StatusCreated, "account created, please log in")
}

// UpdateProfile updates the authenticated user's profile
// (PATCH /api/profile).
func (h *Handler) UpdateProfile(c echo.Context) error {
	var input backend.ProfileUpdate
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid profile update")
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), GetSessionID(c), input)
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, user)
}
