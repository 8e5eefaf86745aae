package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/automarket/marketplace-api/internal/model"
	"github.com/automarket/marketplace-api/internal/service"
)

// UserHandler serves /api/users.  The profile id is always the caller's
// subject id; there is no endpoint that touches another user's profile.
type UserHandler struct {
	users *service.UserService
	log   *zap.Logger
}

func NewUserHandler(users *service.UserService, log *zap.Logger) *UserHandler {
	if users == nil {
		panic("nil user service passed to NewUserHandler")
	}
	return &UserHandler{users: users, log: log}
}

type profileRequest struct {
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
	UserType  string `json:"userType" validate:"required"`
}

// CreateOrUpdate handles POST /api/users/profile, called after each sign-in.
// The email comes from the verified token, never from the body.
func (h *UserHandler) CreateOrUpdate(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := model.ParseRole(req.UserType)
	if err != nil {
		return badRequest("invalid userType", err)
	}
	u, err := h.users.CreateOrUpdate(c.Request().Context(), p.Subject, p.Email, service.ProfileInput{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      role,
	})
	if err != nil {
		return profileError(err)
	}
	return c.JSON(http.StatusOK, u)
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	u, err := h.users.Get(c.Request().Context(), p.Subject)
	if err != nil {
		return profileError(err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateMe handles PUT /api/users/me.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var patch service.ProfilePatch
	if err := bindAndValidate(c, &patch); err != nil {
		return err
	}
	u, err := h.users.UpdateProfile(c.Request().Context(), p.Subject, patch)
	if err != nil {
		return profileError(err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateSellerInfo handles PUT /api/users/seller-info.  Non-sellers get 403.
func (h *UserHandler) UpdateSellerInfo(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var info service.SellerInfo
	if err := bindAndValidate(c, &info); err != nil {
		return err
	}
	u, err := h.users.UpdateSellerInfo(c.Request().Context(), p.Subject, info)
	if err != nil {
		return profileError(err)
	}
	return c.JSON(http.StatusOK, u)
}

// Deactivate handles DELETE /api/users/me.  The profile is kept with
// status INACTIVE.
func (h *UserHandler) Deactivate(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.users.Deactivate(c.Request().Context(), p.Subject); err != nil {
		return profileError(err)
	}
	h.log.Info("account deactivated", zap.String("uid", p.Subject))
	return c.JSON(http.StatusOK, echo.Map{"message": "account deactivated"})
}

// Sellers handles GET /api/users/sellers.
func (h *UserHandler) Sellers(c echo.Context) error {
	sellers, err := h.users.ListActiveSellers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(sellers))
}

// SearchSellers handles GET /api/users/sellers/search?specialization=...
func (h *UserHandler) SearchSellers(c echo.Context) error {
	specialization := strings.TrimSpace(c.QueryParam("specialization"))
	if specialization == "" {
		return badRequest("specialization is required", nil)
	}
	sellers, err := h.users.SellersBySpecialization(c.Request().Context(), specialization)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(sellers))
}
