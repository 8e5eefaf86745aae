package router

import (
	"github.com/labstack/echo/v4"

	"github.com/automarket/marketplace-api/internal/handler"
	"github.com/automarket/marketplace-api/internal/middleware"
)

// userRoutes lists the /api/users endpoints.  The seller-only rule of
// seller-info is enforced by the service, so the route itself only needs
// authentication.
func userRoutes(h *handler.UserHandler) []route {
	return []route{
		{echo.POST, "/api/users/profile", middleware.Authenticated, h.CreateOrUpdate},
		{echo.GET, "/api/users/me", middleware.Authenticated, h.Me},
		{echo.PUT, "/api/users/me", middleware.Authenticated, h.UpdateMe},
		{echo.DELETE, "/api/users/me", middleware.Authenticated, h.Deactivate},
		{echo.PUT, "/api/users/seller-info", middleware.Authenticated, h.UpdateSellerInfo},
		{echo.GET, "/api/users/sellers", middleware.Public, h.Sellers},
		{echo.GET, "/api/users/sellers/search", middleware.Public, h.SearchSellers},
	}
}
