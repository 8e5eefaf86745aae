package router

import (
	"github.com/labstack/echo/v4"

	"github.com/automarket/marketplace-api/internal/handler"
	"github.com/automarket/marketplace-api/internal/middleware"
)

// carRoutes lists the /cars endpoints.  Browsing is public; every write and
// the caller's own views need a token.  Ownership is checked by the service.
func carRoutes(h *handler.CarHandler) []route {
	return []route{
		// ---- Public browsing ----
		{echo.GET, "/cars", middleware.Public, h.List},
		{echo.GET, "/cars/search", middleware.Public, h.Search},
		{echo.GET, "/cars/stats", middleware.Public, h.Stats},
		{echo.GET, "/cars/brand/:brand", middleware.Public, h.ByBrand},
		{echo.GET, "/cars/:id", middleware.Public, h.Get},
		{echo.GET, "/cars/:id/similar", middleware.Public, h.Similar},

		// ---- Seller listings ----
		{echo.POST, "/cars", middleware.Authenticated, h.Create},
		{echo.PUT, "/cars/:id", middleware.Authenticated, h.Update},
		{echo.PATCH, "/cars/:id/status", middleware.Authenticated, h.UpdateStatus},
		{echo.DELETE, "/cars/:id", middleware.Authenticated, h.Delete},
		{echo.GET, "/cars/my", middleware.Authenticated, h.Mine},
		{echo.GET, "/cars/my/stats", middleware.Authenticated, h.MyStats},
		{echo.GET, "/cars/my/status/:status", middleware.Authenticated, h.MineByStatus},
	}
}
