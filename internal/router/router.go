// Package router assembles the echo server: middleware chain, the route
// table and the access level of every route.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/automarket/marketplace-api/internal/config"
	"github.com/automarket/marketplace-api/internal/handler"
	"github.com/automarket/marketplace-api/internal/identity"
	"github.com/automarket/marketplace-api/internal/middleware"
)

// Deps is everything New needs to build the server.
type Deps struct {
	Log         *zap.Logger
	Verifier    identity.Verifier
	Redis       *redis.Client // nil disables rate limiting
	RateLimit   config.RateLimitConfig
	CORSOrigins []string
	ServiceName string

	Health *handler.HealthHandler
	Cars   *handler.CarHandler
	Users  *handler.UserHandler
}

// route is one entry of the route table.
type route struct {
	method  string
	path    string
	access  middleware.Access
	handler echo.HandlerFunc
}

// New builds the echo instance.  Authentication runs after routing so it
// can look up the matched route pattern in the access table.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	table := middleware.AccessTable{}
	all := append(healthRoutes(d.Health), carRoutes(d.Cars)...)
	all = append(all, userRoutes(d.Users)...)
	for _, r := range all {
		table.Set(r.method, r.path, r.access)
		e.Add(r.method, r.path, r.handler)
	}

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	serviceName := d.ServiceName
	if serviceName == "" {
		serviceName = "marketplace-api"
	}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLog(d.Log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(otelecho.Middleware(serviceName))
	e.Use(middleware.Authenticate(table, d.Verifier, d.Log))
	e.Use(middleware.RateLimit(d.RateLimit, d.Redis, d.Log))
	return e
}

func healthRoutes(h *handler.HealthHandler) []route {
	return []route{
		{echo.GET, "/api/health", middleware.Public, h.Health},
	}
}
