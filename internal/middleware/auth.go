package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/automarket/marketplace-api/internal/identity"
)

// Context keys set by Authenticate.
const (
	PrincipalKey = "principal"
	UserIDKey    = "user_id"
)

// Access is the authentication level a route requires.
type Access int

const (
	Public Access = iota
	Authenticated
)

// AccessTable maps "METHOD /route/pattern" (echo's c.Path()) to the
// required access level.
type AccessTable map[string]Access

func accessKey(method, path string) string { return method + " " + path }

// Set records the access level for a route.
func (t AccessTable) Set(method, path string, a Access) { t[accessKey(method, path)] = a }

// Lookup returns the level for a route and whether the route is listed.
func (t AccessTable) Lookup(method, path string) (Access, bool) {
	a, ok := t[accessKey(method, path)]
	return a, ok
}

// Authenticate resolves the caller for every routed request.  Public routes
// skip token verification entirely.  Authenticated routes need a bearer
// token the verifier accepts; otherwise the request ends with 401.  Routes
// not in the table pass through so echo can answer 404/405.
func Authenticate(table AccessTable, v identity.Verifier, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			access, ok := table.Lookup(c.Request().Method, c.Path())
			if !ok || access == Public {
				return next(c)
			}

			raw, ok := bearerToken(c.Request())
			if !ok {
				return unauthorized(c)
			}
			p, err := v.Verify(c.Request().Context(), raw)
			if err != nil {
				log.Debug("token verification failed",
					zap.String("route", c.Path()), zap.String("ip", c.RealIP()), zap.Error(err))
				return unauthorized(c)
			}
			c.Set(PrincipalKey, p)
			c.Set(UserIDKey, p.Subject)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get(echo.HeaderAuthorization)
	const prefix = "bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(auth[len(prefix):])
	return raw, raw != ""
}

// CurrentPrincipal returns the caller set by Authenticate.
func CurrentPrincipal(c echo.Context) (identity.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(identity.Principal)
	return p, ok && p.Subject != ""
}
