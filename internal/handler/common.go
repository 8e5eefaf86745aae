// Package handler holds the HTTP handlers for the marketplace API.  Every
// error response has the shape {"error": "..."}; validation failures add a
// "fields" map keyed by JSON field name.
package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/automarket/marketplace-api/internal/identity"
	"github.com/automarket/marketplace-api/internal/middleware"
	"github.com/automarket/marketplace-api/internal/service"
)

// apiError is a client-facing failure.  Err keeps the cause for the request
// log; only Message and Fields reach the client.
type apiError struct {
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *apiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *apiError) Unwrap() error { return e.Err }

func badRequest(msg string, cause error) *apiError {
	return &apiError{Status: http.StatusBadRequest, Message: msg, Err: cause}
}

func notFound(msg string, cause error) *apiError {
	return &apiError{Status: http.StatusNotFound, Message: msg, Err: cause}
}

// ErrorHandler renders handler errors.  Anything that is neither an
// apiError nor an echo.HTTPError is a store fault and the client gets a
// generic 500; the cause is left to the request log.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := echo.Map{"error": "database error"}

		var ae *apiError
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ae):
			status = ae.Status
			body["error"] = ae.Message
			if len(ae.Fields) > 0 {
				body["fields"] = ae.Fields
			}
		case errors.As(err, &he):
			status = he.Code
			if status < http.StatusInternalServerError {
				body["error"] = fmt.Sprint(he.Message)
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

// caller returns the principal Authenticate put on the context.
func caller(c echo.Context) (identity.Principal, error) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return identity.Principal{}, &apiError{Status: http.StatusUnauthorized, Message: "authentication required"}
	}
	return p, nil
}

// bindAndValidate decodes the body into dst and runs its validate tags.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return badRequest("invalid request body", err)
	}
	if err := c.Validate(dst); err != nil {
		if fields := fieldErrors(err); fields != nil {
			return &apiError{Status: http.StatusBadRequest, Message: "validation failed", Fields: fields, Err: err}
		}
		return err
	}
	return nil
}

// listingLookupError maps errors of read paths: a missing listing is 404.
func listingLookupError(err error) error {
	if errors.Is(err, service.ErrCarNotFound) {
		return notFound("car not found", err)
	}
	return err
}

// listingMutationError maps errors of create/update/status/delete.  These
// answer 400 for every business-rule failure, missing listing included.
func listingMutationError(err error) error {
	switch {
	case errors.Is(err, service.ErrCarNotFound):
		return badRequest("car not found", err)
	case errors.Is(err, service.ErrNotOwner):
		return badRequest("you can only modify your own listings", err)
	case errors.Is(err, service.ErrInvalidTransition):
		return badRequest(err.Error(), err)
	case errors.Is(err, service.ErrSellerRequired):
		return badRequest("seller profile not found", err)
	}
	return err
}

// profileError maps errors of the profile endpoints.
func profileError(err error) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return notFound("user profile not found", err)
	case errors.Is(err, service.ErrNotSeller):
		return &apiError{Status: http.StatusForbidden, Message: "only sellers can update seller information", Err: err}
	case errors.Is(err, service.ErrInvalidRole):
		return badRequest("invalid userType", err)
	}
	return err
}
