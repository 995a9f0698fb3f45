package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppen/custody-registry/internal/api/middleware"
	"github.com/deppen/custody-registry/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware. Its
// absence means the route was mounted without authentication.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok || p.Email == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return p, nil
}

// viewContext reads the unit filter chosen by the client from the "context"
// query parameter. The core decides whether the principal may use it.
func viewContext(c echo.Context) domain.ViewContext {
	return domain.ViewContext(c.QueryParam("context"))
}

// bindAndValidate decodes the body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
