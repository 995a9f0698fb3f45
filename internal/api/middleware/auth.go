package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deppen/custody-registry/internal/core/domain"
)

const principalKey = "principal"

// SessionRestorer revalidates a session token against current account state.
type SessionRestorer interface {
	RestoreSession(ctx context.Context, token string) (*domain.Principal, error)
}

// ActivityRecorder is told about every authenticated request.
type ActivityRecorder interface {
	Touch(p domain.Principal)
}

// Auth resolves the bearer session token into a principal and injects it
// into the context. Blocked or deauthorized accounts are rejected on their
// next request. activity may be nil.
func Auth(sessions SessionRestorer, activity ActivityRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := BearerToken(c)
			if err != nil {
				return err
			}

			p, err := sessions.RestoreSession(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrSessionInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
				}
				return err
			}

			c.Set(principalKey, *p)
			if activity != nil {
				activity.Touch(*p)
			}
			return next(c)
		}
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// Principal returns the principal injected by Auth.
func Principal(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}

// SetPrincipal injects p, for handlers mounted behind a custom authenticator
// and for tests.
func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}
