package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/deppen/custody-registry/internal/core/domain"
)

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name string
		p    *domain.Principal
		want int
	}{
		{"master allowed", &domain.Principal{Role: domain.RoleMaster}, http.StatusOK},
		{"operator forbidden", &domain.Principal{Role: domain.RoleOperator}, http.StatusForbidden},
		{"no principal", nil, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.p != nil {
				SetPrincipal(c, *tc.p)
			}

			h := RequireRole(domain.RoleMaster)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			if err := h(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
