package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shihaotian/ai-legal-assistant/internal/auth"
)

// RequireRole enforces that the authenticated principal carries one of the
// given roles. It assumes JWTAuth already ran; a request with no principal
// or an unknown role is rejected with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := auth.FromContext(c)
			if err != nil || !allowed[p.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
