// Package auth defines the authenticated principal passed from the JWT
// middleware down to handlers and services. Identity travels as an explicit
// value, never inferred from ambient state.
package auth

import (
	"errors"

	"github.com/labstack/echo/v4"
)

const contextKey = "principal"

// Principal is the verified (account, role) pair derived from a bearer
// token. Downstream code trusts it unconditionally and uses AccountID for
// ownership checks.
type Principal struct {
	AccountID uint64
	Role      string
}

// ErrNoPrincipal indicates a handler ran without the JWT middleware having
// stored a principal, which is a routing mistake rather than a user error.
var ErrNoPrincipal = errors.New("no principal in request context")

// Store saves the principal on the request context.
func Store(c echo.Context, p Principal) {
	c.Set(contextKey, p)
}

// FromContext retrieves the principal stored by the JWT middleware.
func FromContext(c echo.Context) (Principal, error) {
	p, ok := c.Get(contextKey).(Principal)
	if !ok {
		return Principal{}, ErrNoPrincipal
	}
	return p, nil
}
