package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shihaotian/ai-legal-assistant/internal/auth"
	"github.com/shihaotian/ai-legal-assistant/internal/model"
	"github.com/shihaotian/ai-legal-assistant/internal/utils"
)

const testSecret = "test-secret"

func runJWT(t *testing.T, authorization string) (*httptest.ResponseRecorder, auth.Principal, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var p auth.Principal
	reached := false
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		reached = true
		var err error
		p, err = auth.FromContext(c)
		require.NoError(t, err)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, p, reached
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _, reached := runJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authorization header missing")
	assert.False(t, reached)
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	for _, header := range []string{"Basic abc", "Bearer", "Bearer   "} {
		rec, _, reached := runJWT(t, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Contains(t, rec.Body.String(), "malformed authorization header", header)
		assert.False(t, reached, header)
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleGuest, -5)
	require.NoError(t, err)

	rec, _, reached := runJWT(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")
	assert.False(t, reached)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 42, model.RoleGuest, 5)
	require.NoError(t, err)

	rec, _, reached := runJWT(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
	assert.False(t, reached)
}

func TestJWTAuthGarbageToken(t *testing.T) {
	rec, _, reached := runJWT(t, "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
	assert.False(t, reached)
}

func TestJWTAuthValidTokenSetsPrincipal(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleSubscriber, 5)
	require.NoError(t, err)

	rec, p, reached := runJWT(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
	assert.Equal(t, uint64(42), p.AccountID)
	assert.Equal(t, model.RoleSubscriber, p.Role)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	run := func(role string, allowed ...string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		auth.Store(c, auth.Principal{AccountID: 1, Role: role})

		h := RequireRole(allowed...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, h(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run(model.RoleGuest, model.RoleGuest, model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, run(model.RoleGuest, model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, run("", model.RoleGuest))
}
