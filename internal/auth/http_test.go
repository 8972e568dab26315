package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return string(body)
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type testLoginPayload struct {
	email    string
	password string
}

func (p testLoginPayload) GetIdentifier() string { return p.email }
func (p testLoginPayload) GetPassword() string   { return p.password }

func newRouteAuthenticator(t *testing.T, provider IdentityProvider) *RouteAuthenticator {
	t.Helper()

	cfg := newTestConfig()
	auther := NewAuthenticator(provider, cfg)

	ts, ok := auther.TokenService().(TokenValidator)
	require.True(t, ok)

	routeAuth, err := NewHTTPAuthenticator(auther, ts, cfg)
	require.NoError(t, err)

	return routeAuth
}

func TestRouteAuthenticatorRequiresValidator(t *testing.T) {
	auther := NewAuthenticator(&mockProvider{}, newTestConfig())

	_, err := NewHTTPAuthenticator(auther, nil, newTestConfig())
	assert.Error(t, err)
}

func TestLoginDeliversCookieOnPageSurface(t *testing.T) {
	identity := newTestIdentity()
	routeAuth := newRouteAuthenticator(t, &mockProvider{identity: identity})

	app := fiber.New()
	app.Post("/login", func(c *fiber.Ctx) error {
		return routeAuth.Login(c, testLoginPayload{identity.Email(), "pw"}, SurfacePage)
	})

	req := httptest.NewRequest(fiber.MethodPost, "/login", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookie := findCookie(resp, "access_token")
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)

	// The body carries no token on the page surface.
	assert.NotContains(t, readBody(t, resp), cookie.Value)
}

func TestLoginDeliversJSONOnAPISurface(t *testing.T) {
	identity := newTestIdentity()
	routeAuth := newRouteAuthenticator(t, &mockProvider{identity: identity})

	app := fiber.New()
	app.Post("/signin", func(c *fiber.Ctx) error {
		return routeAuth.Login(c, testLoginPayload{identity.Email(), "pw"}, SurfaceAPI)
	})

	req := httptest.NewRequest(fiber.MethodPost, "/signin", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope TokenResponse
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &envelope))
	assert.NotEmpty(t, envelope.AccessToken)
	assert.Equal(t, "bearer", envelope.TokenType)

	// No cookie is set for API callers.
	assert.Nil(t, findCookie(resp, "access_token"))
}

func TestLogoutClearsCookie(t *testing.T) {
	routeAuth := newRouteAuthenticator(t, &mockProvider{identity: newTestIdentity()})

	app := fiber.New()
	app.Get("/logout", func(c *fiber.Ctx) error {
		routeAuth.Logout(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/logout", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	cookie := findCookie(resp, "access_token")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()))
}

func TestProtectedPageRedirectsToLogin(t *testing.T) {
	routeAuth := newRouteAuthenticator(t, &mockProvider{})

	app := fiber.New()
	app.All("/backend", routeAuth.Protected(SurfacePage), func(c *fiber.Ctx) error {
		return c.SendString("secret")
	})

	t.Run("GET redirects with 302", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/backend?page=2", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))

		rejected := findCookie(resp, "rejected_route")
		require.NotNil(t, rejected)
		assert.Equal(t, "/backend?page=2", rejected.Value)
	})

	t.Run("POST redirects with 303", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodPost, "/backend", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))
	})
}

func TestProtectedAPIRejectsWithJSON(t *testing.T) {
	routeAuth := newRouteAuthenticator(t, &mockProvider{})

	app := fiber.New()
	app.Get("/api/me", routeAuth.Protected(SurfaceAPI), func(c *fiber.Ctx) error {
		return c.SendString("secret")
	})

	req := httptest.NewRequest(fiber.MethodGet, "/api/me", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"invalid or expired credentials"}`, readBody(t, resp))
	assert.Empty(t, resp.Header.Get(fiber.HeaderLocation))
}

func TestProtectedPageAllowsValidCookie(t *testing.T) {
	identity := newTestIdentity()
	routeAuth := newRouteAuthenticator(t, &mockProvider{identity: identity})

	app := fiber.New()
	app.Get("/backend", routeAuth.Protected(SurfacePage), func(c *fiber.Ctx) error {
		session, err := GetSession(c, "access_token")
		if err != nil {
			return err
		}
		return c.SendString(session.GetUserID())
	})

	auther := NewAuthenticator(&mockProvider{identity: identity}, newTestConfig())
	token, err := auther.TokenService().Generate(identity)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/backend", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, identity.ID(), readBody(t, resp))
}

func TestGetRedirect(t *testing.T) {
	routeAuth := newRouteAuthenticator(t, &mockProvider{})

	app := fiber.New()
	app.Get("/after-login", func(c *fiber.Ctx) error {
		return c.SendString(routeAuth.GetRedirect(c, "/fallback"))
	})

	t.Run("pops the remembered route", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/after-login", nil)
		req.AddCookie(&http.Cookie{Name: "rejected_route", Value: "/backend?page=3"})

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, "/backend?page=3", readBody(t, resp))

		cleared := findCookie(resp, "rejected_route")
		require.NotNil(t, cleared)
		assert.Empty(t, cleared.Value)
	})

	t.Run("falls back without a cookie", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/after-login", nil)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, "/fallback", readBody(t, resp))
	})
}

func TestGetSessionWithoutClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, err := GetSession(c, "access_token")
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
