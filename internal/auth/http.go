package auth

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// TokenResponse is the API-surface delivery envelope for a freshly minted
// token. Page-surface delivery uses an HTTP-only cookie instead; the token
// string itself is identical on both surfaces.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// NewTokenResponse wraps a token for the API surface.
func NewTokenResponse(token string) TokenResponse {
	return TokenResponse{AccessToken: token, TokenType: "bearer"}
}

// RouteAuthenticator owns credential delivery and route protection: it sets
// and clears the token cookie for page navigation, emits the JSON envelope
// for API callers, and builds the guard middleware for protected routes.
type RouteAuthenticator struct {
	auth           Authenticator
	validator      TokenValidator
	cfg            Config
	cookieDuration time.Duration
	logger         Logger
}

// NewHTTPAuthenticator returns a new RouteAuthenticator. The cookie lifetime
// mirrors the token TTL; the cookie expiry is advisory UX while the token's
// own exp claim remains the security boundary.
func NewHTTPAuthenticator(auther Authenticator, validator TokenValidator, cfg Config) (*RouteAuthenticator, error) {
	if validator == nil {
		return nil, errors.New("route authenticator requires a token validator", errors.CategoryInternal)
	}

	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	return &RouteAuthenticator{
		auth:           auther,
		validator:      validator,
		cfg:            cfg,
		cookieDuration: cookieDuration,
		logger:         defLogger{},
	}, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Login verifies the payload and delivers the minted token on the given
// surface: cookie for pages, JSON body for API callers.
func (a *RouteAuthenticator) Login(c *fiber.Ctx, payload LoginPayload, surface Surface) error {
	token, err := a.auth.Login(c.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		return err
	}

	return a.Deliver(c, token, surface)
}

// Deliver emits an already-minted token on the given surface.
func (a *RouteAuthenticator) Deliver(c *fiber.Ctx, token string, surface Surface) error {
	if surface == SurfaceAPI {
		return c.JSON(NewTokenResponse(token))
	}

	a.setCookieToken(c, token, a.cookieDuration)
	return nil
}

// Logout clears the token cookie. Because validation is stateless the
// underlying token stays valid until natural expiry; this only removes the
// browser's copy.
func (a *RouteAuthenticator) Logout(c *fiber.Ctx) {
	a.cookieDel(c, a.cfg.GetContextKey())
}

// Protected returns the guard middleware for routes on the given surface.
// Handlers for backend routes are only registrable through this wrapper, so
// a protected route cannot exist without the guard in front of it.
func (a *RouteAuthenticator) Protected(surface Surface) fiber.Handler {
	return NewGuard(GuardConfig{
		TokenValidator: a.validator,
		ContextKey:     a.cfg.GetContextKey(),
		TokenLookup:    a.cfg.GetTokenLookup(),
		AuthScheme:     a.cfg.GetAuthScheme(),
		ErrorHandler:   a.MakeAuthErrorHandler(surface),
	})
}

// MakeAuthErrorHandler builds the rejection branch for a surface. Every
// rejection cause (no token, invalid, expired, malformed claims) produces
// the identical client-visible outcome for that surface; the distinction
// exists only in logs, and the raw token string is never logged.
func (a *RouteAuthenticator) MakeAuthErrorHandler(surface Surface) func(c *fiber.Ctx, err error) error {
	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else if !errors.As(err, &richErr) {
			richErr = errors.Wrap(err, errors.CategoryAuth, "invalid authentication token").
				WithCode(errors.CodeUnauthorized)
		}

		a.logger.Info("guard rejected request",
			"surface", surface.String(),
			"text_code", richErr.TextCode,
			"path", c.Path(),
		)

		if surface == SurfaceAPI {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired credentials",
			})
		}

		a.SetRedirect(c)

		statusCode := http.StatusSeeOther
		if c.Method() == fiber.MethodGet {
			statusCode = http.StatusFound
		}
		return c.Redirect("/login", statusCode)
	}
}

// SetRedirect remembers the rejected URL so a successful login can return
// the user where they were headed.
func (a *RouteAuthenticator) SetRedirect(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cfg.GetRejectedRouteKey(),
		Value:    c.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

// GetRedirect pops the remembered rejected URL, falling back to def.
func (a *RouteAuthenticator) GetRedirect(c *fiber.Ctx, def string) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	r := c.Cookies(rejectedRoute)
	if r == "" {
		if def == "" {
			return a.cfg.GetRejectedRouteDefault()
		}
		return def
	}
	a.cookieDel(c, rejectedRoute)
	return r
}

// GetSession returns the session bound by the guard, or an error when the
// request reached a handler without validated claims.
func GetSession(c *fiber.Ctx, key string) (*SessionObject, error) {
	raw := c.Locals(key)
	if raw == nil {
		return nil, ErrUnableToFindSession
	}

	claims, ok := raw.(AuthClaims)
	if !ok {
		return nil, ErrUnableToFindSession
	}

	return sessionFromAuthClaims(claims)
}

func (a *RouteAuthenticator) setCookieToken(c *fiber.Ctx, val string, duration time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
	})
}
