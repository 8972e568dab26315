package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// ErrJWTMissingOrMalformed covers the no-token case. It carries the same
// text code as a malformed token: the guard treats absence and invalidity
// identically.
var ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// GuardConfig configures the access guard middleware.
type GuardConfig struct {
	// TokenValidator resolves a raw token string to claims. Required.
	TokenValidator TokenValidator
	// ErrorHandler decides the rejection shape (redirect vs structured 401).
	ErrorHandler func(c *fiber.Ctx, err error) error
	// ContextKey is the locals key the validated claims are stored under.
	ContextKey string
	// TokenLookup is an ordered, comma separated list of token sources,
	// e.g. "cookie:access_token,header:Authorization". The first source
	// that yields a token wins; later sources are not consulted.
	TokenLookup string
	// AuthScheme is the expected header scheme, normally "Bearer".
	AuthScheme string
	// Filter skips the guard entirely when it returns true.
	Filter func(c *fiber.Ctx) bool
}

// NewGuard builds the request gate: extract a token from the configured
// sources, validate it, and either bind the claims into the request or
// reject before the protected handler runs. The guard has no side effects
// beyond context injection; it never touches the credential store.
func NewGuard(config GuardConfig) fiber.Handler {
	cfg := guardDefaults(config)
	extractors := GetExtractors(cfg.TokenLookup, cfg.AuthScheme)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, extractors)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)
		c.SetUserContext(WithClaimsContext(c.UserContext(), claims))

		return c.Next()
	}
}

func guardDefaults(cfg GuardConfig) GuardConfig {
	if cfg.TokenValidator == nil {
		panic("auth: guard configuration requires a TokenValidator")
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).SendString("invalid or expired token")
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "access_token"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = "cookie:access_token,header:" + fiber.HeaderAuthorization
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// TokenExtractor pulls a raw token string out of a request.
type TokenExtractor func(c *fiber.Ctx) (string, error)

// ExtractRawToken tries extractors in order and returns the first hit.
// Exactly one source is used per request; presence in several sources is
// neither merged nor cross-checked.
func ExtractRawToken(c *fiber.Ctx, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

// GetExtractors parses a token lookup string into ordered extractors.
func GetExtractors(tokenLookup string, authScheme string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		source := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])

		switch source {
		case "header":
			extractors = append(extractors, tokenFromHeader(name, authScheme))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(name))
		case "query":
			extractors = append(extractors, tokenFromQuery(name))
		}
	}

	return extractors
}

// tokenFromHeader extracts a bearer-style token from the request header.
func tokenFromHeader(header string, authScheme string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// tokenFromCookie extracts a token from the named cookie.
func tokenFromCookie(name string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// tokenFromQuery extracts a token from the query string.
func tokenFromQuery(param string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
