package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/eventboard/eventboard/internal/auth"
)

// identityResponse is the public view of a user: never the hash.
type identityResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// APISignUp registers a user and returns its public identity with 201.
func (a *App) APISignUp(c *fiber.Ctx) error {
	payload := new(SignUpRequest)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	identity, err := a.provider.Register(c.Context(), payload.Email, payload.Password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryConflict {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already registered"})
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(identityResponse{
		ID:    identity.ID(),
		Email: identity.Email(),
	})
}

// APISignIn authenticates and returns the token in the response body. The
// caller is expected to resend it as a bearer header; no cookie is set on
// this surface.
func (a *App) APISignIn(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := a.routeAuth.Login(c, payload, auth.SurfaceAPI); err != nil {
		// Unknown email and wrong password collapse to one response.
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}

	return nil
}

// APIMe returns the current identity resolved from the validated session.
func (a *App) APIMe(c *fiber.Ctx) error {
	session, err := auth.GetSession(c, a.cfg.GetContextKey())
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired credentials"})
	}

	identity, err := a.auther.IdentityFromSession(c.Context(), session)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired credentials"})
	}

	return c.JSON(identityResponse{
		ID:    identity.ID(),
		Email: identity.Email(),
	})
}
