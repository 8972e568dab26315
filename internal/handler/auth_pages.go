package handler

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/eventboard/eventboard/internal/auth"
)

// LoginRequest is the sign-in payload for both surfaces.
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the login identifier.
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword returns the plaintext password. It never leaves the request
// path; nothing logs or stores it.
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// SignUpRequest is the registration payload for both surfaces.
type SignUpRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules.
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(6, 100),
		),
	)
}

// genericLoginError is the single message shown for every credential
// failure; unknown email and wrong password are indistinguishable.
const genericLoginError = "Invalid email or password"

func (a *App) LoginShow(c *fiber.Ctx) error {
	return c.Render("auth/login", fiber.Map{
		"error":  nil,
		"record": nil,
	})
}

func (a *App) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("auth/login", fiber.Map{
			"error": "Could not read the form",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Render("auth/login", fiber.Map{
			"error":  genericLoginError,
			"record": payload,
		})
	}

	if err := a.routeAuth.Login(c, payload, auth.SurfacePage); err != nil {
		return c.Render("auth/login", fiber.Map{
			"error":  genericLoginError,
			"record": payload,
		})
	}

	redirect := a.routeAuth.GetRedirect(c, "/backend")
	return c.Redirect(redirect, fiber.StatusSeeOther)
}

func (a *App) SignupShow(c *fiber.Ctx) error {
	return c.Render("auth/signup", fiber.Map{
		"error":  nil,
		"record": nil,
	})
}

func (a *App) SignupPost(c *fiber.Ctx) error {
	payload := new(SignUpRequest)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("auth/signup", fiber.Map{
			"error": "Could not read the form",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Render("auth/signup", fiber.Map{
			"error":  err.Error(),
			"record": payload,
		})
	}

	if _, err := a.provider.Register(c.Context(), payload.Email, payload.Password); err != nil {
		message := "Could not create the account"
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryConflict {
			message = "Email already registered"
		}
		return c.Render("auth/signup", fiber.Map{
			"error":  message,
			"record": payload,
		})
	}

	// Sign-up returns an identity, never a token; the new user signs in next.
	return c.Redirect("/login", fiber.StatusSeeOther)
}

func (a *App) Logout(c *fiber.Ctx) error {
	a.routeAuth.Logout(c)
	return c.Redirect("/", fiber.StatusSeeOther)
}
