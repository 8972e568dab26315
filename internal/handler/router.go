// Package handler wires the HTTP surface of Event Board: public pages, the
// JSON API, and the guarded backend. Protected handlers are only registered
// through the guard returned by RouteAuthenticator.Protected, so no backend
// route can exist without it.
package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/eventboard/eventboard/internal/auth"
	"github.com/eventboard/eventboard/internal/config"
	"github.com/eventboard/eventboard/internal/store"
)

// App bundles the collaborators the handlers need.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	auther    auth.Authenticator
	routeAuth *auth.RouteAuthenticator
	provider  *auth.UserProvider
	users     *store.Users
	events    *store.Events
	db        *bun.DB
}

// New builds the handler set.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	auther auth.Authenticator,
	routeAuth *auth.RouteAuthenticator,
	provider *auth.UserProvider,
	users *store.Users,
	events *store.Events,
	db *bun.DB,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		auther:    auther,
		routeAuth: routeAuth,
		provider:  provider,
		users:     users,
		events:    events,
		db:        db,
	}
}

// Register mounts every route. Backend and mutating API routes go through
// the guard for their surface; everything else is public.
func (a *App) Register(app *fiber.App) {
	pageGuard := a.routeAuth.Protected(auth.SurfacePage)
	apiGuard := a.routeAuth.Protected(auth.SurfaceAPI)

	// public pages
	app.Get("/", a.Home)
	app.Get("/events/:id", a.EventDetailPage)
	app.Get("/health", a.Health)

	// auth pages
	app.Get("/login", a.LoginShow)
	app.Post("/login", a.LoginPost)
	app.Get("/signup", a.SignupShow)
	app.Post("/signup", a.SignupPost)
	app.Get("/logout", a.Logout)

	// backend pages, cookie surface
	backend := app.Group("/backend", pageGuard, a.withCurrentUser)
	backend.Get("/", a.BackendEventsList)
	backend.Get("/events/new", a.BackendNewEventPage)
	backend.Get("/events/:id/edit", a.BackendEditEventPage)
	backend.Post("/events", a.BackendCreateEvent)
	backend.Post("/events/:id", a.BackendUpdateEvent)
	backend.Post("/events/:id/delete", a.BackendDeleteEvent)

	// auth API, bearer surface
	apiAuth := app.Group("/api/auth")
	apiAuth.Post("/signup", a.APISignUp)
	apiAuth.Post("/signin", a.APISignIn)
	apiAuth.Get("/me", apiGuard, a.APIMe)

	// events API: reads are public, mutations are guarded
	apiEvents := app.Group("/api/events")
	apiEvents.Get("/", a.APIListEvents)
	apiEvents.Get("/featured", a.APIListFeatured)
	apiEvents.Get("/:id", a.APIGetEvent)
	apiEvents.Post("/", apiGuard, a.APICreateEvent)
	apiEvents.Patch("/:id", apiGuard, a.APIUpdateEvent)
	apiEvents.Delete("/:id", apiGuard, a.APIDeleteEvent)
}

// withCurrentUser resolves the guard-bound session subject to a stored user
// and threads it through the request context. It runs after the guard, so a
// missing session here means the token subject no longer exists.
func (a *App) withCurrentUser(c *fiber.Ctx) error {
	session, err := auth.GetSession(c, a.cfg.GetContextKey())
	if err != nil {
		return a.routeAuth.MakeAuthErrorHandler(auth.SurfacePage)(c, err)
	}

	user, err := a.users.GetByIdentifier(c.Context(), session.GetUserID())
	if err != nil {
		return a.routeAuth.MakeAuthErrorHandler(auth.SurfacePage)(c, auth.ErrIdentityNotFound)
	}

	c.SetUserContext(auth.WithCurrentUser(c.UserContext(), user))
	c.Locals("current_user", user)

	return c.Next()
}

// RequestLogger logs method, path, status, and duration for every request.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		logger.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start).String(),
		)

		return err
	}
}

// ErrorHandler is the app-level fiber error handler: structured JSON for the
// API surface, rendered error pages elsewhere.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		var richErr *errors.Error

		if errors.As(err, &richErr) {
			if richErr.Code > 0 {
				status = richErr.Code
			}
			message = richErr.Message
		} else if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed", "path", c.Path(), "status", status, "error", err)
		}

		if strings.HasPrefix(c.Path(), "/api") {
			return c.Status(status).JSON(fiber.Map{"error": message})
		}

		if status == fiber.StatusNotFound {
			return c.Status(status).Render("errors/404", fiber.Map{})
		}

		return c.Status(status).Render("errors/500", fiber.Map{"message": message})
	}
}
