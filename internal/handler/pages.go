package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/eventboard/eventboard/internal/store"
)

const backendPerPage = 10

// Home lists upcoming events with a featured strip.
func (a *App) Home(c *fiber.Ctx) error {
	records, err := a.events.List(c.Context(), store.ListCriteria{Take: 50})
	if err != nil {
		return err
	}

	featured := true
	featuredRecords, err := a.events.List(c.Context(), store.ListCriteria{Take: 5, Featured: &featured})
	if err != nil {
		return err
	}

	return c.Render("index", fiber.Map{
		"events":   records,
		"featured": featuredRecords,
	})
}

// EventDetailPage renders a single event with its share link.
func (a *App) EventDetailPage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{})
	}

	record, err := a.events.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{})
	}

	return c.Render("events/detail", fiber.Map{
		"event": record,
	})
}

// BackendEventsList is the paginated admin listing. It only runs behind the
// page guard.
func (a *App) BackendEventsList(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	records, err := a.events.List(c.Context(), store.ListCriteria{
		Skip: (page - 1) * backendPerPage,
		Take: backendPerPage,
	})
	if err != nil {
		return err
	}

	total, err := a.events.Count(c.Context())
	if err != nil {
		return err
	}
	totalPages := (total + backendPerPage - 1) / backendPerPage

	return c.Render("backend/events_list", fiber.Map{
		"events":       records,
		"page":         page,
		"total_pages":  totalPages,
		"has_prev":     page > 1,
		"has_next":     page < totalPages,
		"prev_page":    page - 1,
		"next_page":    page + 1,
		"current_user": c.Locals("current_user"),
	})
}

func (a *App) BackendNewEventPage(c *fiber.Ctx) error {
	return c.Render("backend/event_form", fiber.Map{
		"event":        nil,
		"is_edit":      false,
		"current_user": c.Locals("current_user"),
	})
}

func (a *App) BackendEditEventPage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{})
	}

	record, err := a.events.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{})
	}

	return c.Render("backend/event_form", fiber.Map{
		"event":        record,
		"is_edit":      true,
		"current_user": c.Locals("current_user"),
	})
}

// eventFormPayload is the backend form body. Dates arrive as a free-text
// list separated by commas or whitespace.
type eventFormPayload struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Location    string `form:"location"`
	ImageURL    string `form:"image_url"`
	Featured    string `form:"featured"`
	Dates       string `form:"dates"`
}

func (p eventFormPayload) toEvent() *store.Event {
	return &store.Event{
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(p.Description),
		Location:    strings.TrimSpace(p.Location),
		ImageURL:    strings.TrimSpace(p.ImageURL),
		Featured:    p.Featured == "on",
		Dates:       parseFormDates(p.Dates),
	}
}

// parseFormDates accepts RFC 3339 and datetime-local values; entries that do
// not parse are dropped, matching the forgiving form behavior of the UI.
func parseFormDates(raw string) []*store.EventDate {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	})

	dates := make([]*store.EventDate, 0, len(fields))
	for _, f := range fields {
		var parsed time.Time
		var err error
		if parsed, err = time.Parse(time.RFC3339, f); err != nil {
			if parsed, err = time.Parse("2006-01-02T15:04", f); err != nil {
				continue
			}
		}
		dates = append(dates, &store.EventDate{DateTime: parsed})
	}

	return dates
}

func (a *App) BackendCreateEvent(c *fiber.Ctx) error {
	payload := new(eventFormPayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("errors/500", fiber.Map{"message": "could not read the form"})
	}

	record := payload.toEvent()
	if record.Title == "" {
		return c.Render("backend/event_form", fiber.Map{
			"event":        record,
			"is_edit":      false,
			"error":        "Title is required",
			"current_user": c.Locals("current_user"),
		})
	}

	if _, err := a.events.Create(c.Context(), record); err != nil {
		return err
	}

	return c.Redirect("/backend", fiber.StatusSeeOther)
}

func (a *App) BackendUpdateEvent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{})
	}

	payload := new(eventFormPayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("errors/500", fiber.Map{"message": "could not read the form"})
	}

	record := payload.toEvent()
	record.ID = id

	if _, err := a.events.Update(c.Context(), record); err != nil {
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{})
	}

	return c.Redirect("/backend", fiber.StatusSeeOther)
}

func (a *App) BackendDeleteEvent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{})
	}

	if err := a.events.Delete(c.Context(), id); err != nil {
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{})
	}

	return c.Redirect("/backend", fiber.StatusSeeOther)
}

// Health pings the database.
func (a *App) Health(c *fiber.Ctx) error {
	if err := store.Ping(c.Context(), a.db); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":   "error",
			"database": "disconnected",
		})
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"database": "connected",
	})
}
