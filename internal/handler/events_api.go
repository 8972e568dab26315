package handler

import (
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/eventboard/eventboard/internal/store"
)

// EventDatePayload is one occurrence in a create/update request.
type EventDatePayload struct {
	DateTime time.Time `json:"date_time"`
}

// EventCreateRequest is the API payload for new events.
type EventCreateRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Location    string             `json:"location"`
	ImageURL    string             `json:"image_url"`
	Featured    bool               `json:"featured"`
	Dates       []EventDatePayload `json:"dates"`
}

// Validate will run validation rules.
func (r EventCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
	)
}

// EventUpdateRequest is a partial update; nil fields are left untouched.
// A non-nil Dates replaces the stored dates wholesale.
type EventUpdateRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Location    *string             `json:"location"`
	ImageURL    *string             `json:"image_url"`
	Featured    *bool               `json:"featured"`
	Dates       *[]EventDatePayload `json:"dates"`
}

func (a *App) APIListEvents(c *fiber.Ctx) error {
	criteria := store.ListCriteria{
		Skip: c.QueryInt("skip", 0),
		Take: c.QueryInt("take", 20),
	}

	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "featured must be a boolean"})
		}
		criteria.Featured = &featured
	}

	records, err := a.events.List(c.Context(), criteria)
	if err != nil {
		return err
	}

	return c.JSON(records)
}

func (a *App) APIListFeatured(c *fiber.Ctx) error {
	featured := true
	records, err := a.events.List(c.Context(), store.ListCriteria{
		Take:     c.QueryInt("take", 5),
		Featured: &featured,
	})
	if err != nil {
		return err
	}

	return c.JSON(records)
}

func (a *App) APIGetEvent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
	}

	record, err := a.events.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
	}

	return c.JSON(record)
}

func (a *App) APICreateEvent(c *fiber.Ctx) error {
	payload := new(EventCreateRequest)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	record := &store.Event{
		Title:       payload.Title,
		Description: payload.Description,
		Location:    payload.Location,
		ImageURL:    payload.ImageURL,
		Featured:    payload.Featured,
		Dates:       datesFromPayload(payload.Dates),
	}

	created, err := a.events.Create(c.Context(), record)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (a *App) APIUpdateEvent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
	}

	existing, err := a.events.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
	}

	payload := new(EventUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}

	if payload.Title != nil {
		existing.Title = *payload.Title
	}
	if payload.Description != nil {
		existing.Description = *payload.Description
	}
	if payload.Location != nil {
		existing.Location = *payload.Location
	}
	if payload.ImageURL != nil {
		existing.ImageURL = *payload.ImageURL
	}
	if payload.Featured != nil {
		existing.Featured = *payload.Featured
	}
	if payload.Dates != nil {
		existing.Dates = datesFromPayload(*payload.Dates)
	}

	updated, err := a.events.Update(c.Context(), existing)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

func (a *App) APIDeleteEvent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
	}

	if err := a.events.Delete(c.Context(), id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func datesFromPayload(payload []EventDatePayload) []*store.EventDate {
	dates := make([]*store.EventDate, 0, len(payload))
	for _, d := range payload {
		dates = append(dates, &store.EventDate{DateTime: d.DateTime})
	}
	return dates
}
