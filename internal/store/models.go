package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the credential record: identity plus password hash. The hash is
// never empty and never the plaintext it was derived from; the plaintext is
// never stored anywhere.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash,notnull" json:"-"`
	LoginAttempts  int        `bun:"login_attempts" json:"-"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"-"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"-"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Event is a listed event. The auth core treats this model as an opaque
// collaborator; it exists so the backend has something to protect.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:evt"`

	ID          uuid.UUID    `bun:"id,pk,type:uuid" json:"id"`
	Title       string       `bun:"title,notnull" json:"title"`
	Description string       `bun:"description" json:"description,omitempty"`
	Location    string       `bun:"location" json:"location,omitempty"`
	ImageURL    string       `bun:"image_url" json:"image_url,omitempty"`
	Featured    bool         `bun:"featured,notnull,default:false" json:"featured"`
	Dates       []*EventDate `bun:"rel:has-many,join:id=event_id" json:"dates"`
	CreatedAt   *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt   *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EventDate is one occurrence of an event.
type EventDate struct {
	bun.BaseModel `bun:"table:event_dates,alias:evtd"`

	ID       uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	EventID  uuid.UUID `bun:"event_id,notnull,type:uuid" json:"event_id"`
	DateTime time.Time `bun:"date_time,notnull" json:"date_time"`
}

// FormValue renders the occurrence in the datetime-local format the backend
// form accepts, so an edited event round-trips its dates.
func (d *EventDate) FormValue() string {
	return d.DateTime.Format("2006-01-02T15:04")
}

// EarliestDate returns the soonest occurrence, used for listing order.
func (e *Event) EarliestDate() time.Time {
	if len(e.Dates) == 0 {
		return maxListingDate
	}
	earliest := e.Dates[0].DateTime
	for _, d := range e.Dates[1:] {
		if d.DateTime.Before(earliest) {
			earliest = d.DateTime
		}
	}
	return earliest
}

// Events without dates sort last.
var maxListingDate = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
