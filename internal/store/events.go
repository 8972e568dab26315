package store

import (
	"context"
	"sort"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Events is the event/date repository. It is an opaque collaborator from the
// auth core's point of view: handlers behind the guard call it, the guard
// itself never does.
type Events struct {
	db *bun.DB
}

// NewEvents returns an Events repository over db.
func NewEvents(db *bun.DB) *Events {
	return &Events{db: db}
}

// ListCriteria narrows and pages event listings.
type ListCriteria struct {
	Skip     int
	Take     int
	Featured *bool
}

// List returns events with their dates, sorted by earliest occurrence.
// Undated events sort last.
func (e *Events) List(ctx context.Context, criteria ListCriteria) ([]*Event, error) {
	if criteria.Take <= 0 {
		criteria.Take = 20
	}
	if criteria.Skip < 0 {
		criteria.Skip = 0
	}

	var records []*Event
	q := e.db.NewSelect().
		Model(&records).
		Relation("Dates")

	if criteria.Featured != nil {
		q = q.Where("?TableAlias.featured = ?", *criteria.Featured)
	}

	if err := q.Offset(criteria.Skip).Limit(criteria.Take).Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "event listing failed")
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].EarliestDate().Before(records[j].EarliestDate())
	})

	return records, nil
}

// Count returns the total number of events, used for pagination.
func (e *Events) Count(ctx context.Context) (int, error) {
	count, err := e.db.NewSelect().Model((*Event)(nil)).Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "event count failed")
	}
	return count, nil
}

// GetByID returns an event with its dates.
func (e *Events) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	record := &Event{}
	err := e.db.NewSelect().
		Model(record).
		Relation("Dates").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "event lookup failed")
	}

	return record, nil
}

// Create inserts an event and its dates in one transaction.
func (e *Events) Create(ctx context.Context, record *Event) (*Event, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	if record.UpdatedAt == nil {
		record.UpdatedAt = &now
	}

	err := e.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return err
		}
		return insertDates(ctx, tx, record)
	})

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "event insert failed")
	}

	return e.GetByID(ctx, record.ID)
}

// Update rewrites the event row and replaces its dates wholesale, matching
// the backend form semantics: the submitted date list is the new truth.
func (e *Events) Update(ctx context.Context, record *Event) (*Event, error) {
	now := time.Now()
	record.UpdatedAt = &now

	err := e.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(record).
			Column("title", "description", "location", "image_url", "featured", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err == nil && affected == 0 {
			return ErrRecordNotFound
		}

		if _, err := tx.NewDelete().
			Model((*EventDate)(nil)).
			Where("event_id = ?", record.ID).
			Exec(ctx); err != nil {
			return err
		}

		return insertDates(ctx, tx, record)
	})

	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "event update failed")
	}

	return e.GetByID(ctx, record.ID)
}

// Delete removes an event and its dates.
func (e *Events) Delete(ctx context.Context, id uuid.UUID) error {
	err := e.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*EventDate)(nil)).
			Where("event_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*Event)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err == nil && affected == 0 {
			return ErrRecordNotFound
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "event delete failed")
	}

	return nil
}

func insertDates(ctx context.Context, tx bun.Tx, record *Event) error {
	for _, d := range record.Dates {
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		d.EventID = record.ID
	}

	if len(record.Dates) == 0 {
		return nil
	}

	_, err := tx.NewInsert().Model(&record.Dates).Exec(ctx)
	return err
}
