package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"github.com/Joaquin123L/eventhub/models"
)

func eventFromRecord(r *core.Record) *models.Event {
	e := &models.Event{
		ID:          r.Id,
		Title:       r.GetString("title"),
		Description: r.GetString("description"),
		ScheduledAt: getTime(r, "scheduled_at"),
		OrganizerID: r.GetString("organizer"),
		CategoryID:  r.GetString("category"),
		VenueID:     r.GetString("venue"),
		Status:      models.EventStatus(r.GetString("status")),
		Created:     getTime(r, "created"),
		Updated:     getTime(r, "updated"),
	}
	if c := r.GetInt("capacity"); c > 0 {
		e.Capacity = &c
	}
	return e
}

func eventToRecord(e *models.Event, r *core.Record) {
	r.Set("title", e.Title)
	r.Set("description", e.Description)
	r.Set("scheduled_at", e.ScheduledAt)
	r.Set("organizer", e.OrganizerID)
	r.Set("category", e.CategoryID)
	r.Set("venue", e.VenueID)
	r.Set("status", string(e.Status))
	if e.Capacity != nil {
		r.Set("capacity", *e.Capacity)
	} else {
		r.Set("capacity", 0)
	}
}

func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	r, err := s.find(colEvents, id)
	if err != nil {
		return nil, err
	}
	return eventFromRecord(r), nil
}

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	r, err := s.newRecord(colEvents)
	if err != nil {
		return err
	}
	eventToRecord(e, r)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	*e = *eventFromRecord(r)
	return nil
}

func (s *Store) SaveEvent(ctx context.Context, e *models.Event) error {
	r, err := s.find(colEvents, e.ID)
	if err != nil {
		return err
	}
	eventToRecord(e, r)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	e.Updated = getTime(r, "updated")
	return nil
}

// SetEventStatus saves through the record so update hooks still fire, but
// touches the status field alone.
func (s *Store) SetEventStatus(ctx context.Context, id string, from, to models.EventStatus) (bool, error) {
	r, err := s.find(colEvents, id)
	if err != nil {
		return false, err
	}
	if models.EventStatus(r.GetString("status")) != from {
		return false, nil
	}
	r.Set("status", string(to))
	if err := s.save(ctx, r); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return s.delete(ctx, colEvents, id)
}

func (s *Store) ListEvents(ctx context.Context, q models.EventQuery, now time.Time) ([]models.Event, error) {
	exprs := []dbx.Expression{}
	if q.Organizer {
		exprs = append(exprs, dbx.HashExp{"organizer": q.ViewerID})
	}
	if !q.IncludePast {
		exprs = append(exprs,
			dbx.NewExp("scheduled_at >= {:now}", dbx.Params{"now": dbTime(now)}),
			dbx.NotIn("status", string(models.StatusCancelled), string(models.StatusFinished)),
		)
	}
	if q.CategoryID != "" {
		exprs = append(exprs, dbx.HashExp{"category": q.CategoryID})
	}
	if q.VenueID != "" {
		exprs = append(exprs, dbx.HashExp{"venue": q.VenueID})
	}

	order := "scheduled_at ASC"
	if q.Descending {
		order = "scheduled_at DESC"
	}
	var where dbx.Expression
	if len(exprs) > 0 {
		where = dbx.And(exprs...)
	}
	records, err := s.all(ctx, colEvents, where, order)
	if err != nil {
		return nil, err
	}

	out := make([]models.Event, 0, len(records))
	for _, r := range records {
		out = append(out, *eventFromRecord(r))
	}
	return out, nil
}

// Venues

func venueFromRecord(r *core.Record) *models.Venue {
	return &models.Venue{
		ID:       r.Id,
		Name:     r.GetString("name"),
		Address:  r.GetString("address"),
		City:     r.GetString("city"),
		Capacity: r.GetInt("capacity"),
		Contact:  r.GetString("contact"),
	}
}

func venueToRecord(v *models.Venue, r *core.Record) {
	r.Set("name", v.Name)
	r.Set("address", v.Address)
	r.Set("city", v.City)
	r.Set("capacity", v.Capacity)
	r.Set("contact", v.Contact)
}

func (s *Store) GetVenue(ctx context.Context, id string) (*models.Venue, error) {
	r, err := s.find(colVenues, id)
	if err != nil {
		return nil, err
	}
	return venueFromRecord(r), nil
}

func (s *Store) ListVenues(ctx context.Context) ([]models.Venue, error) {
	records, err := s.all(ctx, colVenues, nil, "name ASC")
	if err != nil {
		return nil, err
	}
	out := make([]models.Venue, 0, len(records))
	for _, r := range records {
		out = append(out, *venueFromRecord(r))
	}
	return out, nil
}

func (s *Store) CreateVenue(ctx context.Context, v *models.Venue) error {
	r, err := s.newRecord(colVenues)
	if err != nil {
		return err
	}
	venueToRecord(v, r)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	v.ID = r.Id
	return nil
}

func (s *Store) SaveVenue(ctx context.Context, v *models.Venue) error {
	r, err := s.find(colVenues, v.ID)
	if err != nil {
		return err
	}
	venueToRecord(v, r)
	return s.save(ctx, r)
}

func (s *Store) DeleteVenue(ctx context.Context, id string) error {
	return s.delete(ctx, colVenues, id)
}

// Categories

func categoryFromRecord(r *core.Record) *models.Category {
	return &models.Category{
		ID:          r.Id,
		Name:        r.GetString("name"),
		Description: r.GetString("description"),
		IsActive:    r.GetBool("is_active"),
	}
}

func categoryToRecord(c *models.Category, r *core.Record) {
	r.Set("name", c.Name)
	r.Set("description", c.Description)
	r.Set("is_active", c.IsActive)
}

func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	r, err := s.find(colCategories, id)
	if err != nil {
		return nil, err
	}
	return categoryFromRecord(r), nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	records, err := s.all(ctx, colCategories, nil, "name ASC")
	if err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(records))
	for _, r := range records {
		out = append(out, *categoryFromRecord(r))
	}
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	r, err := s.newRecord(colCategories)
	if err != nil {
		return err
	}
	categoryToRecord(c, r)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	c.ID = r.Id
	return nil
}

func (s *Store) SaveCategory(ctx context.Context, c *models.Category) error {
	r, err := s.find(colCategories, c.ID)
	if err != nil {
		return err
	}
	categoryToRecord(c, r)
	return s.save(ctx, r)
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.delete(ctx, colCategories, id)
}

func (s *Store) CountEventsInCategory(ctx context.Context, categoryID string) (int, error) {
	n, err := s.app.CountRecords(colEvents, dbx.HashExp{"category": categoryID})
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return int(n), nil
}
