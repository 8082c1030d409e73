package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Joaquin123L/eventhub/internal/status"
	"github.com/Joaquin123L/eventhub/models"
)

// VenueService manages venues and categories. Mutations are organizer only.
type VenueService struct {
	store Store
}

func NewVenueService(store Store) *VenueService {
	return &VenueService{store: store}
}

func trimVenue(v *models.Venue) {
	v.Name = strings.TrimSpace(v.Name)
	v.Address = strings.TrimSpace(v.Address)
	v.City = strings.TrimSpace(v.City)
	v.Contact = strings.TrimSpace(v.Contact)
}

func (s *VenueService) ListVenues(ctx context.Context) ([]models.Venue, error) {
	return s.store.ListVenues(ctx)
}

func (s *VenueService) CreateVenue(ctx context.Context, actor models.Actor, v models.Venue) (*models.Venue, error) {
	if !actor.Organizer {
		return nil, status.ErrForbidden
	}
	trimVenue(&v)
	if err := validateVenue(v); err != nil {
		return nil, err
	}
	if err := s.store.CreateVenue(ctx, &v); err != nil {
		return nil, fmt.Errorf("create venue: %w", err)
	}
	return &v, nil
}

func (s *VenueService) UpdateVenue(ctx context.Context, actor models.Actor, v models.Venue) (*models.Venue, error) {
	if !actor.Organizer {
		return nil, status.ErrForbidden
	}
	if _, err := s.store.GetVenue(ctx, v.ID); err != nil {
		return nil, err
	}
	trimVenue(&v)
	if err := validateVenue(v); err != nil {
		return nil, err
	}
	if err := s.store.SaveVenue(ctx, &v); err != nil {
		return nil, fmt.Errorf("save venue: %w", err)
	}
	return &v, nil
}

func (s *VenueService) DeleteVenue(ctx context.Context, actor models.Actor, id string) error {
	if !actor.Organizer {
		return status.ErrForbidden
	}
	if _, err := s.store.GetVenue(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteVenue(ctx, id)
}

func (s *VenueService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *VenueService) CreateCategory(ctx context.Context, actor models.Actor, c models.Category) (*models.Category, error) {
	if !actor.Organizer {
		return nil, status.ErrForbidden
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	c.IsActive = true
	if err := s.store.CreateCategory(ctx, &c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

// UpdateCategory keeps the stored name or description when the new one is
// empty.
func (s *VenueService) UpdateCategory(ctx context.Context, actor models.Actor, id, name, description string, active *bool) (*models.Category, error) {
	if !actor.Organizer {
		return nil, status.ErrForbidden
	}
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if n := strings.TrimSpace(name); n != "" {
		c.Name = n
	}
	if d := strings.TrimSpace(description); d != "" {
		c.Description = d
	}
	if active != nil {
		c.IsActive = *active
	}
	if err := s.store.SaveCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("save category: %w", err)
	}
	return c, nil
}

// DeleteCategory refuses while events still reference the category.
func (s *VenueService) DeleteCategory(ctx context.Context, actor models.Actor, id string) error {
	if !actor.Organizer {
		return status.ErrForbidden
	}
	if _, err := s.store.GetCategory(ctx, id); err != nil {
		return err
	}
	n, err := s.store.CountEventsInCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return status.Rule(status.ErrCategoryInUse, "No se puede eliminar esta categoría porque tiene eventos asociados.")
	}
	return s.store.DeleteCategory(ctx, id)
}
