package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Joaquin123L/eventhub/internal/status"
	"github.com/Joaquin123L/eventhub/models"
	"github.com/Joaquin123L/eventhub/monitoring"
)

const (
	changeNotificationTitle = "Cambio en evento"
	changeDateLayout        = "02/01/2006 15:04"
	noVenue                 = "sin lugar"
)

type EventService struct {
	clock
	store         Store
	lifecycle     *Lifecycle
	notifications *NotificationService
	monitor       *monitoring.Monitor
}

func NewEventService(store Store, lifecycle *Lifecycle, notifications *NotificationService, monitor *monitoring.Monitor) *EventService {
	return &EventService{
		store:         store,
		lifecycle:     lifecycle,
		notifications: notifications,
		monitor:       monitor,
	}
}

type EventInput struct {
	Title       string
	Description string
	ScheduledAt time.Time
	CategoryID  string
	VenueID     string
	Capacity    *int
}

func (s *EventService) Create(ctx context.Context, actor models.Actor, in EventInput) (*models.Event, error) {
	if !actor.Organizer {
		return nil, status.ErrForbidden
	}
	venue, err := venueFor(ctx, s.store, in.VenueID)
	if err != nil {
		return nil, err
	}
	if err := checkCategory(ctx, s.store, in.CategoryID); err != nil {
		return nil, err
	}
	if err := validateEventFields(in.Title, in.Description, in.ScheduledAt, in.Capacity, venue, s.current()); err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		ScheduledAt: in.ScheduledAt,
		OrganizerID: actor.ID,
		CategoryID:  in.CategoryID,
		VenueID:     in.VenueID,
		Capacity:    in.Capacity,
		Status:      models.StatusActive,
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	if err := s.lifecycle.CheckAndUpdateStatus(ctx, s.store, event); err != nil {
		return nil, err
	}

	slog.Info("event created", "event_id", event.ID, "organizer_id", actor.ID)
	return event, nil
}

// Update applies a partial change. When the date or the venue changes, the
// ticket holders receive one HIGH priority notification describing the
// change, stored in the same transaction as the event. The changes are
// applied to the event as read inside that transaction.
func (s *EventService) Update(ctx context.Context, actor models.Actor, id string, ch models.EventChanges) (*models.Event, error) {
	if _, err := s.ownedEvent(ctx, actor, id); err != nil {
		return nil, err
	}

	var (
		before  models.Event
		updated models.Event
		notice  *models.Notification
	)
	err := s.store.RunInTx(ctx, func(tx Store) error {
		event, err := tx.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		before = *event
		updated = applyChanges(*event, ch)

		newVenue, err := venueFor(ctx, tx, updated.VenueID)
		if err != nil {
			return err
		}
		if err := checkCategory(ctx, tx, updated.CategoryID); err != nil {
			return err
		}
		if err := validateEventFields(updated.Title, updated.Description, updated.ScheduledAt, updated.Capacity, newVenue, s.current()); err != nil {
			return err
		}
		if ch.Capacity != nil {
			if err := checkCapacityCoversSold(ctx, tx, id, *ch.Capacity); err != nil {
				return err
			}
		}

		dateChanged := !before.ScheduledAt.Equal(updated.ScheduledAt)
		venueChanged := before.VenueID != updated.VenueID
		if dateChanged && updated.Status != models.StatusCancelled {
			updated.Status = models.StatusRescheduled
		}

		var changes []string
		if dateChanged {
			changes = append(changes, fmt.Sprintf("Fecha/Hora: de %s a %s",
				before.ScheduledAt.Format(changeDateLayout), updated.ScheduledAt.Format(changeDateLayout)))
		}
		if venueChanged {
			oldName, err := venueName(ctx, tx, before.VenueID)
			if err != nil {
				return err
			}
			changes = append(changes, fmt.Sprintf("Lugar: de %s a %s", oldName, displayVenue(newVenue)))
		}

		if err := tx.SaveEvent(ctx, &updated); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		if len(changes) == 0 {
			return nil
		}

		holders, err := tx.TicketHolders(ctx, updated.ID)
		if err != nil {
			return fmt.Errorf("list ticket holders: %w", err)
		}
		if len(holders) == 0 {
			return nil
		}

		notice = &models.Notification{
			Title:    changeNotificationTitle,
			Message:  changeMessage(updated.Title, changes),
			Priority: models.PriorityHigh,
			EventID:  updated.ID,
		}
		return s.notifications.fanOut(ctx, tx, notice, holders)
	})
	if err != nil {
		return nil, err
	}

	if updated.Status != before.Status {
		s.monitor.TrackStatusTransition(string(before.Status), string(updated.Status))
	}
	if notice != nil {
		s.notifications.deliver(ctx, notice)
	}

	// Reconcile sold-out and finished states after the edit.
	if err := s.lifecycle.CheckAndUpdateSoldOut(ctx, s.store, &updated); err != nil {
		return nil, err
	}
	if err := s.lifecycle.CheckAndUpdateStatus(ctx, s.store, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func applyChanges(e models.Event, ch models.EventChanges) models.Event {
	if ch.Title != nil {
		e.Title = strings.TrimSpace(*ch.Title)
	}
	if ch.Description != nil {
		e.Description = strings.TrimSpace(*ch.Description)
	}
	if ch.ScheduledAt != nil {
		e.ScheduledAt = *ch.ScheduledAt
	}
	if ch.VenueID != nil {
		e.VenueID = *ch.VenueID
	}
	if ch.CategoryID != nil {
		e.CategoryID = *ch.CategoryID
	}
	if ch.Capacity != nil {
		capacity := *ch.Capacity
		e.Capacity = &capacity
	}
	return e
}

// checkCapacityCoversSold refuses a capacity below the tickets already sold.
func checkCapacityCoversSold(ctx context.Context, st TicketStore, eventID string, capacity int) error {
	sold, err := st.SumQuantity(ctx, eventID, "", "")
	if err != nil {
		return fmt.Errorf("count sold tickets: %w", err)
	}
	if capacity < sold {
		return validation.Errors{"capacity": invalid("validation_capacity_below_sold",
			fmt.Sprintf("La capacidad no puede ser menor a las %d entradas ya vendidas.", sold))}
	}
	return nil
}

func changeMessage(title string, changes []string) string {
	return fmt.Sprintf("Se han realizado cambios en el evento '%s':\n\n", title) + strings.Join(changes, "\n")
}

func displayVenue(v *models.Venue) string {
	if v == nil {
		return noVenue
	}
	return v.Name
}

func venueName(ctx context.Context, st VenueStore, id string) (string, error) {
	if id == "" {
		return noVenue, nil
	}
	v, err := st.GetVenue(ctx, id)
	if errors.Is(err, status.ErrNotFound) {
		return noVenue, nil
	}
	if err != nil {
		return "", err
	}
	return v.Name, nil
}

func venueFor(ctx context.Context, st VenueStore, id string) (*models.Venue, error) {
	if id == "" {
		return nil, nil
	}
	v, err := st.GetVenue(ctx, id)
	if errors.Is(err, status.ErrNotFound) {
		return nil, validation.Errors{"venue": invalid("validation_invalid_venue", "Lugar inválido")}
	}
	return v, err
}

func checkCategory(ctx context.Context, st VenueStore, id string) error {
	if id == "" {
		return nil
	}
	_, err := st.GetCategory(ctx, id)
	if errors.Is(err, status.ErrNotFound) {
		return validation.Errors{"category": invalid("validation_invalid_category", "Categoría inválida")}
	}
	return err
}

func (s *EventService) ownedEvent(ctx context.Context, actor models.Actor, id string) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Organizer || event.OrganizerID != actor.ID {
		return nil, status.ErrForbidden
	}
	return event, nil
}

// Cancel moves the event to Cancelado. Only its organizer may cancel it.
func (s *EventService) Cancel(ctx context.Context, actor models.Actor, id string) (*models.Event, error) {
	event, err := s.ownedEvent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	err = s.store.RunInTx(ctx, func(tx Store) error {
		current, err := tx.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		*event = *current
		if event.Status == models.StatusCancelled {
			return nil
		}
		return s.lifecycle.apply(ctx, tx, event, models.StatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes the event. Tickets, ratings, comments, favorites, discount
// codes and notifications of the event go with it.
func (s *EventService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.ownedEvent(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	slog.Info("event deleted", "event_id", id, "organizer_id", actor.ID)
	return nil
}

// Detail loads an event for display, refreshing its status first.
func (s *EventService) Detail(ctx context.Context, viewer models.Actor, id string) (*models.EventDetail, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.lifecycle.CheckAndUpdateStatus(ctx, s.store, event); err != nil {
		return nil, err
	}

	detail := &models.EventDetail{
		Event:     *event,
		Countdown: models.CountdownUntil(s.current(), event.ScheduledAt),
	}

	if event.VenueID != "" {
		if v, err := s.store.GetVenue(ctx, event.VenueID); err == nil {
			detail.Venue = v
		} else if !errors.Is(err, status.ErrNotFound) {
			return nil, err
		}
	}
	if event.CategoryID != "" {
		if c, err := s.store.GetCategory(ctx, event.CategoryID); err == nil {
			detail.Category = c
		} else if !errors.Is(err, status.ErrNotFound) {
			return nil, err
		}
	}

	if detail.Sold, err = s.store.SumQuantity(ctx, event.ID, "", ""); err != nil {
		return nil, err
	}
	if event.Capacity != nil && *event.Capacity > 0 {
		detail.Occupancy = round2(float64(detail.Sold) / float64(*event.Capacity) * 100)
	}

	if detail.Ratings, err = s.store.ListRatings(ctx, event.ID); err != nil {
		return nil, err
	}
	if len(detail.Ratings) > 0 {
		total := 0
		for _, r := range detail.Ratings {
			total += r.Score
			if r.UserID == viewer.ID {
				detail.HasRated = true
			}
		}
		detail.AverageRating = round2(float64(total) / float64(len(detail.Ratings)))
		detail.RatingPercentage = round2(detail.AverageRating * 20)
	}

	if detail.Comments, err = s.store.ListComments(ctx, event.ID); err != nil {
		return nil, err
	}

	if viewer.ID != "" {
		owned, err := s.store.SumQuantity(ctx, event.ID, viewer.ID, "")
		if err != nil {
			return nil, err
		}
		detail.HasTicket = owned > 0

		fav, err := s.store.FindFavorite(ctx, viewer.ID, event.ID)
		if err != nil && !errors.Is(err, status.ErrNotFound) {
			return nil, err
		}
		detail.IsFavorite = fav != nil
	}
	return detail, nil
}

// List returns events visible to the viewer. Attendees see upcoming events
// that are neither cancelled nor finished; organizers see their own events.
func (s *EventService) List(ctx context.Context, viewer models.Actor, q models.EventQuery) ([]models.EventSummary, error) {
	q.ViewerID = viewer.ID
	q.Organizer = viewer.Organizer
	if !viewer.Organizer {
		q.IncludePast = false
	}

	events, err := s.store.ListEvents(ctx, q, s.current())
	if err != nil {
		return nil, err
	}

	var favorites []string
	if viewer.ID != "" {
		if favorites, err = s.store.FavoriteEventIDs(ctx, viewer.ID); err != nil {
			return nil, err
		}
	}

	out := make([]models.EventSummary, 0, len(events))
	for _, e := range events {
		isFav := slices.Contains(favorites, e.ID)
		if q.FavoritesOnly && !isFav {
			continue
		}
		out = append(out, models.EventSummary{Event: e, IsFavorite: isFav})
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
