package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Joaquin123L/eventhub/models"
	"github.com/Joaquin123L/eventhub/monitoring"
)

// StatusAt returns the status an event should have at now. Cancelled events
// never change.
func StatusAt(e models.Event, now time.Time) models.EventStatus {
	if e.Status == models.StatusCancelled {
		return e.Status
	}
	if e.ScheduledAt.Before(now) {
		return models.StatusFinished
	}
	if e.Capacity != nil && *e.Capacity <= 0 {
		return models.StatusSoldOut
	}
	return e.Status
}

// SoldOutStatus returns the status an event should have once sold tickets
// are counted. Cancelled and finished events are left alone, and an event
// without capacity is never sold out.
func SoldOutStatus(e models.Event, sold int) models.EventStatus {
	if e.Status.Closed() || e.Capacity == nil {
		return e.Status
	}
	if sold >= *e.Capacity {
		return models.StatusSoldOut
	}
	if e.Status == models.StatusSoldOut {
		return models.StatusActive
	}
	return e.Status
}

// Lifecycle persists status transitions.
type Lifecycle struct {
	clock
	monitor *monitoring.Monitor
}

func NewLifecycle(monitor *monitoring.Monitor) *Lifecycle {
	return &Lifecycle{monitor: monitor}
}

// CheckAndUpdateStatus applies the time based rules and saves the event when
// its status changes.
func (l *Lifecycle) CheckAndUpdateStatus(ctx context.Context, st EventStore, e *models.Event) error {
	return l.apply(ctx, st, e, StatusAt(*e, l.current()))
}

// CheckAndUpdateSoldOut reloads the event from st, recounts sold tickets and
// flips between Activo and Agotado as needed. e receives the stored copy.
func (l *Lifecycle) CheckAndUpdateSoldOut(ctx context.Context, st Store, e *models.Event) error {
	fresh, err := st.GetEvent(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("reload event: %w", err)
	}
	*e = *fresh
	if e.Capacity == nil || e.Status.Closed() {
		return nil
	}
	sold, err := st.SumQuantity(ctx, e.ID, "", "")
	if err != nil {
		return fmt.Errorf("count sold tickets: %w", err)
	}
	return l.apply(ctx, st, e, SoldOutStatus(*e, sold))
}

// apply moves e from its current status to next. When the stored status no
// longer matches e, the stored one wins and e is refreshed.
func (l *Lifecycle) apply(ctx context.Context, st EventStore, e *models.Event, next models.EventStatus) error {
	if next == e.Status {
		return nil
	}
	prev := e.Status
	changed, err := st.SetEventStatus(ctx, e.ID, prev, next)
	if err != nil {
		return fmt.Errorf("save event status: %w", err)
	}
	if !changed {
		fresh, err := st.GetEvent(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("reload event: %w", err)
		}
		slog.Warn("event status changed concurrently", "event_id", e.ID, "expected", prev, "stored", fresh.Status, "wanted", next)
		*e = *fresh
		return nil
	}
	e.Status = next

	l.monitor.TrackStatusTransition(string(prev), string(next))
	slog.Info("event status changed", "event_id", e.ID, "from", prev, "to", next)
	return nil
}
