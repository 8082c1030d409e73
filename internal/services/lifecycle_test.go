package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joaquin123L/eventhub/models"
	"github.com/Joaquin123L/eventhub/monitoring"
)

func TestStatusAt(t *testing.T) {
	future := testNow.Add(time.Hour)
	past := testNow.Add(-time.Hour)

	tests := []struct {
		name     string
		event    models.Event
		expected models.EventStatus
	}{
		{"future active stays", models.Event{Status: models.StatusActive, ScheduledAt: future, Capacity: intPtr(10)}, models.StatusActive},
		{"past active finishes", models.Event{Status: models.StatusActive, ScheduledAt: past}, models.StatusFinished},
		{"past sold out finishes", models.Event{Status: models.StatusSoldOut, ScheduledAt: past}, models.StatusFinished},
		{"past rescheduled finishes", models.Event{Status: models.StatusRescheduled, ScheduledAt: past}, models.StatusFinished},
		{"cancelled in the past stays cancelled", models.Event{Status: models.StatusCancelled, ScheduledAt: past}, models.StatusCancelled},
		{"zero capacity is sold out", models.Event{Status: models.StatusActive, ScheduledAt: future, Capacity: intPtr(0)}, models.StatusSoldOut},
		{"nil capacity stays", models.Event{Status: models.StatusActive, ScheduledAt: future}, models.StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusAt(tt.event, testNow))
		})
	}
}

func TestSoldOutStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   models.EventStatus
		capacity *int
		sold     int
		expected models.EventStatus
	}{
		{"reaching capacity sells out", models.StatusActive, intPtr(2), 2, models.StatusSoldOut},
		{"above capacity sells out", models.StatusActive, intPtr(2), 3, models.StatusSoldOut},
		{"freed capacity reactivates", models.StatusSoldOut, intPtr(2), 1, models.StatusActive},
		{"below capacity stays active", models.StatusActive, intPtr(2), 1, models.StatusActive},
		{"rescheduled below capacity stays", models.StatusRescheduled, intPtr(5), 1, models.StatusRescheduled},
		{"rescheduled full sells out", models.StatusRescheduled, intPtr(5), 5, models.StatusSoldOut},
		{"cancelled never changes", models.StatusCancelled, intPtr(1), 5, models.StatusCancelled},
		{"finished never changes", models.StatusFinished, intPtr(1), 5, models.StatusFinished},
		{"unlimited never sells out", models.StatusActive, nil, 1000, models.StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := models.Event{Status: tt.status, Capacity: tt.capacity}
			assert.Equal(t, tt.expected, SoldOutStatus(e, tt.sold))
		})
	}
}

func newTestLifecycle() *Lifecycle {
	l := NewLifecycle(monitoring.NewMonitor(prometheus.NewRegistry()))
	l.SetClock(fixedClock)
	return l
}

func TestLifecycle_SavesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	l := newTestLifecycle()

	e := store.addEvent(models.Event{Capacity: intPtr(10)})
	require.NoError(t, l.CheckAndUpdateStatus(ctx, store, e))
	assert.Equal(t, 0, store.saves)

	e.ScheduledAt = testNow.Add(-time.Minute)
	require.NoError(t, l.CheckAndUpdateStatus(ctx, store, e))
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, models.StatusFinished, store.statusOf(e.ID))

	require.NoError(t, l.CheckAndUpdateStatus(ctx, store, e))
	assert.Equal(t, 1, store.saves)
}

func TestLifecycle_CheckAndUpdateSoldOut(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	l := newTestLifecycle()

	e := store.addEvent(models.Event{Capacity: intPtr(2)})
	store.addTicket(models.Ticket{EventID: e.ID, UserID: "u1", Quantity: 2})

	require.NoError(t, l.CheckAndUpdateSoldOut(ctx, store, e))
	assert.Equal(t, models.StatusSoldOut, e.Status)
	assert.Equal(t, models.StatusSoldOut, store.statusOf(e.ID))
}

func TestLifecycle_CancelledIsTerminal(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	l := newTestLifecycle()

	e := store.addEvent(models.Event{Status: models.StatusCancelled, Capacity: intPtr(1), ScheduledAt: testNow.Add(-time.Hour)})
	store.addTicket(models.Ticket{EventID: e.ID, UserID: "u1", Quantity: 1})

	require.NoError(t, l.CheckAndUpdateStatus(ctx, store, e))
	require.NoError(t, l.CheckAndUpdateSoldOut(ctx, store, e))
	assert.Equal(t, models.StatusCancelled, store.statusOf(e.ID))
	assert.Equal(t, 0, store.saves)
}

func TestLifecycle_SaveFailureKeepsStatus(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	l := newTestLifecycle()

	e := store.addEvent(models.Event{ScheduledAt: testNow.Add(-time.Hour)})
	store.failOn["SetEventStatus"] = errors.New("disk full")

	err := l.CheckAndUpdateStatus(ctx, store, e)
	assert.Error(t, err)
	assert.Equal(t, models.StatusActive, e.Status)
}

func TestLifecycle_StaleCopyKeepsStoredStatus(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	l := newTestLifecycle()

	stale := store.addEvent(models.Event{Capacity: intPtr(10)})
	_, err := store.SetEventStatus(ctx, stale.ID, models.StatusActive, models.StatusCancelled)
	require.NoError(t, err)

	stale.ScheduledAt = testNow.Add(-time.Hour)
	require.NoError(t, l.CheckAndUpdateStatus(ctx, store, stale))

	assert.Equal(t, models.StatusCancelled, store.statusOf(stale.ID))
	assert.Equal(t, models.StatusCancelled, stale.Status)
}

func TestLifecycle_SoldOutReloadsEvent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	l := newTestLifecycle()

	stale := store.addEvent(models.Event{Capacity: intPtr(2)})
	_, err := store.SetEventStatus(ctx, stale.ID, models.StatusActive, models.StatusSoldOut)
	require.NoError(t, err)
	store.addTicket(models.Ticket{EventID: stale.ID, UserID: "u1", Quantity: 1})

	require.NoError(t, l.CheckAndUpdateSoldOut(ctx, store, stale))

	assert.Equal(t, models.StatusActive, store.statusOf(stale.ID))
	assert.Equal(t, models.StatusActive, stale.Status)
}
