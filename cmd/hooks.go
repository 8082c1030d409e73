package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"github.com/Joaquin123L/eventhub/internal/services"
)

const publishTimeout = 5 * time.Second

func eventChannel(eventID string) string {
	return fmt.Sprintf("event-%s", eventID)
}

// setupEventHooks broadcasts committed event changes on the event's channel
// so open event pages pick up status, date and venue changes. Publishing is
// best effort and never fails the write.
func setupEventHooks(app core.App, pub services.Publisher) {
	if pub == nil {
		return
	}

	publish := func(eventID string, message map[string]any) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := pub.Publish(ctx, eventChannel(eventID), message); err != nil {
			slog.Error("failed to broadcast event change", "event_id", eventID, "error", err)
		}
	}

	app.OnRecordAfterUpdateSuccess("events").BindFunc(func(e *core.RecordEvent) error {
		publish(e.Record.Id, map[string]any{
			"type":         "event_updated",
			"event_id":     e.Record.Id,
			"status":       e.Record.GetString("status"),
			"scheduled_at": e.Record.GetDateTime("scheduled_at").Time(),
			"venue_id":     e.Record.GetString("venue"),
		})
		return e.Next()
	})

	app.OnRecordAfterDeleteSuccess("events").BindFunc(func(e *core.RecordEvent) error {
		publish(e.Record.Id, map[string]any{
			"type":     "event_deleted",
			"event_id": e.Record.Id,
		})
		return e.Next()
	})
}
