package services

import (
	"context"
	"fmt"
	"log/slog"

	pubnub "github.com/pubnub/go/v7"

	"github.com/Joaquin123L/eventhub/models"
	"github.com/Joaquin123L/eventhub/monitoring"
)

// Publisher pushes realtime messages to subscribed clients.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) error
}

type PubNubPublisher struct {
	pn *pubnub.PubNub
}

func NewPubNubPublisher(pn *pubnub.PubNub) *PubNubPublisher {
	return &PubNubPublisher{pn: pn}
}

func (p *PubNubPublisher) Publish(ctx context.Context, channel string, message any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, st, err := p.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	if st.Error != nil {
		return fmt.Errorf("publish to %s: status %d: %w", channel, st.StatusCode, st.Error)
	}
	return nil
}

func userChannel(userID string) string {
	return fmt.Sprintf("user-%s", userID)
}

// pushNotification delivers n to each recipient. Delivery is best effort: the
// notification is already stored and shows up in the inbox regardless.
func pushNotification(ctx context.Context, pub Publisher, monitor *monitoring.Monitor, n *models.Notification, users []string) {
	if pub == nil {
		return
	}
	payload := map[string]any{
		"type":            "notification",
		"notification_id": n.ID,
		"title":           n.Title,
		"priority":        n.Priority,
		"event_id":        n.EventID,
	}
	for _, userID := range users {
		if err := pub.Publish(ctx, userChannel(userID), payload); err != nil {
			monitor.TrackRealtimeFailure()
			slog.Warn("realtime push failed", "user_id", userID, "notification_id", n.ID, "error", err)
		}
	}
}
