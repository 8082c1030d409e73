package models

import (
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

type Notification struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Priority   Priority  `json:"priority"`
	EventID    string    `json:"event_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Recipients []string  `json:"recipients,omitempty"`
}

// NotificationUser is the per-recipient row carrying read state.
type NotificationUser struct {
	ID             string     `json:"id"`
	NotificationID string     `json:"notification_id"`
	UserID         string     `json:"user_id"`
	Read           bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at"`
}

type InboxItem struct {
	NotificationUser
	Notification Notification `json:"notification"`
}

type Inbox struct {
	Items  []InboxItem `json:"items"`
	Unread int         `json:"unread"`
}

type NotificationFilter struct {
	Search   string
	EventID  string
	Priority Priority
}

// NotificationChanges carries the overrides of an update. Empty strings and a
// nil Users slice keep the stored values.
type NotificationChanges struct {
	Title    string
	Message  string
	Priority Priority
	EventID  string
	Users    []string
}
