package models

import (
	"time"
)

type EventStatus string

const (
	StatusActive      EventStatus = "Activo"
	StatusCancelled   EventStatus = "Cancelado"
	StatusRescheduled EventStatus = "Reprogramado"
	StatusSoldOut     EventStatus = "Agotado"
	StatusFinished    EventStatus = "Finalizado"
)

func (s EventStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusRescheduled, StatusSoldOut, StatusFinished:
		return true
	}
	return false
}

// Closed reports whether the event no longer accepts ticket changes.
func (s EventStatus) Closed() bool {
	return s == StatusCancelled || s == StatusFinished
}

type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ScheduledAt time.Time   `json:"scheduled_at"`
	OrganizerID string      `json:"organizer_id"`
	CategoryID  string      `json:"category_id,omitempty"`
	VenueID     string      `json:"venue_id,omitempty"`
	Capacity    *int        `json:"capacity"` // nil means unlimited
	Status      EventStatus `json:"status"`
	Created     time.Time   `json:"created"`
	Updated     time.Time   `json:"updated"`
}

// EventChanges is a partial update. A nil field keeps the current value.
type EventChanges struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	VenueID     *string    `json:"venue_id"`
	CategoryID  *string    `json:"category_id"`
	Capacity    *int       `json:"capacity"`
}

type Venue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Capacity int    `json:"capacity"`
	Contact  string `json:"contact"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type EventQuery struct {
	ViewerID      string
	Organizer     bool
	IncludePast   bool
	CategoryID    string
	VenueID       string
	FavoritesOnly bool
	Descending    bool
}

type EventSummary struct {
	Event
	IsFavorite bool `json:"is_favorite"`
}

type Countdown struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// CountdownUntil splits the time left until t. Past instants yield zero.
func CountdownUntil(now, t time.Time) Countdown {
	d := t.Sub(now)
	if d <= 0 {
		return Countdown{}
	}
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	return Countdown{Days: days, Hours: hours, Minutes: int(d / time.Minute)}
}

type EventDetail struct {
	Event
	Venue            *Venue    `json:"venue,omitempty"`
	Category         *Category `json:"category,omitempty"`
	Sold             int       `json:"sold"`
	Occupancy        float64   `json:"occupancy"`
	Countdown        Countdown `json:"countdown"`
	AverageRating    float64   `json:"average_rating"`
	RatingPercentage float64   `json:"rating_percentage"`
	Ratings          []Rating  `json:"ratings"`
	Comments         []Comment `json:"comments"`
	HasTicket        bool      `json:"has_ticket"`
	HasRated         bool      `json:"has_rated"`
	IsFavorite       bool      `json:"is_favorite"`
}
