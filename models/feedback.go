package models

import (
	"time"
)

type Favorite struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
}

type Rating struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Score     int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type SatisfactionSurvey struct {
	ID                 string    `json:"id"`
	TicketID           string    `json:"ticket_id"`
	UserID             string    `json:"user_id"`
	EventID            string    `json:"event_id"`
	SatisfactionLevel  int       `json:"satisfaction_level"`
	EaseOfSearch       int       `json:"ease_of_search"`
	PaymentExperience  int       `json:"payment_experience"`
	ReceivedTicket     bool      `json:"received_ticket"`
	WouldRecommend     int       `json:"would_recommend"`
	AdditionalComments string    `json:"additional_comments"`
	CreatedAt          time.Time `json:"created_at"`
}
