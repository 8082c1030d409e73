package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Joaquin123L/eventhub/internal/status"
	"github.com/Joaquin123L/eventhub/models"
)

// FeedbackService covers favorites, ratings, comments and satisfaction surveys.
type FeedbackService struct {
	clock
	store Store
}

func NewFeedbackService(store Store) *FeedbackService {
	return &FeedbackService{store: store}
}

// ToggleFavorite adds the event to the user's favorites or removes it, and
// reports whether it is a favorite afterwards.
func (s *FeedbackService) ToggleFavorite(ctx context.Context, actor models.Actor, eventID string) (bool, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return false, err
	}

	fav, err := s.store.FindFavorite(ctx, actor.ID, eventID)
	switch {
	case err == nil:
		return false, s.store.DeleteFavorite(ctx, fav.ID)
	case errors.Is(err, status.ErrNotFound):
		return true, s.store.CreateFavorite(ctx, &models.Favorite{UserID: actor.ID, EventID: eventID})
	default:
		return false, err
	}
}

// Ratings

func (s *FeedbackService) Rate(ctx context.Context, actor models.Actor, r models.Rating) (*models.Rating, error) {
	if _, err := s.store.GetEvent(ctx, r.EventID); err != nil {
		return nil, err
	}

	_, err := s.store.FindRating(ctx, actor.ID, r.EventID)
	if err == nil {
		return nil, status.Rule(status.ErrAlreadyRated, "Ya has calificado este evento")
	}
	if !errors.Is(err, status.ErrNotFound) {
		return nil, err
	}

	owned, err := s.store.SumQuantity(ctx, r.EventID, actor.ID, "")
	if err != nil {
		return nil, err
	}
	if owned == 0 {
		return nil, status.Rule(status.ErrNoTicket, "No puedes calificar un evento si no tienes un ticket")
	}

	r.Title = strings.TrimSpace(r.Title)
	r.Text = strings.TrimSpace(r.Text)
	if err := validateRating(r); err != nil {
		return nil, err
	}

	r.UserID = actor.ID
	r.CreatedAt = s.current()
	if err := s.store.CreateRating(ctx, &r); err != nil {
		if errors.Is(err, status.ErrConflict) {
			return nil, status.Rule(status.ErrAlreadyRated, "Ya has calificado este evento")
		}
		return nil, fmt.Errorf("create rating: %w", err)
	}
	return &r, nil
}

func (s *FeedbackService) UpdateRating(ctx context.Context, actor models.Actor, id string, title, text string, score int) (*models.Rating, error) {
	r, err := s.store.GetRating(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != actor.ID {
		return nil, status.ErrForbidden
	}

	r.Title = strings.TrimSpace(title)
	r.Text = strings.TrimSpace(text)
	r.Score = score
	if err := validateRating(*r); err != nil {
		return nil, err
	}
	if err := s.store.SaveRating(ctx, r); err != nil {
		return nil, fmt.Errorf("save rating: %w", err)
	}
	return r, nil
}

// DeleteRating is allowed to the author and to the event's organizer.
func (s *FeedbackService) DeleteRating(ctx context.Context, actor models.Actor, id string) error {
	r, err := s.store.GetRating(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorOrOrganizer(ctx, actor, r.UserID, r.EventID); err != nil {
		return err
	}
	return s.store.DeleteRating(ctx, id)
}

// Comments

func (s *FeedbackService) Comment(ctx context.Context, actor models.Actor, c models.Comment) (*models.Comment, error) {
	if _, err := s.store.GetEvent(ctx, c.EventID); err != nil {
		return nil, err
	}
	c.Title = strings.TrimSpace(c.Title)
	c.Text = strings.TrimSpace(c.Text)
	if err := validateComment(c); err != nil {
		return nil, err
	}

	c.UserID = actor.ID
	c.CreatedAt = s.current()
	if err := s.store.CreateComment(ctx, &c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &c, nil
}

func (s *FeedbackService) UpdateComment(ctx context.Context, actor models.Actor, id, title, text string) (*models.Comment, error) {
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != actor.ID {
		return nil, status.ErrForbidden
	}

	c.Title = strings.TrimSpace(title)
	c.Text = strings.TrimSpace(text)
	if err := validateComment(*c); err != nil {
		return nil, err
	}
	if err := s.store.SaveComment(ctx, c); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}
	return c, nil
}

func (s *FeedbackService) DeleteComment(ctx context.Context, actor models.Actor, id string) error {
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorOrOrganizer(ctx, actor, c.UserID, c.EventID); err != nil {
		return err
	}
	return s.store.DeleteComment(ctx, id)
}

// OrganizerComments lists comments left on the organizer's events.
func (s *FeedbackService) OrganizerComments(ctx context.Context, actor models.Actor) ([]models.Comment, error) {
	if !actor.Organizer {
		return nil, status.ErrForbidden
	}
	return s.store.ListCommentsForOrganizer(ctx, actor.ID)
}

func (s *FeedbackService) authorOrOrganizer(ctx context.Context, actor models.Actor, authorID, eventID string) error {
	if actor.ID == authorID {
		return nil
	}
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != actor.ID {
		return status.ErrForbidden
	}
	return nil
}

// Surveys

// AnswerSurvey records the satisfaction survey of one of the actor's
// tickets. Each ticket takes a single answer.
func (s *FeedbackService) AnswerSurvey(ctx context.Context, actor models.Actor, sv models.SatisfactionSurvey) (*models.SatisfactionSurvey, error) {
	ticket, err := s.store.GetTicket(ctx, sv.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != actor.ID {
		return nil, status.ErrForbidden
	}

	_, err = s.store.FindSurvey(ctx, ticket.ID)
	if err == nil {
		return nil, status.Rule(status.ErrAlreadyAnswered, "Ya respondiste la encuesta de esta entrada.")
	}
	if !errors.Is(err, status.ErrNotFound) {
		return nil, err
	}

	if err := validateSurvey(sv); err != nil {
		return nil, err
	}

	sv.UserID = actor.ID
	sv.EventID = ticket.EventID
	sv.AdditionalComments = strings.TrimSpace(sv.AdditionalComments)
	sv.CreatedAt = s.current()
	if err := s.store.CreateSurvey(ctx, &sv); err != nil {
		if errors.Is(err, status.ErrConflict) {
			return nil, status.Rule(status.ErrAlreadyAnswered, "Ya respondiste la encuesta de esta entrada.")
		}
		return nil, fmt.Errorf("create survey: %w", err)
	}
	return &sv, nil
}
