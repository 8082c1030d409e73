package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"github.com/Joaquin123L/eventhub/models"
)

// Favorites

func (s *Store) FindFavorite(ctx context.Context, userID, eventID string) (*models.Favorite, error) {
	r, err := s.findFirst(colFavorites, dbx.HashExp{"user": userID, "event": eventID})
	if err != nil {
		return nil, err
	}
	return &models.Favorite{ID: r.Id, UserID: userID, EventID: eventID}, nil
}

func (s *Store) CreateFavorite(ctx context.Context, f *models.Favorite) error {
	r, err := s.newRecord(colFavorites)
	if err != nil {
		return err
	}
	r.Set("user", f.UserID)
	r.Set("event", f.EventID)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	f.ID = r.Id
	return nil
}

func (s *Store) DeleteFavorite(ctx context.Context, id string) error {
	return s.delete(ctx, colFavorites, id)
}

func (s *Store) FavoriteEventIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.app.DB().
		Select("event").
		From(colFavorites).
		Where(dbx.HashExp{"user": userID}).
		WithContext(ctx).
		Column(&ids)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return ids, nil
}

// Ratings

func ratingFromRecord(r *core.Record) *models.Rating {
	return &models.Rating{
		ID:        r.Id,
		EventID:   r.GetString("event"),
		UserID:    r.GetString("user"),
		Title:     r.GetString("title"),
		Text:      r.GetString("text"),
		Score:     r.GetInt("rating"),
		CreatedAt: getTime(r, "created_at"),
	}
}

func ratingToRecord(rt *models.Rating, r *core.Record) {
	r.Set("event", rt.EventID)
	r.Set("user", rt.UserID)
	r.Set("title", rt.Title)
	r.Set("text", rt.Text)
	r.Set("rating", rt.Score)
	r.Set("created_at", rt.CreatedAt)
}

func (s *Store) GetRating(ctx context.Context, id string) (*models.Rating, error) {
	r, err := s.find(colRatings, id)
	if err != nil {
		return nil, err
	}
	return ratingFromRecord(r), nil
}

func (s *Store) FindRating(ctx context.Context, userID, eventID string) (*models.Rating, error) {
	r, err := s.findFirst(colRatings, dbx.HashExp{"user": userID, "event": eventID})
	if err != nil {
		return nil, err
	}
	return ratingFromRecord(r), nil
}

func (s *Store) CreateRating(ctx context.Context, rt *models.Rating) error {
	r, err := s.newRecord(colRatings)
	if err != nil {
		return err
	}
	ratingToRecord(rt, r)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	rt.ID = r.Id
	return nil
}

func (s *Store) SaveRating(ctx context.Context, rt *models.Rating) error {
	r, err := s.find(colRatings, rt.ID)
	if err != nil {
		return err
	}
	ratingToRecord(rt, r)
	return s.save(ctx, r)
}

func (s *Store) DeleteRating(ctx context.Context, id string) error {
	return s.delete(ctx, colRatings, id)
}

func (s *Store) ListRatings(ctx context.Context, eventID string) ([]models.Rating, error) {
	records, err := s.all(ctx, colRatings, dbx.HashExp{"event": eventID}, "created_at DESC")
	if err != nil {
		return nil, err
	}
	out := make([]models.Rating, 0, len(records))
	for _, r := range records {
		out = append(out, *ratingFromRecord(r))
	}
	return out, nil
}

// Comments

func commentFromRecord(r *core.Record) *models.Comment {
	return &models.Comment{
		ID:        r.Id,
		EventID:   r.GetString("event"),
		UserID:    r.GetString("user"),
		Title:     r.GetString("title"),
		Text:      r.GetString("text"),
		CreatedAt: getTime(r, "created_at"),
	}
}

func (s *Store) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	r, err := s.find(colComments, id)
	if err != nil {
		return nil, err
	}
	return commentFromRecord(r), nil
}

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	r, err := s.newRecord(colComments)
	if err != nil {
		return err
	}
	r.Set("event", c.EventID)
	r.Set("user", c.UserID)
	r.Set("title", c.Title)
	r.Set("text", c.Text)
	r.Set("created_at", c.CreatedAt)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	c.ID = r.Id
	return nil
}

func (s *Store) SaveComment(ctx context.Context, c *models.Comment) error {
	r, err := s.find(colComments, c.ID)
	if err != nil {
		return err
	}
	r.Set("title", c.Title)
	r.Set("text", c.Text)
	return s.save(ctx, r)
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	return s.delete(ctx, colComments, id)
}

func (s *Store) commentsWhere(ctx context.Context, where dbx.Expression) ([]models.Comment, error) {
	records, err := s.all(ctx, colComments, where, "created_at DESC")
	if err != nil {
		return nil, err
	}
	out := make([]models.Comment, 0, len(records))
	for _, r := range records {
		out = append(out, *commentFromRecord(r))
	}
	return out, nil
}

func (s *Store) ListComments(ctx context.Context, eventID string) ([]models.Comment, error) {
	return s.commentsWhere(ctx, dbx.HashExp{"event": eventID})
}

func (s *Store) ListCommentsForOrganizer(ctx context.Context, organizerID string) ([]models.Comment, error) {
	return s.commentsWhere(ctx, dbx.NewExp(
		"event IN (SELECT id FROM events WHERE organizer = {:organizer})",
		dbx.Params{"organizer": organizerID},
	))
}

// Surveys

func (s *Store) FindSurvey(ctx context.Context, ticketID string) (*models.SatisfactionSurvey, error) {
	r, err := s.findFirst(colSurveys, dbx.HashExp{"ticket": ticketID})
	if err != nil {
		return nil, err
	}
	return &models.SatisfactionSurvey{
		ID:                 r.Id,
		TicketID:           r.GetString("ticket"),
		UserID:             r.GetString("user"),
		EventID:            r.GetString("event"),
		SatisfactionLevel:  r.GetInt("satisfaction_level"),
		EaseOfSearch:       r.GetInt("ease_of_search"),
		PaymentExperience:  r.GetInt("payment_experience"),
		ReceivedTicket:     r.GetBool("received_ticket"),
		WouldRecommend:     r.GetInt("would_recommend"),
		AdditionalComments: r.GetString("additional_comments"),
		CreatedAt:          getTime(r, "created_at"),
	}, nil
}

func (s *Store) CreateSurvey(ctx context.Context, sv *models.SatisfactionSurvey) error {
	r, err := s.newRecord(colSurveys)
	if err != nil {
		return err
	}
	r.Set("ticket", sv.TicketID)
	r.Set("user", sv.UserID)
	r.Set("event", sv.EventID)
	r.Set("satisfaction_level", sv.SatisfactionLevel)
	r.Set("ease_of_search", sv.EaseOfSearch)
	r.Set("payment_experience", sv.PaymentExperience)
	r.Set("received_ticket", sv.ReceivedTicket)
	r.Set("would_recommend", sv.WouldRecommend)
	r.Set("additional_comments", sv.AdditionalComments)
	r.Set("created_at", sv.CreatedAt)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	sv.ID = r.Id
	return nil
}
