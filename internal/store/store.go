// Package store persists the domain in PocketBase collections.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"

	"github.com/Joaquin123L/eventhub/internal/services"
	"github.com/Joaquin123L/eventhub/internal/status"
)

const (
	colEvents        = "events"
	colVenues        = "venues"
	colCategories    = "categories"
	colTickets       = "tickets"
	colDiscounts     = "discount_codes"
	colNotifications = "notifications"
	colRecipients    = "notification_users"
	colRefunds       = "refund_requests"
	colFavorites     = "favorites"
	colRatings       = "ratings"
	colComments      = "comments"
	colSurveys       = "satisfaction_surveys"
)

// Store implements services.Store on top of a PocketBase app. Inside
// RunInTx the app is the transactional one, so every call made through the
// tx Store shares the same transaction.
type Store struct {
	app core.App
}

var _ services.Store = (*Store)(nil)

func New(app core.App) *Store {
	return &Store{app: app}
}

func (s *Store) RunInTx(ctx context.Context, fn func(tx services.Store) error) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(&Store{app: txApp})
	})
}

func (s *Store) newRecord(collection string) (*core.Record, error) {
	c, err := s.app.FindCachedCollectionByNameOrId(collection)
	if err != nil {
		return nil, fmt.Errorf("find collection %s: %w", collection, err)
	}
	return core.NewRecord(c), nil
}

func (s *Store) find(collection, id string) (*core.Record, error) {
	if id == "" {
		return nil, status.ErrNotFound
	}
	record, err := s.app.FindRecordById(collection, id)
	if err != nil {
		return nil, notFound(err)
	}
	return record, nil
}

func (s *Store) findFirst(collection string, where dbx.HashExp) (*core.Record, error) {
	record := &core.Record{}
	err := s.app.RecordQuery(collection).AndWhere(where).Limit(1).One(record)
	if err != nil {
		return nil, notFound(err)
	}
	return record, nil
}

func (s *Store) all(ctx context.Context, collection string, where dbx.Expression, orderBy ...string) ([]*core.Record, error) {
	records := []*core.Record{}
	q := s.app.RecordQuery(collection).WithContext(ctx)
	if where != nil {
		q.AndWhere(where)
	}
	if len(orderBy) > 0 {
		q.OrderBy(orderBy...)
	}
	if err := q.All(&records); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return records, nil
}

func (s *Store) save(ctx context.Context, record *core.Record) error {
	return conflict(s.app.SaveWithContext(ctx, record))
}

func (s *Store) delete(ctx context.Context, collection, id string) error {
	record, err := s.find(collection, id)
	if err != nil {
		return err
	}
	return s.app.DeleteWithContext(ctx, record)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return status.ErrNotFound
	}
	return err
}

// conflict maps unique index violations to status.ErrConflict.
func conflict(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for _, fieldErr := range verrs {
			var ve validation.Error
			if errors.As(fieldErr, &ve) && ve.Code() == "validation_not_unique" {
				return fmt.Errorf("%w: %v", status.ErrConflict, err)
			}
		}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", status.ErrConflict, err)
	}
	return err
}

func dbTime(t time.Time) string {
	return t.UTC().Format(types.DefaultDateLayout)
}

func getTime(r *core.Record, field string) time.Time {
	return r.GetDateTime(field).Time()
}

func getTimePtr(r *core.Record, field string) *time.Time {
	dt := r.GetDateTime(field)
	if dt.IsZero() {
		return nil
	}
	t := dt.Time()
	return &t
}

func setTimePtr(r *core.Record, field string, t *time.Time) {
	if t == nil {
		r.Set(field, "")
		return
	}
	r.Set(field, *t)
}

func getDecimal(r *core.Record, field string) decimal.Decimal {
	return decimal.NewFromFloat(r.GetFloat(field))
}

func setDecimal(r *core.Record, field string, d decimal.Decimal) {
	r.Set(field, d.InexactFloat64())
}
