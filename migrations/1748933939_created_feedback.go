package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func scoreField(name string) *core.NumberField {
	return &core.NumberField{Name: name, OnlyInt: true, Min: types.Pointer(1.0), Max: types.Pointer(5.0)}
}

func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		tickets, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}

		userRel := func() *core.RelationField {
			return &core.RelationField{Name: "user", CollectionId: users.Id, Required: true, MaxSelect: 1, CascadeDelete: true}
		}
		eventRel := func() *core.RelationField {
			return &core.RelationField{Name: "event", CollectionId: events.Id, Required: true, MaxSelect: 1, CascadeDelete: true}
		}

		favorites := core.NewBaseCollection("favorites")
		favorites.Fields.Add(userRel(), eventRel(), &core.AutodateField{Name: "created", OnCreate: true})
		favorites.AddIndex("idx_favorites_user_event", true, "user, event", "")

		ratings := core.NewBaseCollection("ratings")
		ratings.Fields.Add(
			eventRel(),
			userRel(),
			&core.TextField{Name: "title", Required: true, Max: 200},
			&core.TextField{Name: "text", Max: 2000},
			scoreField("rating"),
			&core.DateField{Name: "created_at", Required: true},
		)
		ratings.AddIndex("idx_ratings_user_event", true, "user, event", "")

		comments := core.NewBaseCollection("comments")
		comments.Fields.Add(
			eventRel(),
			userRel(),
			&core.TextField{Name: "title", Required: true, Max: 200},
			&core.TextField{Name: "text", Required: true, Max: 2000},
			&core.DateField{Name: "created_at", Required: true},
		)

		surveys := core.NewBaseCollection("satisfaction_surveys")
		surveys.Fields.Add(
			&core.RelationField{Name: "ticket", CollectionId: tickets.Id, Required: true, MaxSelect: 1, CascadeDelete: true},
			userRel(),
			eventRel(),
			scoreField("satisfaction_level"),
			scoreField("ease_of_search"),
			scoreField("payment_experience"),
			&core.BoolField{Name: "received_ticket"},
			scoreField("would_recommend"),
			&core.TextField{Name: "additional_comments", Max: 2000},
			&core.DateField{Name: "created_at", Required: true},
		)
		surveys.AddIndex("idx_satisfaction_surveys_ticket", true, "ticket", "")

		for _, c := range []*core.Collection{favorites, ratings, comments, surveys} {
			if err := app.Save(c); err != nil {
				return err
			}
		}
		return nil
	}, func(app core.App) error {
		for _, name := range []string{"satisfaction_surveys", "comments", "ratings", "favorites"} {
			collection, err := app.FindCollectionByNameOrId(name)
			if err != nil {
				return err
			}
			if err := app.Delete(collection); err != nil {
				return err
			}
		}
		return nil
	})
}
