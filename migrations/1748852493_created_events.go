package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

// Event states as stored in the status select.
var eventStatuses = []string{"Activo", "Cancelado", "Reprogramado", "Agotado", "Finalizado"}

func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}
		venues, err := app.FindCollectionByNameOrId("venues")
		if err != nil {
			return err
		}
		categories, err := app.FindCollectionByNameOrId("categories")
		if err != nil {
			return err
		}

		events := core.NewBaseCollection("events")
		events.Fields.Add(
			&core.TextField{Name: "title", Required: true, Max: 200},
			&core.TextField{Name: "description", Required: true, Max: 5000},
			&core.DateField{Name: "scheduled_at", Required: true},
			&core.RelationField{Name: "organizer", CollectionId: users.Id, Required: true, MaxSelect: 1, CascadeDelete: true},
			&core.RelationField{Name: "category", CollectionId: categories.Id, MaxSelect: 1},
			&core.RelationField{Name: "venue", CollectionId: venues.Id, MaxSelect: 1},
			// zero means no capacity limit
			&core.NumberField{Name: "capacity", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.SelectField{Name: "status", Required: true, MaxSelect: 1, Values: eventStatuses},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)
		events.AddIndex("idx_events_scheduled_at", false, "scheduled_at", "")
		events.AddIndex("idx_events_organizer", false, "organizer", "")
		return app.Save(events)
	}, func(app core.App) error {
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		return app.Delete(events)
	})
}
