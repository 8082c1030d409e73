package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

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

		discounts := core.NewBaseCollection("discount_codes")
		discounts.Fields.Add(
			&core.TextField{Name: "code", Required: true, Max: 50},
			&core.RelationField{Name: "event", CollectionId: events.Id, Required: true, MaxSelect: 1, CascadeDelete: true},
			&core.NumberField{Name: "discount_percentage", Min: types.Pointer(0.0), Max: types.Pointer(100.0)},
			&core.DateField{Name: "valid_from", Required: true},
			&core.DateField{Name: "valid_until", Required: true},
			&core.BoolField{Name: "is_active"},
			&core.AutodateField{Name: "created", OnCreate: true},
		)
		discounts.AddIndex("idx_discount_codes_event_code", true, "event, code", "")
		if err := app.Save(discounts); err != nil {
			return err
		}

		tickets := core.NewBaseCollection("tickets")
		tickets.Fields.Add(
			&core.TextField{Name: "ticket_code", Required: true, Max: 50},
			&core.RelationField{Name: "user", CollectionId: users.Id, Required: true, MaxSelect: 1, CascadeDelete: true},
			&core.RelationField{Name: "event", CollectionId: events.Id, Required: true, MaxSelect: 1, CascadeDelete: true},
			&core.NumberField{Name: "quantity", OnlyInt: true, Min: types.Pointer(1.0)},
			&core.SelectField{Name: "type", Required: true, MaxSelect: 1, Values: []string{"general", "vip"}},
			// Deleting a code empties this relation; the percentage stays.
			&core.RelationField{Name: "discount_code", CollectionId: discounts.Id, MaxSelect: 1},
			&core.NumberField{Name: "discount_percentage", Min: types.Pointer(0.0), Max: types.Pointer(100.0)},
			&core.DateField{Name: "buy_date", Required: true},
		)
		tickets.AddIndex("idx_tickets_ticket_code", true, "ticket_code", "")
		tickets.AddIndex("idx_tickets_event_user", false, "event, user", "")
		return app.Save(tickets)
	}, func(app core.App) error {
		for _, name := range []string{"tickets", "discount_codes"} {
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
