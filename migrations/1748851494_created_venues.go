package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		venues := core.NewBaseCollection("venues")
		venues.Fields.Add(
			&core.TextField{Name: "name", Required: true, Min: 3, Max: 200},
			&core.TextField{Name: "address", Required: true, Min: 3, Max: 300},
			&core.TextField{Name: "city", Required: true, Min: 3, Max: 200},
			&core.NumberField{Name: "capacity", OnlyInt: true, Min: types.Pointer(1.0)},
			&core.TextField{Name: "contact", Max: 200},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)
		if err := app.Save(venues); err != nil {
			return err
		}

		categories := core.NewBaseCollection("categories")
		categories.Fields.Add(
			&core.TextField{Name: "name", Required: true, Max: 100},
			&core.TextField{Name: "description", Max: 1000},
			&core.BoolField{Name: "is_active"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)
		return app.Save(categories)
	}, func(app core.App) error {
		for _, name := range []string{"categories", "venues"} {
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
