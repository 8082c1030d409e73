package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
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

		notifications := core.NewBaseCollection("notifications")
		notifications.Fields.Add(
			&core.TextField{Name: "title", Required: true, Max: 200},
			&core.TextField{Name: "message", Required: true, Max: 5000},
			&core.SelectField{Name: "priority", Required: true, MaxSelect: 1, Values: []string{"HIGH", "MEDIUM", "LOW"}},
			&core.RelationField{Name: "event", CollectionId: events.Id, MaxSelect: 1, CascadeDelete: true},
			&core.DateField{Name: "created_at", Required: true},
		)
		if err := app.Save(notifications); err != nil {
			return err
		}

		recipients := core.NewBaseCollection("notification_users")
		recipients.Fields.Add(
			&core.RelationField{Name: "notification", CollectionId: notifications.Id, Required: true, MaxSelect: 1, CascadeDelete: true},
			&core.RelationField{Name: "user", CollectionId: users.Id, Required: true, MaxSelect: 1, CascadeDelete: true},
			&core.BoolField{Name: "is_read"},
			&core.DateField{Name: "read_at"},
		)
		recipients.AddIndex("idx_notification_users_pair", true, "notification, user", "")
		recipients.AddIndex("idx_notification_users_user", false, "user", "")
		return app.Save(recipients)
	}, func(app core.App) error {
		for _, name := range []string{"notification_users", "notifications"} {
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
