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
		tickets, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}

		refunds := core.NewBaseCollection("refund_requests")
		refunds.Fields.Add(
			&core.RelationField{Name: "ticket", CollectionId: tickets.Id, MaxSelect: 1, CascadeDelete: true},
			&core.TextField{Name: "ticket_code", Required: true, Max: 50},
			&core.RelationField{Name: "user", CollectionId: users.Id, Required: true, MaxSelect: 1, CascadeDelete: true},
			&core.NumberField{Name: "amount", Min: types.Pointer(0.0)},
			&core.TextField{Name: "reason", Required: true, Max: 500},
			&core.SelectField{Name: "refund_reason", Required: true, MaxSelect: 1, Values: []string{"event_cancelled", "ticket_not_received", "other"}},
			&core.SelectField{Name: "status", Required: true, MaxSelect: 1, Values: []string{"pending", "approved", "rejected"}},
			&core.BoolField{Name: "approved"},
			&core.DateField{Name: "approval_date"},
			&core.DateField{Name: "created_at", Required: true},
		)
		refunds.AddIndex("idx_refund_requests_ticket_code", true, "ticket_code", "")
		refunds.AddIndex("idx_refund_requests_user_status", false, "user, status", "")
		return app.Save(refunds)
	}, func(app core.App) error {
		refunds, err := app.FindCollectionByNameOrId("refund_requests")
		if err != nil {
			return err
		}
		return app.Delete(refunds)
	})
}
