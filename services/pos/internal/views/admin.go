package views

import (
	"net/http"

	"github.com/appetiteclub/pos/services/pos/internal/backend"
	"github.com/appetiteclub/pos/services/pos/internal/router"
	"github.com/appetiteclub/pos/services/pos/internal/ui"
)

type navEntry struct {
	Label string
	Path  string
	Icon  string
}

var adminNav = []navEntry{
	{Label: "Inventory", Path: "/admin/inventory", Icon: "boxes"},
	{Label: "Sales", Path: "/admin/sales", Icon: "chart-line"},
}

// Admin is the shell around the back-office views. Its outlet is empty at
// /admin and holds the child view below it.
type Admin struct {
	svc    ui.Services
	health HealthChecker
}

func NewAdmin(svc ui.Services, health HealthChecker) (*Admin, error) {
	if err := requireServices(svc); err != nil {
		return nil, err
	}
	return &Admin{svc: svc, health: health}, nil
}

func (v *Admin) ID() router.ViewID { return router.ViewAdmin }

func (v *Admin) Title() string { return "Admin" }

func (v *Admin) Template() string { return "admin.html" }

func (v *Admin) Load(r *http.Request) (map[string]interface{}, error) {
	status := backend.HealthUnknown
	if v.health != nil {
		status = v.health.Check(r.Context())
	}

	return map[string]interface{}{
		"AdminNav":    adminNav,
		"Health":      string(status),
		"HealthLabel": status.Label(),
		"Healthy":     status == backend.HealthServing,
	}, nil
}
