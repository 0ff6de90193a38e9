package views

import (
	"net/http"

	"github.com/appetiteclub/pos/services/pos/internal/router"
	"github.com/appetiteclub/pos/services/pos/internal/ui"
)

// NotFound is rendered for any path the router does not know.
type NotFound struct {
	svc ui.Services
}

func NewNotFound(svc ui.Services) (*NotFound, error) {
	if err := requireServices(svc); err != nil {
		return nil, err
	}
	return &NotFound{svc: svc}, nil
}

func (v *NotFound) ID() router.ViewID { return router.ViewNotFound }

func (v *NotFound) Title() string { return "Page not found" }

func (v *NotFound) Template() string { return "notfound.html" }

func (v *NotFound) Load(r *http.Request) (map[string]interface{}, error) {
	return map[string]interface{}{
		"RequestedPath": r.URL.Path,
	}, nil
}
