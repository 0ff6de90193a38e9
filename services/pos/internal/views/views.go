// Package views implements the console pages. Each view loads its own data
// and renders one template; the Handler composes them into the render chain
// the router resolves for a path.
package views

import (
	"context"
	"errors"
	"net/http"

	"github.com/appetiteclub/pos/pkg/order"
	"github.com/appetiteclub/pos/services/pos/internal/backend"
	"github.com/appetiteclub/pos/services/pos/internal/board"
	"github.com/appetiteclub/pos/services/pos/internal/router"
	"github.com/appetiteclub/pos/services/pos/internal/ui"
	"github.com/go-chi/chi/v5"
)

var errServicesNotReady = errors.New("views need a complete ui services context")

// View is one node of a render chain.
type View interface {
	ID() router.ViewID
	Title() string
	// Template is the template file that defines the view. A view rendered
	// inside a parent's outlet is executed through the template named by
	// its ID.
	Template() string
	Load(r *http.Request) (map[string]interface{}, error)
}

// ActionView is a view that also accepts form posts.
type ActionView interface {
	View
	RegisterActions(r chi.Router)
}

// OrderBackend is the part of the order service the views use.
type OrderBackend interface {
	ListOrders(ctx context.Context, q backend.OrderQuery) ([]order.Order, error)
	GetOrder(ctx context.Context, id string) (*order.Order, error)
	ListStashed(ctx context.Context) ([]order.Order, error)
	ListUnpaid(ctx context.Context) ([]order.Order, error)
	SubmitOrder(ctx context.Context, o *order.Order) (*order.Order, error)
	StashOrder(ctx context.Context, o *order.Order) (*order.Order, error)
	StartOrder(ctx context.Context, id string) (*order.Order, error)
	FinishOrder(ctx context.Context, id string) (*order.Order, error)
	CancelOrder(ctx context.Context, id string) (*order.Order, error)
	Unstash(ctx context.Context, id string) (*order.Order, error)
	PayOrder(ctx context.Context, id string) (*order.Order, error)
	ListMaterials(ctx context.Context) ([]backend.Material, error)
	SalesLogs(ctx context.Context) ([]backend.SalesLog, error)
	SalesPerDay(ctx context.Context) ([]backend.DailySales, error)
}

// Board is the kitchen board state.
type Board interface {
	Column(state string) []board.Ticket
	SetOrder(o *order.Order)
}

// HealthChecker reports backend health for the admin shell.
type HealthChecker interface {
	Check(ctx context.Context) backend.HealthStatus
}

func requireServices(svc ui.Services) error {
	if !svc.Ready() {
		return errServicesNotReady
	}
	return nil
}
