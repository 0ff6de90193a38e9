package views

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/appetiteclub/pos/pkg/enums/orderstate"
	"github.com/appetiteclub/pos/services/pos/internal/board"
	"github.com/appetiteclub/pos/services/pos/internal/router"
	"github.com/appetiteclub/pos/services/pos/internal/ui"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

// Kitchen shows submitted orders as a board with one column per state.
type Kitchen struct {
	svc     ui.Services
	board   Board
	backend OrderBackend
	logger  aqm.Logger
	http    *telemetry.HTTP
	now     func() time.Time
}

func NewKitchen(svc ui.Services, b Board, be OrderBackend, logger aqm.Logger) (*Kitchen, error) {
	if err := requireServices(svc); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Kitchen{
		svc:     svc,
		board:   b,
		backend: be,
		logger:  logger,
		http:    telemetry.NewHTTP(),
		now:     time.Now,
	}, nil
}

func (v *Kitchen) ID() router.ViewID { return router.ViewKitchen }

func (v *Kitchen) Title() string { return "Kitchen" }

func (v *Kitchen) Template() string { return "kitchen.html" }

// ColumnView is one state column of the board.
type ColumnView struct {
	State      string
	StateLabel string
	Tickets    []TicketView
}

type TicketView struct {
	board.Ticket
	Waiting  string
	CanStart bool
	CanEnd   bool
}

func (v *Kitchen) Load(r *http.Request) (map[string]interface{}, error) {
	columns := make([]ColumnView, 0, len(orderstate.Board))
	total := 0

	for _, s := range orderstate.Board {
		col := ColumnView{State: s.Code(), StateLabel: s.Label(), Tickets: []TicketView{}}
		if v.board != nil {
			for _, t := range v.board.Column(s.Code()) {
				col.Tickets = append(col.Tickets, TicketView{
					Ticket:   t,
					Waiting:  waiting(v.now(), t.SubmittedAt),
					CanStart: t.State == orderstate.States.New.Name,
					CanEnd:   t.State == orderstate.States.InProgress.Name,
				})
			}
		}
		total += len(col.Tickets)
		columns = append(columns, col)
	}

	return map[string]interface{}{
		"Columns": columns,
		"Total":   total,
	}, nil
}

func waiting(now, since time.Time) string {
	if since.IsZero() {
		return ""
	}
	d := now.Sub(since).Round(time.Minute)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%d min", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
}

func (v *Kitchen) RegisterActions(r chi.Router) {
	r.Post("/kitchen/orders/{id}/start", v.StartOrder)
	r.Post("/kitchen/orders/{id}/finish", v.FinishOrder)
}

func (v *Kitchen) StartOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := v.http.Start(w, r, "Kitchen.StartOrder")
	defer finish()

	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Missing order ID", http.StatusBadRequest)
		return
	}

	started, err := v.backend.StartOrder(ctx, id)
	if err != nil {
		v.logger.Error("cannot start order", "request_id", aqm.RequestIDFrom(ctx), "order_id", id, "error", err)
		v.svc.Toasts.Add(ctx, ui.Toast{Severity: ui.SeverityError, Summary: "Order not started", Detail: err.Error()})
		aqm.RedirectOrHeader(w, r, "/kitchen")
		return
	}

	if v.board != nil {
		v.board.SetOrder(started)
	}
	v.svc.Toasts.Add(ctx, ui.Toast{
		Severity: ui.SeverityInfo,
		Summary:  "Order started",
		Detail:   fmt.Sprintf("Order %s in progress", label(started)),
	})
	aqm.RedirectOrHeader(w, r, "/kitchen")
}

// FinishOrder asks for confirmation, then marks the order complete.
func (v *Kitchen) FinishOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := v.http.Start(w, r, "Kitchen.FinishOrder")
	defer finish()

	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Missing order ID", http.StatusBadRequest)
		return
	}
	display := r.FormValue("display_id")
	if display == "" {
		display = id
	}

	_, err := v.svc.Confirms.Require(ctx, ui.Confirmation{
		Header:      "Finish order",
		Message:     fmt.Sprintf("Is order #%s ready?", display),
		Icon:        "check",
		AcceptLabel: "Ready",
		RejectLabel: "Not yet",
		Accept: func(ctx context.Context) error {
			finished, err := v.backend.FinishOrder(ctx, id)
			if err != nil {
				return err
			}
			if v.board != nil {
				v.board.SetOrder(finished)
			}
			v.svc.Toasts.Add(ctx, ui.Toast{
				Severity: ui.SeveritySuccess,
				Summary:  "Order finished",
				Detail:   fmt.Sprintf("Order %s is ready", label(finished)),
			})
			return nil
		},
	})
	if err != nil {
		v.logger.Error("cannot request confirmation", "order_id", id, "error", err)
		v.svc.Toasts.Add(ctx, ui.Toast{Severity: ui.SeverityError, Summary: "Cannot finish order", Detail: err.Error()})
	}
	aqm.RedirectOrHeader(w, r, "/kitchen")
}
