package views

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/appetiteclub/pos/pkg/enums/orderstate"
	"github.com/appetiteclub/pos/pkg/order"
	"github.com/appetiteclub/pos/services/pos/internal/backend"
	"github.com/appetiteclub/pos/services/pos/internal/router"
	"github.com/appetiteclub/pos/services/pos/internal/store"
	"github.com/appetiteclub/pos/services/pos/internal/ui"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

const recentOrders = 10

// Home is the order entry view. Each terminal edits its own draft, which is
// merged into an order only when submitted or stashed.
type Home struct {
	svc     ui.Services
	store   store.Store
	backend OrderBackend
	board   Board
	logger  aqm.Logger
	http    *telemetry.HTTP
}

func NewHome(svc ui.Services, st store.Store, be OrderBackend, b Board, logger aqm.Logger) (*Home, error) {
	if err := requireServices(svc); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Home{
		svc:     svc,
		store:   st,
		backend: be,
		board:   b,
		logger:  logger,
		http:    telemetry.NewHTTP(),
	}, nil
}

func (v *Home) ID() router.ViewID { return router.ViewHome }

func (v *Home) Title() string { return "Orders" }

func (v *Home) Template() string { return "home.html" }

// orderRow is one order in a Home list. EstTotal is the line sum less the
// discount as an amount; the backend prices the order.
type orderRow struct {
	ID         string
	DisplayID  string
	State      string
	StateLabel string
	Items      int
	EstTotal   string
	Comment    string
	Cancelable bool
}

func (v *Home) Load(r *http.Request) (map[string]interface{}, error) {
	ctx := r.Context()
	session := ui.SessionFrom(ctx)

	draft, err := store.LoadDraft(ctx, v.store, session)
	if err != nil {
		return nil, fmt.Errorf("cannot load draft: %w", err)
	}

	data := map[string]interface{}{
		"Draft":  draft,
		"Lines":  linesFor(draft.Items),
		"Totals": totalsFor(draft.Items, draft.Discount),
	}

	products, err := v.store.Products(ctx)
	if err != nil {
		v.logger.Error("cannot list products", "error", err)
	}
	data["Products"] = products

	var errs []error

	orders, err := v.backend.ListOrders(ctx, backend.OrderQuery{Rows: recentOrders})
	if err != nil {
		errs = append(errs, fmt.Errorf("cannot list orders: %w", err))
	}
	data["Orders"] = orderRows(orders)

	stashed, err := v.backend.ListStashed(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("cannot list stashed orders: %w", err))
	}
	data["Stashed"] = orderRows(stashed)

	unpaid, err := v.backend.ListUnpaid(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("cannot list unpaid orders: %w", err))
	}
	data["Unpaid"] = orderRows(unpaid)

	return data, errors.Join(errs...)
}

func orderRows(orders []order.Order) []orderRow {
	rows := make([]orderRow, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		rows = append(rows, orderRow{
			ID:         o.ID,
			DisplayID:  o.DisplayID,
			State:      o.State,
			StateLabel: orderstate.Label(o.State),
			Items:      o.ItemCount(),
			EstTotal:   totalsFor(o.Items, o.Discount).Due,
			Comment:    o.Comment,
			Cancelable: !orderstate.IsTerminal(o.State),
		})
	}
	return rows
}

func (v *Home) RegisterActions(r chi.Router) {
	r.Post("/home/items", v.AddItem)
	r.Post("/home/items/{id}/quantity", v.SetQuantity)
	r.Post("/home/items/{id}/remove", v.RemoveItem)
	r.Post("/home/details", v.UpdateDetails)
	r.Post("/home/clear", v.Clear)
	r.Post("/home/submit", v.Submit)
	r.Post("/home/stash", v.Stash)
	r.Post("/home/orders/{id}/cancel", v.CancelOrder)
	r.Post("/home/orders/{id}/pay", v.PayOrder)
	r.Post("/home/stashed/{id}/recall", v.Recall)
}

// AddItem adds a catalog product, or a free-form line when no product is
// given.
func (v *Home) AddItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := v.http.Start(w, r, "Home.AddItem")
	defer finish()

	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	quantity := formInt(r, "quantity", 1)
	comment := strings.TrimSpace(r.FormValue("comment"))

	var item order.OrderItem
	if productID := r.FormValue("product_id"); productID != "" {
		p, err := v.store.Product(ctx, productID)
		if err != nil {
			v.warn(ctx, "Unknown product", productID)
			aqm.RedirectOrHeader(w, r, "/")
			return
		}
		item = p.Item(quantity)
	} else {
		name := strings.TrimSpace(r.FormValue("name"))
		if name == "" {
			v.warn(ctx, "Item not added", "a product or a name is required")
			aqm.RedirectOrHeader(w, r, "/")
			return
		}
		price, err := strconv.ParseFloat(r.FormValue("price"), 64)
		if err != nil || !order.Finite(price) {
			v.warn(ctx, "Item not added", "price must be a number")
			aqm.RedirectOrHeader(w, r, "/")
			return
		}
		item = order.OrderItem{Name: name, Quantity: quantity, Price: price}
	}
	item.Comment = comment

	v.updateDraft(w, r, func(d *order.Draft) { d.AddItem(item) })
}

func (v *Home) SetQuantity(w http.ResponseWriter, r *http.Request) {
	w, r, finish := v.http.Start(w, r, "Home.SetQuantity")
	defer finish()

	id := chi.URLParam(r, "id")
	quantity := formInt(r, "quantity", 0)
	v.updateDraft(w, r, func(d *order.Draft) { d.SetQuantity(id, quantity) })
}

func (v *Home) RemoveItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := v.http.Start(w, r, "Home.RemoveItem")
	defer finish()

	id := chi.URLParam(r, "id")
	v.updateDraft(w, r, func(d *order.Draft) { d.RemoveItem(id) })
}

func (v *Home) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	w, r, finish := v.http.Start(w, r, "Home.UpdateDetails")
	defer finish()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	discount := 0.0
	if raw := strings.TrimSpace(r.FormValue("discount")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || !order.Finite(parsed) {
			v.warn(r.Context(), "Discount not changed", "discount must be a number")
			aqm.RedirectOrHeader(w, r, "/")
			return
		}
		discount = parsed
	}
	comment := r.FormValue("comment")

	v.updateDraft(w, r, func(d *order.Draft) {
		d.SetDiscount(discount)
		d.SetComment(comment)
	})
}

func (v *Home) Clear(w http.ResponseWriter, r *http.Request) {
	w, r, finish := v.http.Start(w, r, "Home.Clear")
	defer finish()

	ctx := r.Context()
	if err := v.store.DeleteDraft(ctx, ui.SessionFrom(ctx)); err != nil {
		v.fail(ctx, "Cannot clear order", err)
	}
	aqm.RedirectOrHeader(w, r, "/")
}

// Submit validates the draft, merges it into a new order and sends it to
// the backend. The draft is kept when anything fails.
func (v *Home) Submit(w http.ResponseWriter, r *http.Request) {
	w, r, finish := v.http.Start(w, r, "Home.Submit")
	defer finish()

	ctx := r.Context()
	session := ui.SessionFrom(ctx)

	draft, err := store.LoadDraft(ctx, v.store, session)
	if err != nil {
		v.fail(ctx, "Cannot load order", err)
		aqm.RedirectOrHeader(w, r, "/")
		return
	}

	if problems := draft.Validate(); len(problems) > 0 {
		v.warn(ctx, "Order not submitted", strings.Join(problems, "; "))
		aqm.RedirectOrHeader(w, r, "/")
		return
	}

	stored, err := v.backend.SubmitOrder(ctx, order.Merge(order.Record{}, draft))
	if err != nil {
		v.fail(ctx, "Order not submitted", err)
		aqm.RedirectOrHeader(w, r, "/")
		return
	}

	if err := v.store.DeleteDraft(ctx, session); err != nil {
		v.logger.Error("cannot delete submitted draft", "session", session, "error", err)
	}
	if v.board != nil {
		v.board.SetOrder(stored)
	}

	v.svc.Toasts.Add(ctx, ui.Toast{
		Severity: ui.SeveritySuccess,
		Summary:  "Order submitted",
		Detail:   fmt.Sprintf("Order %s sent to the kitchen", label(stored)),
	})
	aqm.RedirectOrHeader(w, r, "/")
}

// Stash parks the draft on the backend so the terminal can start a new one.
func (v *Home) Stash(w http.ResponseWriter, r *http.Request) {
	w, r, finish := v.http.Start(w, r, "Home.Stash")
	defer finish()

	ctx := r.Context()
	session := ui.SessionFrom(ctx)

	draft, err := store.LoadDraft(ctx, v.store, session)
	if err != nil {
		v.fail(ctx, "Cannot load order", err)
		aqm.RedirectOrHeader(w, r, "/")
		return
	}
	if draft.IsEmpty() {
		v.warn(ctx, "Nothing to stash", "the order has no items")
		aqm.RedirectOrHeader(w, r, "/")
		return
	}

	stored, err := v.backend.StashOrder(ctx, order.Merge(order.Record{}, draft))
	if err != nil {
		v.fail(ctx, "Order not stashed", err)
		aqm.RedirectOrHeader(w, r, "/")
		return
	}

	if err := v.store.DeleteDraft(ctx, session); err != nil {
		v.logger.Error("cannot delete stashed draft", "session", session, "error", err)
	}

	v.svc.Toasts.Add(ctx, ui.Toast{
		Severity: ui.SeverityInfo,
		Summary:  "Order stashed",
		Detail:   fmt.Sprintf("Order %s parked", label(stored)),
	})
	aqm.RedirectOrHeader(w, r, "/")
}

// Recall takes a stashed order off the backend stash and makes it this
// terminal's draft. The terminal's current draft must be empty.
func (v *Home) Recall(w http.ResponseWriter, r *http.Request) {
	w, r, finish := v.http.Start(w, r, "Home.Recall")
	defer finish()

	ctx := r.Context()
	session := ui.SessionFrom(ctx)
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Missing order ID", http.StatusBadRequest)
		return
	}

	current, err := store.LoadDraft(ctx, v.store, session)
	if err != nil {
		v.fail(ctx, "Cannot load order", err)
		aqm.RedirectOrHeader(w, r, "/")
		return
	}
	if !current.IsEmpty() {
		v.warn(ctx, "Order not recalled", "submit or stash the current order first")
		aqm.RedirectOrHeader(w, r, "/")
		return
	}

	stashed, err := v.backend.GetOrder(ctx, id)
	if err != nil {
		v.fail(ctx, "Order not recalled", err)
		aqm.RedirectOrHeader(w, r, "/")
		return
	}
	if stashed.State != orderstate.States.Stashed.Name {
		v.warn(ctx, "Order not recalled", fmt.Sprintf("order %s is %s", label(stashed), orderstate.Label(stashed.State)))
		aqm.RedirectOrHeader(w, r, "/")
		return
	}

	_, draft := stashed.Split()
	if err := v.store.SaveDraft(ctx, session, draft); err != nil {
		v.fail(ctx, "Order not recalled", err)
		aqm.RedirectOrHeader(w, r, "/")
		return
	}

	if _, err := v.backend.Unstash(ctx, id); err != nil {
		if derr := v.store.DeleteDraft(ctx, session); derr != nil {
			v.logger.Error("cannot drop recalled draft", "session", session, "error", derr)
		}
		v.fail(ctx, "Order not recalled", err)
		aqm.RedirectOrHeader(w, r, "/")
		return
	}

	v.svc.Toasts.Add(ctx, ui.Toast{
		Severity: ui.SeverityInfo,
		Summary:  "Order recalled",
		Detail:   fmt.Sprintf("Order %s is back in edit", label(stashed)),
	})
	aqm.RedirectOrHeader(w, r, "/")
}

// PayOrder asks for confirmation before settling an unpaid order.
func (v *Home) PayOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := v.http.Start(w, r, "Home.PayOrder")
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
		Header:      "Take payment",
		Message:     fmt.Sprintf("Mark order #%s as paid?", display),
		Icon:        "money-bill",
		AcceptLabel: "Paid",
		RejectLabel: "Not yet",
		Accept: func(ctx context.Context) error {
			paid, err := v.backend.PayOrder(ctx, id)
			if err != nil {
				return err
			}
			if v.board != nil {
				v.board.SetOrder(paid)
			}
			v.svc.Toasts.Add(ctx, ui.Toast{
				Severity: ui.SeveritySuccess,
				Summary:  "Order paid",
				Detail:   fmt.Sprintf("Order %s paid", label(paid)),
			})
			return nil
		},
	})
	if err != nil {
		v.fail(ctx, "Cannot take payment", err)
	}
	aqm.RedirectOrHeader(w, r, "/")
}

// CancelOrder asks for confirmation before cancelling a submitted order.
func (v *Home) CancelOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := v.http.Start(w, r, "Home.CancelOrder")
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
		Header:      "Cancel order",
		Message:     fmt.Sprintf("Cancel order #%s? This cannot be undone.", display),
		Icon:        "triangle-exclamation",
		AcceptLabel: "Cancel order",
		RejectLabel: "Keep",
		Accept: func(ctx context.Context) error {
			cancelled, err := v.backend.CancelOrder(ctx, id)
			if err != nil {
				return err
			}
			if v.board != nil {
				v.board.SetOrder(cancelled)
			}
			v.svc.Toasts.Add(ctx, ui.Toast{
				Severity: ui.SeverityInfo,
				Summary:  "Order cancelled",
				Detail:   fmt.Sprintf("Order %s cancelled", label(cancelled)),
			})
			return nil
		},
	})
	if err != nil {
		v.fail(ctx, "Cannot cancel order", err)
	}
	aqm.RedirectOrHeader(w, r, "/")
}

func (v *Home) updateDraft(w http.ResponseWriter, r *http.Request, edit func(d *order.Draft)) {
	ctx := r.Context()
	session := ui.SessionFrom(ctx)

	draft, err := store.LoadDraft(ctx, v.store, session)
	if err != nil {
		v.fail(ctx, "Cannot load order", err)
		aqm.RedirectOrHeader(w, r, "/")
		return
	}

	edit(&draft)

	if err := v.store.SaveDraft(ctx, session, draft); err != nil {
		v.fail(ctx, "Cannot save order", err)
	}
	aqm.RedirectOrHeader(w, r, "/")
}

func (v *Home) warn(ctx context.Context, summary, detail string) {
	v.svc.Toasts.Add(ctx, ui.Toast{Severity: ui.SeverityWarn, Summary: summary, Detail: detail})
}

func (v *Home) fail(ctx context.Context, summary string, err error) {
	v.logger.Error(strings.ToLower(summary), "request_id", aqm.RequestIDFrom(ctx), "error", err)
	v.svc.Toasts.Add(ctx, ui.Toast{Severity: ui.SeverityError, Summary: summary, Detail: err.Error()})
}

func formInt(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func label(o *order.Order) string {
	if o == nil {
		return ""
	}
	if o.DisplayID != "" {
		return "#" + o.DisplayID
	}
	return o.ID
}
