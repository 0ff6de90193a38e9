package views

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/appetiteclub/pos/services/pos/internal/router"
	"github.com/appetiteclub/pos/services/pos/internal/ui"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

const baseLayout = "base.html"

// ToastBacklog hands out toasts raised for a terminal between page loads.
type ToastBacklog interface {
	Drain(session string) []ui.Toast
}

// ConfirmRegistry answers pending confirmations.
type ConfirmRegistry interface {
	Pending(session string) []ui.PendingConfirmation
	Resolve(ctx context.Context, id string, accepted bool) error
}

var mainNav = []navEntry{
	{Label: "Orders", Path: "/", Icon: "house"},
	{Label: "Kitchen", Path: "/kitchen", Icon: "utensils"},
	{Label: "Admin", Path: "/admin", Icon: "gear"},
}

// Handler serves every console page by composing the views of the resolved
// render chain, plus the view actions and the UI service endpoints.
type Handler struct {
	router   *router.Router
	views    map[router.ViewID]View
	svc      ui.Services
	toasts   ToastBacklog
	confirms ConfirmRegistry
	events   http.Handler
	logger   aqm.Logger
	http     *telemetry.HTTP
}

func NewHandler(rt *router.Router, svc ui.Services, toasts ToastBacklog, confirms ConfirmRegistry, events http.Handler, logger aqm.Logger, views ...View) (*Handler, error) {
	if err := requireServices(svc); err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, errors.New("router is required")
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	h := &Handler{
		router:   rt,
		views:    make(map[router.ViewID]View, len(views)),
		svc:      svc,
		toasts:   toasts,
		confirms: confirms,
		events:   events,
		logger:   logger,
		http:     telemetry.NewHTTP(),
	}

	for _, v := range views {
		if v == nil {
			return nil, errors.New("nil view")
		}
		if _, dup := h.views[v.ID()]; dup {
			return nil, fmt.Errorf("view %s registered twice", v.ID())
		}
		h.views[v.ID()] = v
	}

	for _, p := range rt.Paths() {
		for _, id := range rt.Resolve(p).Chain {
			if _, ok := h.views[id]; !ok {
				return nil, fmt.Errorf("route %s: no view registered for %s", p, id)
			}
		}
	}
	if _, ok := h.views[router.ViewNotFound]; !ok {
		return nil, fmt.Errorf("no view registered for %s", router.ViewNotFound)
	}

	return h, nil
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	for _, p := range h.router.Paths() {
		r.Get(p, h.Page)
	}

	for _, v := range h.views {
		if av, ok := v.(ActionView); ok {
			av.RegisterActions(r)
		}
	}

	if h.events != nil {
		r.Get("/events", h.events.ServeHTTP)
	}
	r.Post("/confirm/{id}", h.Confirm)
}

// Page renders the chain resolved for the request path. It also serves as
// the router's not-found handler, so unmatched paths get the not-found view
// with a 404 status.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.http.Start(w, r, "Handler.Page")
	defer finish()

	match := h.router.Resolve(r.URL.Path)

	body, err := h.compose(r, match)
	if err != nil {
		h.logger.Error("error rendering page", "request_id", aqm.RequestIDFrom(r.Context()), "path", match.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if !match.Found {
		status = http.StatusNotFound
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// compose renders the chain from the innermost view outwards. Each rendered
// child becomes the Outlet of its parent; the outermost view is executed
// through the base layout.
func (h *Handler) compose(r *http.Request, m router.Match) ([]byte, error) {
	ctx := r.Context()
	session := ui.SessionFrom(ctx)

	leaf, ok := h.views[m.Leaf()]
	if !ok {
		return nil, fmt.Errorf("no view registered for %s", m.Leaf())
	}

	var outlet template.HTML
	for i := len(m.Chain) - 1; i >= 0; i-- {
		v, ok := h.views[m.Chain[i]]
		if !ok {
			return nil, fmt.Errorf("no view registered for %s", m.Chain[i])
		}

		data, err := v.Load(r)
		if data == nil {
			data = map[string]interface{}{}
		}
		if err != nil {
			h.logger.Error("view data unavailable", "request_id", aqm.RequestIDFrom(ctx), "view", v.ID(), "error", err)
			h.svc.Toasts.Add(ctx, ui.Toast{
				Severity: ui.SeverityError,
				Summary:  v.Title() + " unavailable",
				Detail:   err.Error(),
			})
			data["LoadError"] = err.Error()
		}

		data["View"] = string(v.ID())
		data["Path"] = m.Path
		data["Outlet"] = outlet
		data["Icon"] = h.svc.Icons.Icon

		var buf bytes.Buffer
		if i > 0 {
			if err := h.svc.Renderer.Render(&buf, v.Template(), string(v.ID()), data); err != nil {
				return nil, fmt.Errorf("render %s: %w", v.ID(), err)
			}
			outlet = template.HTML(buf.String())
			continue
		}

		data["Title"] = leaf.Title()
		data["Template"] = string(v.ID())
		data["Chain"] = m.Chain
		data["Nav"] = mainNav
		data["Active"] = activeNav(m)
		if h.toasts != nil {
			data["Toasts"] = h.toasts.Drain(session)
		}
		if h.confirms != nil {
			data["Confirmations"] = h.confirms.Pending(session)
		}

		if err := h.svc.Renderer.Render(&buf, v.Template(), baseLayout, data); err != nil {
			return nil, fmt.Errorf("render %s: %w", v.ID(), err)
		}
		return buf.Bytes(), nil
	}

	return nil, errors.New("empty render chain")
}

func activeNav(m router.Match) string {
	if !m.Found || len(m.Chain) == 0 {
		return ""
	}
	switch m.Chain[0] {
	case router.ViewHome:
		return "/"
	default:
		return "/" + string(m.Chain[0])
	}
}

// Confirm records the terminal's answer to a pending confirmation.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.http.Start(w, r, "Handler.Confirm")
	defer finish()

	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	accepted := r.FormValue("answer") == "accept"

	if h.confirms == nil {
		http.Error(w, "Confirmations not available", http.StatusServiceUnavailable)
		return
	}

	err := h.confirms.Resolve(ctx, id, accepted)
	switch {
	case errors.Is(err, ui.ErrConfirmationNotFound), errors.Is(err, ui.ErrConfirmationExpired):
		h.svc.Toasts.Add(ctx, ui.Toast{
			Severity: ui.SeverityWarn,
			Summary:  "Confirmation expired",
			Detail:   "Please repeat the action",
		})
	case err != nil:
		h.logger.Info("confirmed action failed", "confirmation_id", id, "error", err)
	}

	aqm.RedirectOrHeader(w, r, returnPath(r.FormValue("return")))
}

// returnPath accepts only local absolute paths.
func returnPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return "/"
	}
	return p
}
