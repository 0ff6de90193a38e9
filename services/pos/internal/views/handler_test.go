package views

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/appetiteclub/pos/pkg/order"
	"github.com/appetiteclub/pos/services/pos/internal/backend"
	"github.com/appetiteclub/pos/services/pos/internal/router"
	"github.com/appetiteclub/pos/services/pos/internal/store"
	"github.com/appetiteclub/pos/services/pos/internal/ui"
	"github.com/go-chi/chi/v5"
)

type handlerFixture struct {
	testServices
	backend *MockBackend
	board   *MockBoard
	mux     *chi.Mux
}

func newHandlerFixture(t *testing.T) handlerFixture {
	t.Helper()

	ts := newTestServices(t)
	be := &MockBackend{}
	b := &MockBoard{}

	rt, err := router.New(router.DefaultRoutes())
	if err != nil {
		t.Fatalf("router.New() error = %v", err)
	}

	home, err := NewHome(ts.svc, store.NewMemoryStore(), be, b, nil)
	if err != nil {
		t.Fatalf("NewHome() error = %v", err)
	}
	kitchen, _ := NewKitchen(ts.svc, b, be, nil)
	admin, _ := NewAdmin(ts.svc, MockHealth{Status: backend.HealthServing})
	inventory, _ := NewInventory(ts.svc, be, 5)
	sales, _ := NewSales(ts.svc, be)
	notFound, _ := NewNotFound(ts.svc)

	h, err := NewHandler(rt, ts.svc, ts.toasts, ts.confirms, nil, nil, home, kitchen, admin, inventory, sales, notFound)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	mux := chi.NewRouter()
	mux.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ui.WithSession(r.Context(), testSession)))
		})
	})
	h.RegisterRoutes(mux)
	mux.NotFound(h.Page)

	return handlerFixture{testServices: ts, backend: be, board: b, mux: mux}
}

func (f handlerFixture) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func TestNewHandlerRequiresEveryView(t *testing.T) {
	ts := newTestServices(t)
	rt, err := router.New(router.DefaultRoutes())
	if err != nil {
		t.Fatalf("router.New() error = %v", err)
	}
	home, _ := NewHome(ts.svc, store.NewMemoryStore(), &MockBackend{}, nil, nil)
	kitchen, _ := NewKitchen(ts.svc, nil, &MockBackend{}, nil)
	admin, _ := NewAdmin(ts.svc, nil)
	inventory, _ := NewInventory(ts.svc, &MockBackend{}, 1)
	sales, _ := NewSales(ts.svc, &MockBackend{})
	notFound, _ := NewNotFound(ts.svc)

	tests := []struct {
		name    string
		views   []View
		wantErr string
	}{
		{name: "missingSales", views: []View{home, kitchen, admin, inventory, notFound}, wantErr: "sales"},
		{name: "missingNotFound", views: []View{home, kitchen, admin, inventory, sales}, wantErr: "not-found"},
		{name: "duplicate", views: []View{home, home, kitchen, admin, inventory, sales, notFound}, wantErr: "twice"},
		{name: "complete", views: []View{home, kitchen, admin, inventory, sales, notFound}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHandler(rt, ts.svc, ts.toasts, ts.confirms, nil, nil, tt.views...)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("NewHandler() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewHandler() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewHandlerRequiresServices(t *testing.T) {
	rt, _ := router.New(router.DefaultRoutes())
	if _, err := NewHandler(rt, ui.Services{}, nil, nil, nil, nil); err == nil {
		t.Error("NewHandler() with empty services should fail")
	}
}

func TestHandlerPage(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
		wantTitle  string
	}{
		{
			name:       "root",
			path:       "/",
			wantStatus: http.StatusOK,
			wantBody:   "<home.html|base.html></home.html>",
			wantTitle:  "Orders",
		},
		{
			name:       "homeAlias",
			path:       "/home",
			wantStatus: http.StatusOK,
			wantBody:   "<home.html|base.html></home.html>",
			wantTitle:  "Orders",
		},
		{
			name:       "kitchenCaseAndSlash",
			path:       "/Kitchen/",
			wantStatus: http.StatusOK,
			wantBody:   "<kitchen.html|base.html></kitchen.html>",
			wantTitle:  "Kitchen",
		},
		{
			name:       "adminShellEmptyOutlet",
			path:       "/admin",
			wantStatus: http.StatusOK,
			wantBody:   "<admin.html|base.html></admin.html>",
			wantTitle:  "Admin",
		},
		{
			name:       "adminSalesNested",
			path:       "/admin/sales",
			wantStatus: http.StatusOK,
			wantBody:   "<admin.html|base.html><sales.html|sales></sales.html></admin.html>",
			wantTitle:  "Sales",
		},
		{
			name:       "adminInventoryNested",
			path:       "/admin/inventory?sort=name",
			wantStatus: http.StatusOK,
			wantBody:   "<admin.html|base.html><inventory.html|inventory></inventory.html></admin.html>",
			wantTitle:  "Inventory",
		},
		{
			name:       "unknownPath",
			path:       "/reports",
			wantStatus: http.StatusNotFound,
			wantBody:   "<notfound.html|base.html></notfound.html>",
			wantTitle:  "Page not found",
		},
		{
			name:       "doubleSlashUnknown",
			path:       "//reports",
			wantStatus: http.StatusNotFound,
			wantBody:   "<notfound.html|base.html></notfound.html>",
			wantTitle:  "Page not found",
		},
		{
			name:       "doubleSlashKitchen",
			path:       "//kitchen",
			wantStatus: http.StatusNotFound,
			wantBody:   "<notfound.html|base.html></notfound.html>",
			wantTitle:  "Page not found",
		},
		{
			name:       "unknownChild",
			path:       "/admin/payroll",
			wantStatus: http.StatusNotFound,
			wantBody:   "<notfound.html|base.html></notfound.html>",
			wantTitle:  "Page not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)

			w := f.serve(httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Body.String(); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
			last := f.renderer.last()
			if last.Layout != baseLayout {
				t.Errorf("outermost layout = %q, want %q", last.Layout, baseLayout)
			}
			if last.Data["Title"] != tt.wantTitle {
				t.Errorf("Title = %v, want %q", last.Data["Title"], tt.wantTitle)
			}
			if _, ok := last.Data["Icon"]; !ok {
				t.Error("base data has no Icon func")
			}
		})
	}
}

func TestHandlerPageNotFoundKeepsRequestedPath(t *testing.T) {
	f := newHandlerFixture(t)

	f.serve(httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if got := f.renderer.last().Data["RequestedPath"]; got != "/nowhere" {
		t.Errorf("RequestedPath = %v, want /nowhere", got)
	}
}

func TestHandlerPageLoadErrorRaisesToast(t *testing.T) {
	f := newHandlerFixture(t)
	f.backend.ListOrdersFunc = func(ctx context.Context, q backend.OrderQuery) ([]order.Order, error) {
		return nil, errors.New("order service down")
	}

	w := f.serve(httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	last := f.renderer.last()
	toasts, _ := last.Data["Toasts"].([]ui.Toast)
	if len(toasts) != 1 || toasts[0].Summary != "Orders unavailable" {
		t.Fatalf("Toasts = %v, want one 'Orders unavailable'", summaries(toasts))
	}
	if toasts[0].Severity != ui.SeverityError {
		t.Errorf("Severity = %s, want %s", toasts[0].Severity, ui.SeverityError)
	}
	if last.Data["LoadError"] == nil {
		t.Error("LoadError not set")
	}
}

func TestHandlerPageRenderFailure(t *testing.T) {
	f := newHandlerFixture(t)
	f.renderer.failOn = "sales.html"

	w := f.serve(httptest.NewRequest(http.MethodGet, "/admin/sales", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestHandlerConfirmAccept(t *testing.T) {
	f := newHandlerFixture(t)
	var finished []string
	f.backend.FinishOrderFunc = func(ctx context.Context, id string) (*order.Order, error) {
		finished = append(finished, id)
		return &order.Order{ID: id, DisplayID: "12", State: "complete"}, nil
	}

	f.serve(postForm("/kitchen/orders/o-1/finish", url.Values{"display_id": {"12"}}))

	if len(finished) != 0 {
		t.Fatal("order finished before confirmation")
	}
	pending := f.confirms.Pending(testSession)
	if len(pending) != 1 {
		t.Fatalf("pending confirmations = %d, want 1", len(pending))
	}
	if !strings.Contains(pending[0].Message, "#12") {
		t.Errorf("Message = %q, want display id", pending[0].Message)
	}

	f.serve(postForm("/confirm/"+pending[0].ID, url.Values{"answer": {"accept"}, "return": {"/kitchen"}}))

	if len(finished) != 1 || finished[0] != "o-1" {
		t.Errorf("finished = %v, want [o-1]", finished)
	}
	if len(f.board.Set) != 1 {
		t.Errorf("board updates = %d, want 1", len(f.board.Set))
	}
	if got := summaries(f.toasts.Drain(testSession)); len(got) != 1 || got[0] != "Order finished" {
		t.Errorf("toasts = %v, want [Order finished]", got)
	}
	if len(f.confirms.Pending(testSession)) != 0 {
		t.Error("confirmation still pending after answer")
	}
}

func TestHandlerConfirmReject(t *testing.T) {
	f := newHandlerFixture(t)
	called := false
	f.backend.CancelOrderFunc = func(ctx context.Context, id string) (*order.Order, error) {
		called = true
		return &order.Order{ID: id}, nil
	}

	f.serve(postForm("/home/orders/o-2/cancel", url.Values{}))
	pending := f.confirms.Pending(testSession)
	if len(pending) != 1 {
		t.Fatalf("pending confirmations = %d, want 1", len(pending))
	}

	f.serve(postForm("/confirm/"+pending[0].ID, url.Values{"answer": {"reject"}}))

	if called {
		t.Error("order cancelled after rejection")
	}
	if got := f.toasts.Drain(testSession); len(got) != 0 {
		t.Errorf("toasts = %v, want none", summaries(got))
	}
}

func TestHandlerConfirmUnknown(t *testing.T) {
	f := newHandlerFixture(t)

	f.serve(postForm("/confirm/missing", url.Values{"answer": {"accept"}}))

	got := f.toasts.Drain(testSession)
	if len(got) != 1 || got[0].Severity != ui.SeverityWarn {
		t.Errorf("toasts = %v, want one warning", summaries(got))
	}
}

func TestReturnPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "/"},
		{in: "/kitchen", want: "/kitchen"},
		{in: "/admin/sales", want: "/admin/sales"},
		{in: "//evil.example", want: "/"},
		{in: "https://evil.example", want: "/"},
		{in: "/\\evil", want: "/"},
	}

	for _, tt := range tests {
		if got := returnPath(tt.in); got != tt.want {
			t.Errorf("returnPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
