package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/appetiteclub/pos/pkg/order"
	"github.com/appetiteclub/pos/services/pos/internal/backend"
	"github.com/appetiteclub/pos/services/pos/internal/board"
	"github.com/appetiteclub/pos/services/pos/internal/ui"
)

const testSession = "terminal-1"

type renderCall struct {
	Template string
	Layout   string
	Data     map[string]interface{}
}

// recordingRenderer writes a bracketed trace of each call so tests can
// assert on the composed chain.
type recordingRenderer struct {
	mu     sync.Mutex
	calls  []renderCall
	failOn string
}

func (r *recordingRenderer) Render(w io.Writer, templateName, layout string, data map[string]interface{}) error {
	if templateName == r.failOn {
		return errors.New("template error")
	}
	r.mu.Lock()
	r.calls = append(r.calls, renderCall{Template: templateName, Layout: layout, Data: data})
	r.mu.Unlock()
	_, err := fmt.Fprintf(w, "<%s|%s>%s</%s>", templateName, layout, data["Outlet"], templateName)
	return err
}

func (r *recordingRenderer) last() renderCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return renderCall{}
	}
	return r.calls[len(r.calls)-1]
}

type MockBackend struct {
	ListOrdersFunc    func(ctx context.Context, q backend.OrderQuery) ([]order.Order, error)
	GetOrderFunc      func(ctx context.Context, id string) (*order.Order, error)
	ListStashedFunc   func(ctx context.Context) ([]order.Order, error)
	ListUnpaidFunc    func(ctx context.Context) ([]order.Order, error)
	SubmitOrderFunc   func(ctx context.Context, o *order.Order) (*order.Order, error)
	StashOrderFunc    func(ctx context.Context, o *order.Order) (*order.Order, error)
	StartOrderFunc    func(ctx context.Context, id string) (*order.Order, error)
	FinishOrderFunc   func(ctx context.Context, id string) (*order.Order, error)
	CancelOrderFunc   func(ctx context.Context, id string) (*order.Order, error)
	UnstashFunc       func(ctx context.Context, id string) (*order.Order, error)
	PayOrderFunc      func(ctx context.Context, id string) (*order.Order, error)
	ListMaterialsFunc func(ctx context.Context) ([]backend.Material, error)
	SalesLogsFunc     func(ctx context.Context) ([]backend.SalesLog, error)
	SalesPerDayFunc   func(ctx context.Context) ([]backend.DailySales, error)
}

func (m *MockBackend) ListOrders(ctx context.Context, q backend.OrderQuery) ([]order.Order, error) {
	if m.ListOrdersFunc != nil {
		return m.ListOrdersFunc(ctx, q)
	}
	return nil, nil
}

func (m *MockBackend) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, id)
	}
	return nil, errors.New("order not found")
}

func (m *MockBackend) ListStashed(ctx context.Context) ([]order.Order, error) {
	if m.ListStashedFunc != nil {
		return m.ListStashedFunc(ctx)
	}
	return nil, nil
}

func (m *MockBackend) ListUnpaid(ctx context.Context) ([]order.Order, error) {
	if m.ListUnpaidFunc != nil {
		return m.ListUnpaidFunc(ctx)
	}
	return nil, nil
}

func (m *MockBackend) SubmitOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	if m.SubmitOrderFunc != nil {
		return m.SubmitOrderFunc(ctx, o)
	}
	return o, nil
}

func (m *MockBackend) StashOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	if m.StashOrderFunc != nil {
		return m.StashOrderFunc(ctx, o)
	}
	return o, nil
}

func (m *MockBackend) StartOrder(ctx context.Context, id string) (*order.Order, error) {
	if m.StartOrderFunc != nil {
		return m.StartOrderFunc(ctx, id)
	}
	return &order.Order{ID: id, State: "in_progress"}, nil
}

func (m *MockBackend) FinishOrder(ctx context.Context, id string) (*order.Order, error) {
	if m.FinishOrderFunc != nil {
		return m.FinishOrderFunc(ctx, id)
	}
	return &order.Order{ID: id, State: "complete"}, nil
}

func (m *MockBackend) CancelOrder(ctx context.Context, id string) (*order.Order, error) {
	if m.CancelOrderFunc != nil {
		return m.CancelOrderFunc(ctx, id)
	}
	return &order.Order{ID: id, State: "cancelled"}, nil
}

func (m *MockBackend) Unstash(ctx context.Context, id string) (*order.Order, error) {
	if m.UnstashFunc != nil {
		return m.UnstashFunc(ctx, id)
	}
	return &order.Order{ID: id}, nil
}

func (m *MockBackend) PayOrder(ctx context.Context, id string) (*order.Order, error) {
	if m.PayOrderFunc != nil {
		return m.PayOrderFunc(ctx, id)
	}
	return &order.Order{ID: id, State: "paid"}, nil
}

func (m *MockBackend) ListMaterials(ctx context.Context) ([]backend.Material, error) {
	if m.ListMaterialsFunc != nil {
		return m.ListMaterialsFunc(ctx)
	}
	return nil, nil
}

func (m *MockBackend) SalesLogs(ctx context.Context) ([]backend.SalesLog, error) {
	if m.SalesLogsFunc != nil {
		return m.SalesLogsFunc(ctx)
	}
	return nil, nil
}

func (m *MockBackend) SalesPerDay(ctx context.Context) ([]backend.DailySales, error) {
	if m.SalesPerDayFunc != nil {
		return m.SalesPerDayFunc(ctx)
	}
	return nil, nil
}

type MockBoard struct {
	mu      sync.Mutex
	Columns map[string][]board.Ticket
	Set     []*order.Order
}

func (m *MockBoard) Column(state string) []board.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Columns[state]
}

func (m *MockBoard) SetOrder(o *order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Set = append(m.Set, o)
}

type MockHealth struct {
	Status backend.HealthStatus
}

func (m MockHealth) Check(ctx context.Context) backend.HealthStatus {
	return m.Status
}

type testServices struct {
	svc      ui.Services
	renderer *recordingRenderer
	toasts   *ui.ToastService
	confirms *ui.ConfirmService
}

func newTestServices(t *testing.T) testServices {
	t.Helper()

	renderer := &recordingRenderer{}
	toasts := ui.NewToastService(time.Second, nil)
	confirms := ui.NewConfirmService(time.Minute, toasts, nil)
	icons := ui.NewIconRegistry()
	ui.RegisterDefaults(icons)

	svc, err := ui.NewServices(renderer, toasts, confirms, icons)
	if err != nil {
		t.Fatalf("NewServices() error = %v", err)
	}
	return testServices{svc: svc, renderer: renderer, toasts: toasts, confirms: confirms}
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(ui.WithSession(req.Context(), testSession))
}

func getPage(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(ui.WithSession(req.Context(), testSession))
}

func summaries(toasts []ui.Toast) []string {
	out := make([]string, 0, len(toasts))
	for _, t := range toasts {
		out = append(out, t.Summary)
	}
	return out
}
