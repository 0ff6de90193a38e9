// Package backend is the console's data access to the order service.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/appetiteclub/pos/pkg/order"
	"github.com/aquamarinepk/aqm"
)

var errNotConfigured = errors.New("backend client not configured")

// OrderQuery filters and pages the order list. Zero values are omitted.
type OrderQuery struct {
	DisplayID string
	First     int
	Rows      int
}

func (q OrderQuery) encode() string {
	v := url.Values{}
	if q.DisplayID != "" {
		v.Set("display_id", q.DisplayID)
	}
	if q.First > 0 {
		v.Set("first", strconv.Itoa(q.First))
	}
	if q.Rows > 0 {
		v.Set("rows", strconv.Itoa(q.Rows))
	}
	return v.Encode()
}

// Material is an inventory entry with its purchase history.
type Material struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Quantity float64         `json:"quantity"`
	Entries  []MaterialEntry `json:"entries"`
}

type MaterialEntry struct {
	ID               string  `json:"id"`
	Quantity         float64 `json:"quantity"`
	PurchasePrice    float64 `json:"purchase_price"`
	PurchaseQuantity float64 `json:"purchase_quantity"`
	Company          string  `json:"company"`
}

// SalesLog records the revenue and cost of one paid order.
type SalesLog struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	DisplayID string    `json:"display_id"`
	Price     float64   `json:"price"`
	Cost      float64   `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

// DailySales aggregates the sales of one calendar day.
type DailySales struct {
	Day        string  `json:"day"`
	TotalSales float64 `json:"total_sales"`
	TotalCost  float64 `json:"total_cost"`
}

// Client centralizes calls to the order service and decoding of its
// responses.
type Client struct {
	client *aqm.ServiceClient
}

func NewClient(client *aqm.ServiceClient) *Client {
	return &Client{client: client}
}

func (c *Client) configured() error {
	if c == nil || c.client == nil {
		return errNotConfigured
	}
	return nil
}

func (c *Client) ListOrders(ctx context.Context, q OrderQuery) ([]order.Order, error) {
	path := "/orders"
	if qs := q.encode(); qs != "" {
		path += "?" + qs
	}
	return c.listOrders(ctx, path)
}

// ListStashed returns the orders parked by any terminal.
func (c *Client) ListStashed(ctx context.Context) ([]order.Order, error) {
	return c.listOrders(ctx, "/orders/stashed")
}

// ListUnpaid returns finished orders still waiting for payment.
func (c *Client) ListUnpaid(ctx context.Context) ([]order.Order, error) {
	return c.listOrders(ctx, "/orders/unpaid")
}

func (c *Client) listOrders(ctx context.Context, path string) ([]order.Order, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}

	resp, err := c.client.Request(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var orders []order.Order
	if err := decodeSuccessResponse(resp, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("missing order id")
	}

	resp, err := c.client.Get(ctx, "orders", id)
	if err != nil {
		return nil, err
	}

	var o order.Order
	if err := decodeSuccessResponse(resp, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// SubmitOrder sends a merged order for persistence and returns the order as
// stored by the backend.
func (c *Client) SubmitOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	return c.sendOrder(ctx, "/orders/submit", o)
}

// StashOrder parks an order on the backend without submitting it.
func (c *Client) StashOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	return c.sendOrder(ctx, "/orders/stash", o)
}

func (c *Client) StartOrder(ctx context.Context, id string) (*order.Order, error) {
	return c.transition(ctx, id, "start")
}

func (c *Client) FinishOrder(ctx context.Context, id string) (*order.Order, error) {
	return c.transition(ctx, id, "finish")
}

func (c *Client) CancelOrder(ctx context.Context, id string) (*order.Order, error) {
	return c.transition(ctx, id, "cancel")
}

// Unstash takes an order out of the stash so a terminal can edit it again.
func (c *Client) Unstash(ctx context.Context, id string) (*order.Order, error) {
	return c.transition(ctx, id, "unstash")
}

// PayOrder settles an unpaid order. The backend records the sale.
func (c *Client) PayOrder(ctx context.Context, id string) (*order.Order, error) {
	return c.transition(ctx, id, "pay")
}

func (c *Client) sendOrder(ctx context.Context, path string, o *order.Order) (*order.Order, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("missing order")
	}

	resp, err := c.client.Request(ctx, "POST", path, o)
	if err != nil {
		return nil, err
	}

	var stored order.Order
	if err := decodeSuccessResponse(resp, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (c *Client) transition(ctx context.Context, id, action string) (*order.Order, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("missing order id")
	}

	path := fmt.Sprintf("/orders/%s/%s", url.PathEscape(id), action)
	resp, err := c.client.Request(ctx, "PATCH", path, nil)
	if err != nil {
		return nil, err
	}

	var o order.Order
	if err := decodeSuccessResponse(resp, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) ListMaterials(ctx context.Context) ([]Material, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}

	resp, err := c.client.List(ctx, "materials")
	if err != nil {
		return nil, err
	}

	var materials []Material
	if err := decodeSuccessResponse(resp, &materials); err != nil {
		return nil, err
	}
	return materials, nil
}

func (c *Client) SalesLogs(ctx context.Context) ([]SalesLog, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}

	resp, err := c.client.Request(ctx, "GET", "/sales/logs", nil)
	if err != nil {
		return nil, err
	}

	var logs []SalesLog
	if err := decodeSuccessResponse(resp, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *Client) SalesPerDay(ctx context.Context) ([]DailySales, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}

	resp, err := c.client.Request(ctx, "GET", "/sales/per-day", nil)
	if err != nil {
		return nil, err
	}

	var days []DailySales
	if err := decodeSuccessResponse(resp, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// decodeSuccessResponse copies the dynamic response payload into dest.
func decodeSuccessResponse(resp *aqm.SuccessResponse, dest interface{}) error {
	if resp == nil {
		return errors.New("nil success response")
	}

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, dest)
}
