// Package board keeps the kitchen board state: orders currently waiting,
// being prepared or ready, fed by order state events.
package board

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/appetiteclub/pos/pkg/enums/orderstate"
	"github.com/appetiteclub/pos/pkg/event"
	"github.com/appetiteclub/pos/pkg/order"
	"github.com/appetiteclub/pos/services/pos/internal/backend"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
)

// replayAll asks the stream for its whole retained history.
const replayAll = 0

// Ticket is one order as shown on the kitchen board.
type Ticket struct {
	OrderID     string
	DisplayID   string
	State       string
	ItemCount   int
	Comment     string
	SubmittedAt time.Time
	StartedAt   time.Time
	UpdatedAt   time.Time
}

// OrderLister loads orders over HTTP when the event stream cannot be replayed.
type OrderLister interface {
	ListOrders(ctx context.Context, q backend.OrderQuery) ([]order.Order, error)
}

// Cache is an in-memory index of board tickets by order id and state.
type Cache struct {
	mu      sync.RWMutex
	tickets map[string]*Ticket
	byState map[string][]string

	stream events.StreamConsumer
	orders OrderLister
	logger aqm.Logger
}

func NewCache(stream events.StreamConsumer, orders OrderLister, logger aqm.Logger) *Cache {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Cache{
		tickets: make(map[string]*Ticket),
		byState: make(map[string][]string),
		stream:  stream,
		orders:  orders,
		logger:  logger,
	}
}

// Warm rebuilds the board by replaying the event stream, falling back to the
// order list when the stream is unavailable or has nothing to replay.
func (c *Cache) Warm(ctx context.Context) error {
	if c.stream != nil {
		n, err := c.warmFromStream(ctx)
		if err != nil {
			c.logger.Info("stream replay failed, falling back to HTTP", "error", err)
		} else if n > 0 {
			c.removeInactive()
			return nil
		}
	}

	if c.orders == nil {
		c.logger.Info("neither stream nor order lister configured, board remains empty")
		return nil
	}

	return c.warmFromHTTP(ctx)
}

func (c *Cache) warmFromStream(ctx context.Context) (int, error) {
	c.logger.Info("warming board from event stream")

	messages, err := c.stream.Fetch(ctx, replayAll)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, msg := range messages {
		c.applyLocked(msg.Data)
	}

	c.logger.Info("board warmed from stream", "events", len(messages), "tickets", len(c.tickets))
	return len(messages), nil
}

func (c *Cache) warmFromHTTP(ctx context.Context) error {
	c.logger.Info("warming board from order HTTP API")

	orders, err := c.orders.ListOrders(ctx, backend.OrderQuery{})
	if err != nil {
		c.logger.Error("failed to warm board from HTTP", "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range orders {
		if onBoard(orders[i].State) {
			c.setLocked(ticketFromOrder(&orders[i]))
		}
	}

	c.logger.Info("board warmed from HTTP", "count", len(c.tickets))
	return nil
}

// Apply decodes an order state event and updates the board.
func (c *Cache) Apply(data []byte) (event.OrderStateEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(data)
}

func (c *Cache) applyLocked(data []byte) (event.OrderStateEvent, bool) {
	var evt event.OrderStateEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		c.logger.Error("failed to unmarshal order state event", "error", err)
		return evt, false
	}
	if evt.OrderID == "" {
		return evt, false
	}

	state := evt.State
	if state == "" {
		state = stateForEvent(evt.EventType)
	}
	if state == "" {
		return evt, false
	}

	if !onBoard(state) {
		c.removeLocked(evt.OrderID)
		return evt, true
	}

	t := c.tickets[evt.OrderID]
	if t == nil {
		t = &Ticket{OrderID: evt.OrderID}
	} else {
		cp := *t
		t = &cp
	}
	t.State = state
	if evt.DisplayID != "" {
		t.DisplayID = evt.DisplayID
	}
	if evt.ItemCount > 0 {
		t.ItemCount = evt.ItemCount
	}
	if evt.Comment != "" {
		t.Comment = evt.Comment
	}
	if !evt.SubmittedAt.IsZero() {
		t.SubmittedAt = evt.SubmittedAt
	}
	if !evt.StartedAt.IsZero() {
		t.StartedAt = evt.StartedAt
	}
	t.UpdatedAt = evt.OccurredAt

	c.setLocked(t)
	return evt, true
}

// SetOrder reflects an order returned by the backend, so the acting terminal
// sees its change before the event arrives.
func (c *Cache) SetOrder(o *order.Order) {
	if o == nil || o.ID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !onBoard(o.State) {
		c.removeLocked(o.ID)
		return
	}
	c.setLocked(ticketFromOrder(o))
}

func (c *Cache) Get(orderID string) (Ticket, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tickets[orderID]
	if !ok {
		return Ticket{}, false
	}
	return *t, true
}

// Column returns the tickets in state, oldest submission first.
func (c *Cache) Column(state string) []Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := c.byState[state]
	out := make([]Ticket, 0, len(ids))
	for _, id := range ids {
		if t := c.tickets[id]; t != nil {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tickets)
}

func (c *Cache) removeInactive() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for id, t := range c.tickets {
		if !onBoard(t.State) {
			c.removeLocked(id)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Info("removed inactive tickets from board", "count", removed)
	}
}

func (c *Cache) setLocked(t *Ticket) {
	if old, ok := c.tickets[t.OrderID]; ok {
		c.removeFromIndex(old.State, t.OrderID)
	}
	c.tickets[t.OrderID] = t
	c.byState[t.State] = append(c.byState[t.State], t.OrderID)
}

func (c *Cache) removeLocked(orderID string) {
	t, ok := c.tickets[orderID]
	if !ok {
		return
	}
	c.removeFromIndex(t.State, orderID)
	delete(c.tickets, orderID)
}

func (c *Cache) removeFromIndex(state, orderID string) {
	ids := c.byState[state]
	for i, id := range ids {
		if id == orderID {
			c.byState[state] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

func ticketFromOrder(o *order.Order) *Ticket {
	return &Ticket{
		OrderID:     o.ID,
		DisplayID:   o.DisplayID,
		State:       o.State,
		ItemCount:   o.ItemCount(),
		Comment:     o.Comment,
		SubmittedAt: o.SubmittedAt,
		StartedAt:   o.StartedAt,
		UpdatedAt:   time.Now(),
	}
}

func onBoard(state string) bool {
	for _, s := range orderstate.Board {
		if s.Name == state {
			return true
		}
	}
	return false
}

func stateForEvent(eventType string) string {
	switch eventType {
	case event.EventOrderSubmitted:
		return orderstate.States.New.Name
	case event.EventOrderStarted:
		return orderstate.States.InProgress.Name
	case event.EventOrderFinished:
		return orderstate.States.Complete.Name
	case event.EventOrderCancelled:
		return orderstate.States.Cancelled.Name
	case event.EventOrderPaid:
		return orderstate.States.Paid.Name
	case event.EventOrderStashed:
		return orderstate.States.Stashed.Name
	}
	return ""
}
