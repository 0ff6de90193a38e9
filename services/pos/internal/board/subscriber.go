package board

import (
	"context"
	"fmt"

	"github.com/appetiteclub/pos/pkg/event"
	"github.com/appetiteclub/pos/services/pos/internal/ui"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
)

// Subscriber listens to order state events, keeps the board current and
// tells every terminal when an order is ready.
type Subscriber struct {
	subscriber events.Subscriber
	cache      *Cache
	notify     ui.Notifier
	logger     aqm.Logger
}

func NewSubscriber(subscriber events.Subscriber, cache *Cache, notify ui.Notifier, logger aqm.Logger) *Subscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Subscriber{
		subscriber: subscriber,
		cache:      cache,
		notify:     notify,
		logger:     logger,
	}
}

// Start warms the board and begins listening to order state events.
func (s *Subscriber) Start(ctx context.Context) error {
	if err := s.cache.Warm(ctx); err != nil {
		s.logger.Error("board warm-up failed, starting empty", "error", err)
	}

	if s.subscriber == nil {
		s.logger.Info("NATS subscriber not configured, skipping order state subscription")
		return nil
	}

	s.logger.Info("subscribing to order state topic", "topic", event.OrderStateTopic)
	if err := s.subscriber.Subscribe(ctx, event.OrderStateTopic, s.handleEvent); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", event.OrderStateTopic, err)
	}

	s.logger.Info("order state subscriber started")
	return nil
}

// Stop is a no-op for lifecycle compatibility.
func (s *Subscriber) Stop(ctx context.Context) error {
	return nil
}

func (s *Subscriber) handleEvent(ctx context.Context, msg []byte) error {
	evt, ok := s.cache.Apply(msg)
	if !ok {
		return nil
	}

	s.logger.Debug("order state event applied", "event_type", evt.EventType, "order_id", evt.OrderID, "state", evt.State)

	if evt.EventType == event.EventOrderFinished && s.notify != nil {
		s.notify.Add(context.Background(), ui.Toast{
			Severity: ui.SeveritySuccess,
			Summary:  "Order ready",
			Detail:   fmt.Sprintf("Order %s is ready", displayName(evt)),
		})
	}
	return nil
}

func displayName(evt event.OrderStateEvent) string {
	if evt.DisplayID != "" {
		return "#" + evt.DisplayID
	}
	return evt.OrderID
}
