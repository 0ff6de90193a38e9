package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const keepaliveInterval = 30 * time.Second

// ToastStream is the subscription side of the toast service.
type ToastStream interface {
	Subscribe(subscriberID, session string) <-chan Toast
	Unsubscribe(subscriberID string)
	Drain(session string) []Toast
}

// EventsHandler streams toasts to a browser terminal as Server-Sent Events.
type EventsHandler struct {
	toasts    ToastStream
	logger    aqm.Logger
	keepalive time.Duration
}

func NewEventsHandler(toasts ToastStream, logger aqm.Logger) *EventsHandler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &EventsHandler{toasts: toasts, logger: logger, keepalive: keepaliveInterval}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	session := SessionFrom(r.Context())
	subscriberID := uuid.NewString()
	h.logger.Info("new SSE connection", "subscriber_id", subscriberID, "session", session)

	events := h.toasts.Subscribe(subscriberID, session)
	defer h.toasts.Unsubscribe(subscriberID)

	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: 2000\n\n")
	flush(w)

	for _, t := range h.toasts.Drain(session) {
		h.writeToast(w, t)
	}

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("SSE client disconnected", "subscriber_id", subscriberID)
			return

		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flush(w)

		case t, ok := <-events:
			if !ok {
				h.logger.Info("toast channel closed", "subscriber_id", subscriberID)
				return
			}
			h.writeToast(w, t)
		}
	}
}

func (h *EventsHandler) writeToast(w http.ResponseWriter, t Toast) {
	payload, err := json.Marshal(toastPayload(t))
	if err != nil {
		h.logger.Error("failed to encode toast", "toast_id", t.ID, "error", err)
		return
	}
	sendSSEEvent(w, "toast", string(payload))
}

// toastPayload converts Life to milliseconds for the browser.
func toastPayload(t Toast) map[string]interface{} {
	return map[string]interface{}{
		"id":       t.ID,
		"severity": t.Severity,
		"summary":  t.Summary,
		"detail":   t.Detail,
		"life":     t.Life.Milliseconds(),
	}
}

func sendSSEEvent(w http.ResponseWriter, eventType string, data string) {
	data = strings.TrimSpace(data)

	fmt.Fprintf(w, "event: %s\n", eventType)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprintf(w, "\n")
	flush(w)
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
