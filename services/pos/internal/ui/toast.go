package ui

import (
	"context"
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarn    Severity = "warn"
	SeverityError   Severity = "error"
)

const (
	defaultToastLife = 3 * time.Second
	maxBacklog       = 10
	subscriberBuffer = 32
)

// Toast is a transient notification. An empty Session broadcasts it to every
// connected terminal.
type Toast struct {
	ID        string        `json:"id"`
	Severity  Severity      `json:"severity"`
	Summary   string        `json:"summary"`
	Detail    string        `json:"detail,omitempty"`
	Life      time.Duration `json:"life"`
	Session   string        `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}

// Notifier is the notification surface views call into.
type Notifier interface {
	Add(ctx context.Context, t Toast)
}

type toastSubscriber struct {
	session string
	ch      chan Toast
}

// ToastService delivers toasts to live terminals and keeps a short backlog
// for terminals that are between page loads.
type ToastService struct {
	mu          sync.RWMutex
	subscribers map[string]*toastSubscriber
	backlog     map[string][]Toast
	life        time.Duration
	logger      aqm.Logger
}

func NewToastService(life time.Duration, logger aqm.Logger) *ToastService {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if life <= 0 {
		life = defaultToastLife
	}
	return &ToastService{
		subscribers: make(map[string]*toastSubscriber),
		backlog:     make(map[string][]Toast),
		life:        life,
		logger:      logger,
	}
}

// Add queues t and returns immediately. Requests carry a terminal session, so
// toasts raised while handling one go back to the same terminal.
func (s *ToastService) Add(ctx context.Context, t Toast) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Severity == "" {
		t.Severity = SeverityInfo
	}
	if t.Life <= 0 {
		t.Life = s.life
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Session == "" {
		t.Session = SessionFrom(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delivered := false
	for id, sub := range s.subscribers {
		if t.Session != "" && sub.session != t.Session {
			continue
		}
		select {
		case sub.ch <- t:
			delivered = true
		default:
			s.logger.Info("toast subscriber channel full, dropping toast", "subscriber_id", id)
		}
	}

	if !delivered && t.Session != "" {
		queue := append(s.backlog[t.Session], t)
		if len(queue) > maxBacklog {
			queue = queue[len(queue)-maxBacklog:]
		}
		s.backlog[t.Session] = queue
	}
}

// Drain returns and clears the toasts waiting for session.
func (s *ToastService) Drain(session string) []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.backlog[session]
	delete(s.backlog, session)
	return queue
}

// Subscribe registers a live terminal connection.
func (s *ToastService) Subscribe(subscriberID, session string) <-chan Toast {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Toast, subscriberBuffer)
	s.subscribers[subscriberID] = &toastSubscriber{session: session, ch: ch}
	s.logger.Debug("toast subscriber added", "subscriber_id", subscriberID, "total_subscribers", len(s.subscribers))
	return ch
}

func (s *ToastService) Unsubscribe(subscriberID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, ok := s.subscribers[subscriberID]; ok {
		close(sub.ch)
		delete(s.subscribers, subscriberID)
	}
}

// Stop closes every live subscription.
func (s *ToastService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sub := range s.subscribers {
		close(sub.ch)
		delete(s.subscribers, id)
	}
	return nil
}
