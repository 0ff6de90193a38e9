package ui

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

var (
	ErrConfirmationNotFound = errors.New("confirmation not found")
	ErrConfirmationExpired  = errors.New("confirmation expired")
)

const defaultConfirmTTL = 2 * time.Minute

// Confirmation describes a yes/no decision presented to the user. Accept
// runs when the user agrees; Reject, if set, when they decline or the
// request expires.
type Confirmation struct {
	Header      string
	Message     string
	Icon        string
	AcceptLabel string
	RejectLabel string
	Accept      func(ctx context.Context) error
	Reject      func(ctx context.Context)
}

// Confirmer is the confirmation-dialog surface views call into.
type Confirmer interface {
	Require(ctx context.Context, c Confirmation) (string, error)
}

// PendingConfirmation is a confirmation waiting for the user's answer.
type PendingConfirmation struct {
	ID        string
	Session   string
	Header    string
	Message   string
	Icon      string
	Accept    string
	Reject    string
	CreatedAt time.Time
	ExpiresAt time.Time

	onAccept func(ctx context.Context) error
	onReject func(ctx context.Context)
}

// ConfirmService keeps pending confirmations per terminal until answered.
type ConfirmService struct {
	mu      sync.Mutex
	pending map[string]*PendingConfirmation
	ttl     time.Duration
	notify  Notifier
	logger  aqm.Logger
	now     func() time.Time
}

func NewConfirmService(ttl time.Duration, notify Notifier, logger aqm.Logger) *ConfirmService {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if ttl <= 0 {
		ttl = defaultConfirmTTL
	}
	return &ConfirmService{
		pending: make(map[string]*PendingConfirmation),
		ttl:     ttl,
		notify:  notify,
		logger:  logger,
		now:     time.Now,
	}
}

// Require registers c for the terminal in ctx and returns its id. The answer
// arrives later through Resolve.
func (s *ConfirmService) Require(ctx context.Context, c Confirmation) (string, error) {
	if c.Accept == nil {
		return "", errors.New("confirmation needs an accept action")
	}
	session := SessionFrom(ctx)
	if session == "" {
		return "", errors.New("confirmation needs a terminal session")
	}

	now := s.now()
	p := &PendingConfirmation{
		ID:        uuid.NewString(),
		Session:   session,
		Header:    valueOr(c.Header, "Confirmation"),
		Message:   c.Message,
		Icon:      valueOr(c.Icon, "triangle-exclamation"),
		Accept:    valueOr(c.AcceptLabel, "Yes"),
		Reject:    valueOr(c.RejectLabel, "No"),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		onAccept:  c.Accept,
		onReject:  c.Reject,
	}

	s.mu.Lock()
	s.pending[p.ID] = p
	s.mu.Unlock()

	return p.ID, nil
}

// Pending lists the unexpired confirmations of a terminal, oldest first.
func (s *ConfirmService) Pending(session string) []PendingConfirmation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var out []PendingConfirmation
	for _, p := range s.pending {
		if p.Session == session && now.Before(p.ExpiresAt) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Resolve records the user's answer and runs the matching action.
func (s *ConfirmService) Resolve(ctx context.Context, id string, accepted bool) error {
	session := SessionFrom(ctx)

	s.mu.Lock()
	p, ok := s.pending[id]
	if ok && p.Session != session {
		ok = false
	}
	if ok {
		delete(s.pending, id)
	}
	s.mu.Unlock()

	if !ok {
		return ErrConfirmationNotFound
	}

	if !s.now().Before(p.ExpiresAt) {
		if p.onReject != nil {
			p.onReject(ctx)
		}
		return ErrConfirmationExpired
	}

	if !accepted {
		if p.onReject != nil {
			p.onReject(ctx)
		}
		return nil
	}

	if err := p.onAccept(ctx); err != nil {
		s.logger.Error("confirmed action failed", "confirmation_id", id, "error", err)
		if s.notify != nil {
			s.notify.Add(ctx, Toast{Severity: SeverityError, Summary: p.Header, Detail: err.Error()})
		}
		return err
	}
	return nil
}

// CleanupExpired drops unanswered confirmations past their TTL.
func (s *ConfirmService) CleanupExpired(ctx context.Context) int {
	now := s.now()

	s.mu.Lock()
	var expired []*PendingConfirmation
	for id, p := range s.pending {
		if !now.Before(p.ExpiresAt) {
			expired = append(expired, p)
			delete(s.pending, id)
		}
	}
	s.mu.Unlock()

	for _, p := range expired {
		if p.onReject != nil {
			p.onReject(WithSession(ctx, p.Session))
		}
	}
	return len(expired)
}

// StartCleanup periodically expires confirmations until ctx is done.
func (s *ConfirmService) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.CleanupExpired(ctx); n > 0 {
					s.logger.Debug("expired confirmations removed", "count", n)
				}
			}
		}
	}()
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
