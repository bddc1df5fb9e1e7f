package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/session"
)

// stubCollaborator is a scriptable session backend.
type stubCollaborator struct {
	mu       sync.Mutex
	identity *domain.Identity
	profile  *domain.Profile
	subs     []domain.Subscription
	// block, when set, holds GetSession until it is closed.
	block chan struct{}
	// profileBlock, when set, holds FetchProfile until it is closed.
	profileBlock chan struct{}
	handlers     map[int]func(session.Event)
	nextID       int
}

func newStub(identity *domain.Identity, role domain.Role) *stubCollaborator {
	s := &stubCollaborator{identity: identity, handlers: map[int]func(session.Event){}}
	if identity != nil {
		s.profile = &domain.Profile{ID: identity.ID, FullName: "Test User", Role: role}
	}
	return s
}

func stubIdentity(id string) *domain.Identity {
	now := time.Now()
	return &domain.Identity{ID: id, Email: id + "@example.com", AccessToken: "token-" + id, IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
}

func (s *stubCollaborator) GetSession(ctx context.Context) (*domain.Identity, error) {
	s.mu.Lock()
	block := s.block
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, nil
}

func (s *stubCollaborator) SignIn(context.Context, string, string) (*domain.Identity, error) {
	return nil, errors.New("invalid login credentials")
}

func (s *stubCollaborator) SignUp(context.Context, string, string, map[string]string) (*domain.Identity, error) {
	return nil, errors.New("signups disabled")
}

func (s *stubCollaborator) SignOut(context.Context) error {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()
	s.emit(session.Event{Kind: session.EventSignedOut, At: time.Now()})
	return nil
}

func (s *stubCollaborator) OnSessionChange(fn func(session.Event)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}

func (s *stubCollaborator) FetchProfile(ctx context.Context, _ string) (*domain.Profile, error) {
	s.mu.Lock()
	block := s.profileBlock
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, nil
}

func (s *stubCollaborator) QuerySubscriptions(context.Context, string, domain.SubscriptionFilter) ([]domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs, nil
}

func (s *stubCollaborator) emit(ev session.Event) {
	s.mu.Lock()
	handlers := make([]func(session.Event), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

func (s *stubCollaborator) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}
