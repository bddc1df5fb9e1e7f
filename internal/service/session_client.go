package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/events"
	"github.com/spec-kit/gym-portal/internal/repository"
	"github.com/spec-kit/gym-portal/internal/session"
)

// SessionClient binds the auth service to one browser session and satisfies
// session.Collaborator for that session's store.
type SessionClient struct {
	sessionID     string
	auth          *AuthService
	subscriptions repository.SubscriptionRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NewSessionClientFactory returns a constructor of per-session clients.
func NewSessionClientFactory(authService *AuthService, subscriptions repository.SubscriptionRepository, dispatcher events.Dispatcher, logger *zap.Logger) func(sessionID string) session.Collaborator {
	return func(sessionID string) session.Collaborator {
		return &SessionClient{
			sessionID:     sessionID,
			auth:          authService,
			subscriptions: subscriptions,
			dispatcher:    dispatcher,
			logger:        logger.With(zap.String("session_id", sessionID)),
		}
	}
}

func (c *SessionClient) GetSession(ctx context.Context) (*domain.Identity, error) {
	return c.auth.CurrentSession(ctx, c.sessionID)
}

func (c *SessionClient) SignIn(ctx context.Context, email, password string) (*domain.Identity, error) {
	return c.auth.SignIn(ctx, c.sessionID, email, password)
}

func (c *SessionClient) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*domain.Identity, error) {
	return c.auth.SignUp(ctx, c.sessionID, email, password, metadata)
}

func (c *SessionClient) SignOut(ctx context.Context) error {
	return c.auth.SignOut(ctx, c.sessionID)
}

// OnSessionChange forwards this session's events to fn.
func (c *SessionClient) OnSessionChange(fn func(session.Event)) func() {
	if c.dispatcher == nil {
		return func() {}
	}
	unsubs := make([]func(), 0, len(events.SessionEventTypes))
	for _, eventType := range events.SessionEventTypes {
		unsubs = append(unsubs, c.dispatcher.Subscribe(eventType, func(_ context.Context, ev events.Event) error {
			if ev.SessionID != c.sessionID {
				return nil
			}
			if converted, ok := toSessionEvent(ev); ok {
				fn(converted)
			}
			return nil
		}))
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

func (c *SessionClient) FetchProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return c.auth.FetchProfile(ctx, userID)
}

func (c *SessionClient) QuerySubscriptions(ctx context.Context, userID string, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
	return c.subscriptions.Query(ctx, userID, filter)
}

func toSessionEvent(ev events.Event) (session.Event, bool) {
	out := session.Event{At: ev.Timestamp}
	switch ev.Type {
	case events.EventSessionSignedIn:
		out.Kind = session.EventSignedIn
	case events.EventSessionTokenRefreshed:
		out.Kind = session.EventTokenRefreshed
	case events.EventSessionSignedOut:
		out.Kind = session.EventSignedOut
		return out, true
	default:
		return out, false
	}
	payload, ok := ev.Payload.(events.SessionPayload)
	if !ok || payload.Identity == nil {
		return out, false
	}
	identity := *payload.Identity
	out.Identity = &identity
	return out, true
}
