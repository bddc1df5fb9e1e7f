// Package session holds the per-client authentication state: the cached identity,
// its profile and the derived authorization predicates.
package session

import (
	"context"
	"time"

	"github.com/spec-kit/gym-portal/internal/domain"
)

// EventKind enumerates session changes announced by the auth backend.
type EventKind uint8

const (
	EventSignedIn EventKind = iota + 1
	EventSignedOut
	EventTokenRefreshed
)

func (k EventKind) String() string {
	switch k {
	case EventSignedIn:
		return "signed_in"
	case EventSignedOut:
		return "signed_out"
	case EventTokenRefreshed:
		return "token_refreshed"
	default:
		return "unknown"
	}
}

// Event is a session change. Identity is nil for EventSignedOut.
type Event struct {
	Kind     EventKind
	Identity *domain.Identity
	At       time.Time
}

// Collaborator is the external auth and data backend a Store delegates to.
// Implementations must honour context cancellation.
type Collaborator interface {
	// GetSession returns the current session identity, or nil when there is none.
	GetSession(ctx context.Context) (*domain.Identity, error)
	SignIn(ctx context.Context, email, password string) (*domain.Identity, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (*domain.Identity, error)
	SignOut(ctx context.Context) error
	// OnSessionChange registers fn for every session event and returns an unsubscribe func.
	OnSessionChange(fn func(Event)) (unsubscribe func())
	// FetchProfile returns the profile for userID, or nil when none exists.
	FetchProfile(ctx context.Context, userID string) (*domain.Profile, error)
	QuerySubscriptions(ctx context.Context, userID string, filter domain.SubscriptionFilter) ([]domain.Subscription, error)
}
