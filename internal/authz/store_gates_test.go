package authz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/session"
)

// restoredSession is a backend holding an existing session for one user.
type restoredSession struct {
	identity *domain.Identity
	role     domain.Role
	// release, when set, holds FetchProfile until it is closed.
	release chan struct{}
}

func (r *restoredSession) GetSession(context.Context) (*domain.Identity, error) {
	return r.identity, nil
}

func (r *restoredSession) SignIn(context.Context, string, string) (*domain.Identity, error) {
	return nil, errors.New("not supported")
}

func (r *restoredSession) SignUp(context.Context, string, string, map[string]string) (*domain.Identity, error) {
	return nil, errors.New("not supported")
}

func (r *restoredSession) SignOut(context.Context) error { return nil }

func (r *restoredSession) OnSessionChange(func(session.Event)) func() { return func() {} }

func (r *restoredSession) FetchProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &domain.Profile{ID: userID, FullName: "Restored", Role: r.role}, nil
}

func (r *restoredSession) QuerySubscriptions(context.Context, string, domain.SubscriptionFilter) ([]domain.Subscription, error) {
	return nil, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func startStore(t *testing.T, backend *restoredSession, clock *testClock) *session.Store {
	t.Helper()
	s := session.New(backend, nil, session.Options{OpTimeout: 2 * time.Second, Now: clock.Now})
	t.Cleanup(s.Close)
	require.NoError(t, s.Init(context.Background()))
	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("store never became ready")
	}
	return s
}

func TestRequiresAuthentication_ExpiredTokenIsAnonymous(t *testing.T) {
	clock := &testClock{now: t0}
	backend := &restoredSession{
		identity: &domain.Identity{ID: "u1", AccessToken: "t", IssuedAt: t0, ExpiresAt: t0.Add(15 * time.Minute)},
	}
	s := startStore(t, backend, clock)
	require.NoError(t, s.Sync(context.Background()))
	assert.Equal(t, allow(), RequiresAuthentication(s))

	clock.Advance(48 * time.Hour)

	assert.Equal(t, redirect(PathLogin), RequiresAuthentication(s))
	assert.Equal(t, redirect(PathLogin), RequiresActiveSubscription(context.Background(), s))
	assert.Equal(t, session.StateAnonymous, s.State())
	assert.Nil(t, s.Identity())
}

func TestGates_RestoredAdminWaitsForProfile(t *testing.T) {
	clock := &testClock{now: t0}
	backend := &restoredSession{
		identity: &domain.Identity{ID: "a1", AccessToken: "t", IssuedAt: t0, ExpiresAt: t0.Add(time.Hour)},
		role:     domain.RoleAdmin,
		release:  make(chan struct{}),
	}
	s := startStore(t, backend, clock)
	ctx := context.Background()

	assert.Equal(t, allow(), RequiresAuthentication(s))
	assert.Equal(t, loading(), RequiresActiveSubscription(ctx, s), "an admin must not be sent to the purchase page")
	assert.Equal(t, loading(), RequiresAdmin(s))

	close(backend.release)
	require.NoError(t, s.Sync(ctx))

	assert.Equal(t, redirect(PathAdminHome), RequiresActiveSubscription(ctx, s))
	assert.Equal(t, allow(), RequiresAdmin(s))
}
