package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/gym-portal/internal/domain"
)

// State is the lifecycle position of a Store.
type State uint8

const (
	StateUninitialized State = iota
	StateLoading
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "uninitialized"
	}
}

// MarshalText encodes the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const defaultOpTimeout = 10 * time.Second

// Options tunes a Store.
type Options struct {
	// OpTimeout bounds every call to the collaborator. Zero means 10s.
	OpTimeout time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Snapshot is a consistent copy of the store state.
type Snapshot struct {
	State    State            `json:"state"`
	Identity *domain.Identity `json:"identity,omitempty"`
	Profile  *domain.Profile  `json:"profile,omitempty"`
	IsAdmin  bool             `json:"is_admin"`
}

// Authenticated reports whether the snapshot carries an identity outside of loading.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.Identity != nil
}

// Listener observes state transitions.
type Listener func(prev, next Snapshot)

// Store caches the identity and profile for one client and is the only writer of them.
type Store struct {
	collab Collaborator
	logger *zap.Logger
	opts   Options

	mu          sync.RWMutex
	state       State
	loaded      bool
	current     observation
	profile     *domain.Profile
	profileDone bool // profile fetch for the current identity finished, found or not
	listeners   map[int]Listener
	nextID      int
	unsubscribe func()
	ready       chan struct{}

	bg tracker
}

// New constructs an uninitialized store. Call Init to start it.
func New(collab Collaborator, logger *zap.Logger, opts Options) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = defaultOpTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		collab:    collab,
		logger:    logger,
		opts:      opts,
		listeners: make(map[int]Listener),
		ready:     make(chan struct{}),
	}
}

// Init subscribes to session events and starts fetching the existing session.
// It returns immediately; Ready is closed once the initial fetch resolves.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return ErrAlreadyInitialized
	}
	s.state = StateLoading
	s.mu.Unlock()

	// Subscribe before fetching so no sign-in between the two is lost.
	unsubscribe := s.collab.OnSessionChange(s.handleEvent)
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	started := s.opts.Now()
	bgCtx := context.WithoutCancel(ctx)
	s.bg.start()
	go func() {
		defer s.bg.finish()
		ctx, cancel := context.WithTimeout(bgCtx, s.opts.OpTimeout)
		defer cancel()

		identity, err := await(ctx, s.collab.GetSession)
		if err != nil {
			s.logger.Warn("initial session fetch failed", zap.Error(err))
			identity = nil
		}
		s.apply(observation{identity: identity, at: started}, true)
	}()
	return nil
}

// Close stops listening for session events.
func (s *Store) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Ready is closed once the initial session fetch has resolved.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Sync waits until the initial fetch and any profile fetches have finished.
func (s *Store) Sync(ctx context.Context) error {
	return s.bg.wait(ctx)
}

// Login asks the collaborator to verify credentials. The resulting identity arrives
// through the event stream; Login itself never assigns it.
func (s *Store) Login(ctx context.Context, email, password string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	_, err := await(ctx, func(ctx context.Context) (*domain.Identity, error) {
		return s.collab.SignIn(ctx, email, password)
	})
	if err != nil {
		s.logger.Info("login failed", zap.String("email", email), zap.Error(err))
		return newAuthError("login", err)
	}
	return nil
}

// Signup requests account creation with displayName as initial profile metadata.
// The profile row itself is created lazily on the first profile fetch.
func (s *Store) Signup(ctx context.Context, email, password, displayName string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	metadata := map[string]string{domain.MetadataFullName: displayName}
	_, err := await(ctx, func(ctx context.Context) (*domain.Identity, error) {
		return s.collab.SignUp(ctx, email, password, metadata)
	})
	if err != nil {
		s.logger.Info("signup failed", zap.String("email", email), zap.Error(err))
		return newAuthError("signup", err)
	}
	return nil
}

// Logout ends the remote session and clears local identity and profile even when
// the remote call fails. The remote failure is still returned.
func (s *Store) Logout(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	_, err := await(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.collab.SignOut(ctx)
	})

	s.clear()

	if err != nil {
		s.logger.Warn("remote sign-out failed; local session cleared", zap.Error(err))
		return newAuthError("logout", err)
	}
	return nil
}

// IsAdmin reports whether the cached profile has the admin role.
// An absent profile is never admin.
func (s *Store) IsAdmin() bool {
	s.expireIfStale()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.IsAdmin()
}

// HasActiveSubscription queries the collaborator for a current subscription.
// It returns false when anonymous and on any query failure.
func (s *Store) HasActiveSubscription(ctx context.Context) bool {
	identity := s.Identity()
	if identity == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	now := s.opts.Now()
	filter := domain.SubscriptionFilter{ActiveOnly: true, EndsAfter: &now, Limit: 1}
	subs, err := await(ctx, func(ctx context.Context) ([]domain.Subscription, error) {
		return s.collab.QuerySubscriptions(ctx, identity.ID, filter)
	})
	if err != nil {
		s.logger.Warn("subscription check failed", zap.String("user_id", identity.ID), zap.Error(err))
		return false
	}
	for _, sub := range subs {
		if sub.Current(now) {
			return true
		}
	}
	return false
}

// ProfileResolved reports whether the profile fetch for the current identity has
// finished. Anonymous stores are always resolved.
func (s *Store) ProfileResolved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.identity == nil || s.profileDone
}

// State returns the current lifecycle state. An identity whose token has expired
// is dropped first, so an expired session reads as anonymous.
func (s *Store) State() State {
	s.expireIfStale()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity returns a copy of the cached identity, or nil.
func (s *Store) Identity() *domain.Identity {
	s.expireIfStale()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyIdentity(s.current.identity)
}

// Profile returns a copy of the cached profile, or nil.
func (s *Store) Profile() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyProfile(s.profile)
}

// Snapshot returns a consistent copy of the store state.
func (s *Store) Snapshot() Snapshot {
	s.expireIfStale()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Watch registers fn for every state change and returns a func removing it.
func (s *Store) Watch(fn Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) handleEvent(ev Event) {
	at := ev.At
	if at.IsZero() {
		at = s.opts.Now()
	}
	s.logger.Debug("session event", zap.Stringer("kind", ev.Kind))

	switch ev.Kind {
	case EventSignedIn, EventTokenRefreshed:
		if ev.Identity == nil {
			return
		}
		s.apply(observation{identity: copyIdentity(ev.Identity), at: at}, false)
	case EventSignedOut:
		s.apply(observation{at: at}, false)
	}
}

// apply merges obs into the current identity, re-derives the state and starts a
// profile fetch when the identity changed to a new principal.
func (s *Store) apply(obs observation, initialFetch bool) {
	s.mu.Lock()
	prev := s.snapshotLocked()
	prevID := identityID(s.current.identity)

	s.current = merge(s.current, obs)
	if initialFetch && !s.loaded {
		s.loaded = true
		defer close(s.ready)
	}

	nextID := identityID(s.current.identity)
	if nextID != prevID {
		s.profile = nil
		s.profileDone = false
	}
	s.recomputeLocked()

	next := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	if nextID != "" && nextID != prevID {
		s.fetchProfile(nextID)
	}
	notify(listeners, prev, next)
}

// ReloadProfile refetches the profile of the current identity in the background.
// Call Sync to wait for it.
func (s *Store) ReloadProfile() {
	s.mu.RLock()
	userID := identityID(s.current.identity)
	s.mu.RUnlock()
	if userID != "" {
		s.fetchProfile(userID)
	}
}

// clear drops identity and profile unconditionally.
func (s *Store) clear() {
	s.clearIdentity(nil)
}

// expireIfStale signs the store out locally once the cached token is past its expiry.
// Listeners see the same transition as a logout.
func (s *Store) expireIfStale() {
	now := s.opts.Now()
	s.mu.RLock()
	identity := s.current.identity
	s.mu.RUnlock()
	if identity == nil || !identity.Expired(now) {
		return
	}
	s.logger.Info("session token expired", zap.String("user_id", identity.ID), zap.Time("expires_at", identity.ExpiresAt))
	s.clearIdentity(identity)
}

// clearIdentity drops identity and profile. When only is non-nil the store is cleared
// only while only is still the current identity.
func (s *Store) clearIdentity(only *domain.Identity) {
	s.mu.Lock()
	if only != nil && s.current.identity != only {
		s.mu.Unlock()
		return
	}
	prev := s.snapshotLocked()

	at := s.opts.Now()
	if s.current.at.After(at) {
		at = s.current.at
	}
	s.current = observation{at: at}
	s.profile = nil
	s.profileDone = false
	s.recomputeLocked()

	next := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, prev, next)
}

// fetchProfile loads the profile for userID in the background. It is idempotent:
// the result is applied only while userID is still the current identity.
func (s *Store) fetchProfile(userID string) {
	s.bg.start()
	go func() {
		defer s.bg.finish()
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.OpTimeout)
		defer cancel()

		profile, err := await(ctx, func(ctx context.Context) (*domain.Profile, error) {
			return s.collab.FetchProfile(ctx, userID)
		})
		if err != nil {
			s.logger.Warn("profile fetch failed", zap.String("user_id", userID), zap.Error(err))
		}

		s.mu.Lock()
		if identityID(s.current.identity) != userID {
			s.mu.Unlock()
			return
		}
		prev := s.snapshotLocked()
		s.profileDone = true
		if err == nil && profile != nil {
			s.profile = copyProfile(profile)
		}
		next := s.snapshotLocked()
		listeners := s.listenersLocked()
		s.mu.Unlock()

		notify(listeners, prev, next)
	}()
}

func (s *Store) recomputeLocked() {
	switch {
	case !s.loaded:
		s.state = StateLoading
	case s.current.identity == nil:
		s.state = StateAnonymous
	default:
		s.state = StateAuthenticated
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		State:    s.state,
		Identity: copyIdentity(s.current.identity),
		Profile:  copyProfile(s.profile),
		IsAdmin:  s.profile.IsAdmin(),
	}
}

func (s *Store) listenersLocked() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []Listener, prev, next Snapshot) {
	if prev.State == next.State &&
		identityKey(prev.Identity) == identityKey(next.Identity) &&
		profileKey(prev.Profile) == profileKey(next.Profile) {
		return
	}
	for _, fn := range listeners {
		fn(prev, next)
	}
}

// await runs fn and gives up when ctx is done, even if fn ignores ctx.
func await[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		val, err := fn(ctx)
		ch <- result{val: val, err: err}
	}()

	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		if ctx.Err() == context.DeadlineExceeded {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}

func profileKey(p *domain.Profile) string {
	if p == nil {
		return ""
	}
	return p.ID + "|" + p.Role.String() + "|" + p.FullName
}

func copyIdentity(id *domain.Identity) *domain.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func copyProfile(p *domain.Profile) *domain.Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// tracker counts in-flight background work and lets callers wait for it to drain.
type tracker struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (t *tracker) start() {
	t.mu.Lock()
	if t.n == 0 {
		t.idle = make(chan struct{})
	}
	t.n++
	t.mu.Unlock()
}

func (t *tracker) finish() {
	t.mu.Lock()
	t.n--
	if t.n == 0 {
		close(t.idle)
	}
	t.mu.Unlock()
}

func (t *tracker) wait(ctx context.Context) error {
	t.mu.Lock()
	if t.n == 0 {
		t.mu.Unlock()
		return nil
	}
	idle := t.idle
	t.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
