package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/gym-portal/internal/cart"
	"github.com/spec-kit/gym-portal/internal/observability"
	"github.com/spec-kit/gym-portal/internal/session"
)

// CollaboratorFactory builds the auth collaborator bound to one browser session.
type CollaboratorFactory func(sessionID string) session.Collaborator

// Client is the server-side state of one browser session.
type Client struct {
	ID    string
	Store *session.Store
	Cart  *cart.Store

	mu          sync.Mutex
	lastSeen    time.Time
	cancelWatch func()
}

func (c *Client) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

func (c *Client) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

func (c *Client) close() {
	if c.cancelWatch != nil {
		c.cancelWatch()
	}
	c.Store.Close()
}

// RegistryOptions tunes a Registry.
type RegistryOptions struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
	Store         session.Options
	Now           func() time.Time
}

// Registry holds one session store and cart per browser session id and evicts idle ones.
type Registry struct {
	factory CollaboratorFactory
	opts    RegistryOptions
	logger  *zap.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	clients map[string]*Client
}

// NewRegistry constructs an empty registry.
func NewRegistry(factory CollaboratorFactory, opts RegistryOptions, logger *zap.Logger, metrics *observability.Metrics) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		factory: factory,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
		clients: make(map[string]*Client),
	}
}

// Resolve returns the client for sessionID, creating and initializing it when absent.
func (r *Registry) Resolve(ctx context.Context, sessionID string) (*Client, error) {
	now := r.opts.Now()

	r.mu.Lock()
	if client, ok := r.clients[sessionID]; ok {
		r.mu.Unlock()
		client.touch(now)
		return client, nil
	}

	client := &Client{
		ID:       sessionID,
		Store:    session.New(r.factory(sessionID), r.logger.With(zap.String("session_id", sessionID)), r.opts.Store),
		Cart:     cart.New(),
		lastSeen: now,
	}
	// Leaving the authenticated state empties the cart.
	client.cancelWatch = client.Store.Watch(func(prev, next session.Snapshot) {
		if prev.State == session.StateAuthenticated && next.State == session.StateAnonymous {
			client.Cart.Clear()
		}
	})
	r.clients[sessionID] = client
	count := len(r.clients)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(count)
	if err := client.Store.Init(ctx); err != nil {
		r.remove(sessionID)
		return nil, err
	}
	r.logger.Debug("session created", zap.String("session_id", sessionID))
	return client, nil
}

// Get returns an existing client without creating one.
func (r *Registry) Get(sessionID string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.clients[sessionID]
	return client, ok
}

// Len returns the number of live clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Run evicts idle clients every SweepInterval until ctx is done, then closes all clients.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("evicted idle sessions", zap.Int("count", n))
			}
		case <-ctx.Done():
			r.Close()
			return
		}
	}
}

// Sweep evicts clients idle longer than IdleTTL and returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.opts.Now().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	var evicted []*Client
	for id, client := range r.clients {
		if client.idleSince().Before(cutoff) {
			evicted = append(evicted, client)
			delete(r.clients, id)
		}
	}
	count := len(r.clients)
	r.mu.Unlock()

	for _, client := range evicted {
		client.close()
	}
	r.metrics.SetActiveSessions(count)
	return len(evicted)
}

// Close closes every client.
func (r *Registry) Close() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*Client)
	r.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
	r.metrics.SetActiveSessions(0)
}

func (r *Registry) remove(sessionID string) {
	r.mu.Lock()
	client, ok := r.clients[sessionID]
	delete(r.clients, sessionID)
	count := len(r.clients)
	r.mu.Unlock()
	if ok {
		client.close()
	}
	r.metrics.SetActiveSessions(count)
}
