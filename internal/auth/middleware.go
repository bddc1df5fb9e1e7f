package auth

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	apperrors "github.com/spec-kit/gym-portal/pkg/util/errorutil"
)

const clientKey = "session_client"

// SessionMiddlewareConfig configures the session cookie.
type SessionMiddlewareConfig struct {
	CookieName   string
	CookieSecure bool
	CookieMaxAge time.Duration
	// ReadyWait bounds how long a request waits for a new session's initial fetch
	// and the profile fetch it starts.
	ReadyWait time.Duration
}

// SessionMiddleware binds every request to the client of its session cookie.
type SessionMiddleware struct {
	registry *Registry
	cfg      SessionMiddlewareConfig
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(registry *Registry, cfg SessionMiddlewareConfig) *SessionMiddleware {
	if cfg.CookieName == "" {
		cfg.CookieName = "gym_sid"
	}
	return &SessionMiddleware{registry: registry, cfg: cfg}
}

// Handle resolves or creates the session, issuing a cookie for new ones.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	// Fiber reuses the request buffer; the id outlives the request as a registry key.
	sessionID := utils.CopyString(c.Cookies(m.cfg.CookieName))
	if _, err := uuid.Parse(sessionID); err != nil {
		sessionID = uuid.NewString()
	}

	client, err := m.registry.Resolve(c.UserContext(), sessionID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     m.cfg.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(m.cfg.CookieMaxAge.Seconds()),
		Secure:   m.cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	if m.cfg.ReadyWait > 0 {
		ctx, cancel := context.WithTimeout(c.UserContext(), m.cfg.ReadyWait)
		select {
		case <-client.Store.Ready():
			// The restored identity's profile decides admin routing.
			_ = client.Store.Sync(ctx)
		case <-ctx.Done():
		}
		cancel()
	}

	c.Locals(clientKey, client)
	return c.Next()
}

// ClientFromContext retrieves the session client bound to the request.
func ClientFromContext(c *fiber.Ctx) (*Client, bool) {
	val := c.Locals(clientKey)
	if val == nil {
		return nil, false
	}
	client, ok := val.(*Client)
	return client, ok
}
