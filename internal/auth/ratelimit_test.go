package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/gym-portal/pkg/util/errorutil"
)

func newTestLimiter(t *testing.T, perMinute, burst int) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimiterConfig{PerMinute: perMinute, Burst: burst, CleanupInterval: time.Hour}, zap.NewNop())
	t.Cleanup(rl.Stop)
	return rl
}

func TestRateLimiter_AllowBurstThenDeny(t *testing.T) {
	rl := newTestLimiter(t, 1, 3)
	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "attempt %d", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "keys are independent")
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_CleanupDropsIdleEntries(t *testing.T) {
	rl := newTestLimiter(t, 10, 1)
	rl.Allow("10.0.0.1")
	rl.cleanup(time.Now())
	assert.Equal(t, 1, rl.Len())

	rl.cleanup(time.Now().Add(3 * time.Hour))
	assert.Equal(t, 0, rl.Len())
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := newTestLimiter(t, 10, 1)
	rl.Stop()
	rl.Stop()
}

func TestRateLimiter_Handle(t *testing.T) {
	rl := newTestLimiter(t, 10, 1)
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) {
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		}
		return c.SendStatus(http.StatusInternalServerError)
	}})
	app.Post("/auth/login", rl.Handle, func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/auth/login", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/auth/login", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
}
