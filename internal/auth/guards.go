package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-portal/internal/authz"
	"github.com/spec-kit/gym-portal/internal/observability"
)

// Guards turns gate decisions into HTTP responses.
type Guards struct {
	metrics *observability.Metrics
}

// NewGuards constructs guards recording their outcomes in metrics.
func NewGuards(metrics *observability.Metrics) *Guards {
	return &Guards{metrics: metrics}
}

// RequireAuthentication admits any signed-in client.
func (g *Guards) RequireAuthentication() fiber.Handler {
	return g.guard("authentication", func(c *fiber.Ctx, client *Client) authz.Decision {
		return authz.RequiresAuthentication(client.Store)
	})
}

// RequireAdmin admits admins only.
func (g *Guards) RequireAdmin() fiber.Handler {
	return g.guard("admin", func(c *fiber.Ctx, client *Client) authz.Decision {
		return authz.RequiresAdmin(client.Store)
	})
}

// RequireActiveSubscription admits members holding a current subscription.
func (g *Guards) RequireActiveSubscription() fiber.Handler {
	return g.guard("subscription", func(c *fiber.Ctx, client *Client) authz.Decision {
		return authz.RequiresActiveSubscription(c.UserContext(), client.Store)
	})
}

func (g *Guards) guard(name string, evaluate func(*fiber.Ctx, *Client) authz.Decision) fiber.Handler {
	return func(c *fiber.Ctx) error {
		client, ok := ClientFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusInternalServerError, "session middleware not installed")
		}

		decision := evaluate(c, client)
		g.metrics.RecordGuardDecision(name, decision.Outcome.String())

		switch decision.Outcome {
		case authz.Allow:
			return c.Next()
		case authz.Loading:
			c.Set(fiber.HeaderRetryAfter, "1")
			return c.Status(http.StatusAccepted).JSON(fiber.Map{"status": "loading"})
		default:
			return c.Redirect(decision.Target, http.StatusSeeOther)
		}
	}
}
