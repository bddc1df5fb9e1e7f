package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/spec-kit/gym-portal/internal/api/http/handlers"
	"github.com/spec-kit/gym-portal/internal/auth"
	"github.com/spec-kit/gym-portal/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Catalog     *handlers.CatalogHandler
	Member      *handlers.MemberHandler
	Cart        *handlers.CartHandler
	Admin       *handlers.AdminHandler
	Sessions    *auth.SessionMiddleware
	Guards      *auth.Guards
	AuthLimiter *auth.RateLimiter
	Gatherer    prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes. Guards are attached per route so that a group
// prefix never leaks its guard onto sibling routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(observability.Handler(cfg.Gatherer)))
	}

	sess := cfg.Sessions.Handle
	authed := cfg.Guards.RequireAuthentication()
	subscribed := cfg.Guards.RequireActiveSubscription()
	admin := cfg.Guards.RequireAdmin()

	limited := []fiber.Handler{sess}
	if cfg.AuthLimiter != nil {
		limited = []fiber.Handler{cfg.AuthLimiter.Handle, sess}
	}
	app.Post("/auth/login", append(limited, cfg.Auth.Login)...)
	app.Post("/auth/signup", append(limited, cfg.Auth.Signup)...)
	app.Post("/auth/logout", sess, cfg.Auth.Logout)
	app.Post("/auth/refresh", sess, cfg.Auth.Refresh)
	app.Get("/auth/session", sess, cfg.Auth.Session)

	app.Get("/plans", cfg.Catalog.Plans)
	app.Get("/products", cfg.Catalog.Products)
	app.Get("/products/:id", cfg.Catalog.Product)
	app.Get("/categories", cfg.Catalog.Categories)

	app.Get("/user/subscription", sess, authed, cfg.Member.Subscription)
	app.Post("/user/subscription", sess, authed, cfg.Member.PurchaseSubscription)
	app.Post("/user/subscription/:id/deactivate", sess, authed, cfg.Member.DeactivateSubscription)

	member := []fiber.Handler{sess, authed, subscribed}
	route := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, member...), h)
	}
	app.Get("/user", route(cfg.Member.Dashboard)...)
	app.Get("/user/attendance", route(cfg.Member.Attendance)...)
	app.Post("/user/attendance/check-in", route(cfg.Member.CheckIn)...)
	app.Post("/user/attendance/check-out", route(cfg.Member.CheckOut)...)
	app.Get("/user/cart", route(cfg.Cart.Get)...)
	app.Post("/user/cart/items", route(cfg.Cart.AddItem)...)
	app.Patch("/user/cart/items/:productId", route(cfg.Cart.UpdateItem)...)
	app.Delete("/user/cart/items/:productId", route(cfg.Cart.RemoveItem)...)
	app.Delete("/user/cart", route(cfg.Cart.Clear)...)
	app.Post("/user/cart/checkout", route(cfg.Cart.Checkout)...)
	app.Get("/user/orders", route(cfg.Member.Orders)...)
	app.Get("/user/profile", route(cfg.Member.Profile)...)
	app.Patch("/user/profile", route(cfg.Member.UpdateProfile)...)

	adminRoute := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{sess, authed, admin, h}
	}
	app.Get("/admin", adminRoute(cfg.Admin.Dashboard)...)
	app.Get("/admin/attendance", adminRoute(cfg.Admin.Attendance)...)
	app.Get("/admin/orders", adminRoute(cfg.Admin.Orders)...)
	app.Patch("/admin/orders/:id/status", adminRoute(cfg.Admin.UpdateOrderStatus)...)
	app.Get("/admin/inventory", adminRoute(cfg.Admin.Inventory)...)
	app.Patch("/admin/inventory/:id", adminRoute(cfg.Admin.UpdateProduct)...)
	app.Get("/admin/members", adminRoute(cfg.Admin.Members)...)
	app.Get("/admin/financials", adminRoute(cfg.Admin.Financials)...)
}
