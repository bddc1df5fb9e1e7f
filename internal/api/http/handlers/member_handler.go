package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-portal/internal/api/dto"
	"github.com/spec-kit/gym-portal/internal/service"
)

// MemberHandler serves the signed-in member pages.
type MemberHandler struct {
	auth          *service.AuthService
	subscriptions *service.SubscriptionService
	attendance    *service.AttendanceService
	shop          *service.ShopService
}

// MemberHandlerDeps bundles the services behind member pages.
type MemberHandlerDeps struct {
	Auth          *service.AuthService
	Subscriptions *service.SubscriptionService
	Attendance    *service.AttendanceService
	Shop          *service.ShopService
}

// NewMemberHandler constructs handler.
func NewMemberHandler(deps MemberHandlerDeps) *MemberHandler {
	return &MemberHandler{
		auth:          deps.Auth,
		subscriptions: deps.Subscriptions,
		attendance:    deps.Attendance,
		shop:          deps.Shop,
	}
}

// Dashboard GET /user.
func (h *MemberHandler) Dashboard(c *fiber.Ctx) error {
	client, userID, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	current, err := h.subscriptions.Current(ctx, userID)
	if err != nil {
		return err
	}
	stats, err := h.attendance.Stats(ctx, userID)
	if err != nil {
		return err
	}
	today, err := h.attendance.Today(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserDashboardResponse{
		Profile:      client.Store.Profile(),
		Subscription: current,
		Stats:        stats,
		Today:        today,
	}})
}

// Subscription GET /user/subscription.
func (h *MemberHandler) Subscription(c *fiber.Ctx) error {
	_, userID, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	current, err := h.subscriptions.Current(ctx, userID)
	if err != nil {
		return err
	}
	history, err := h.subscriptions.History(ctx, userID)
	if err != nil {
		return err
	}
	plans, err := h.subscriptions.ListPlans(ctx)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SubscriptionResponse{Current: current, History: history, Plans: plans}})
}

// PurchaseSubscription POST /user/subscription.
func (h *MemberHandler) PurchaseSubscription(c *fiber.Ctx) error {
	_, userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.PurchaseSubscriptionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	sub, err := h.subscriptions.Purchase(c.UserContext(), userID, req.PlanID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sub})
}

// DeactivateSubscription POST /user/subscription/:id/deactivate.
func (h *MemberHandler) DeactivateSubscription(c *fiber.Ctx) error {
	_, userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.subscriptions.Deactivate(c.UserContext(), userID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Attendance GET /user/attendance.
func (h *MemberHandler) Attendance(c *fiber.Ctx) error {
	_, userID, err := currentUser(c)
	if err != nil {
		return err
	}
	today, err := h.attendance.Today(c.UserContext(), userID)
	if err != nil {
		return err
	}
	history, err := h.attendance.History(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AttendanceResponse{Today: today, History: history}})
}

// CheckIn POST /user/attendance/check-in.
func (h *MemberHandler) CheckIn(c *fiber.Ctx) error {
	_, userID, err := currentUser(c)
	if err != nil {
		return err
	}
	record, err := h.attendance.CheckIn(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": record})
}

// CheckOut POST /user/attendance/check-out.
func (h *MemberHandler) CheckOut(c *fiber.Ctx) error {
	_, userID, err := currentUser(c)
	if err != nil {
		return err
	}
	record, err := h.attendance.CheckOut(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": record})
}

// Orders GET /user/orders.
func (h *MemberHandler) Orders(c *fiber.Ctx) error {
	_, userID, err := currentUser(c)
	if err != nil {
		return err
	}
	orders, err := h.shop.UserOrders(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orders})
}

// Profile GET /user/profile.
func (h *MemberHandler) Profile(c *fiber.Ctx) error {
	client, userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if profile := client.Store.Profile(); profile != nil {
		return c.JSON(fiber.Map{"data": profile})
	}
	profile, err := h.auth.FetchProfile(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profile})
}

// UpdateProfile PATCH /user/profile.
func (h *MemberHandler) UpdateProfile(c *fiber.Ctx) error {
	client, userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	profile, err := h.auth.UpdateProfile(c.UserContext(), userID, req.FullName, req.AvatarURL)
	if err != nil {
		return err
	}
	client.Store.ReloadProfile()
	return c.JSON(fiber.Map{"data": profile})
}
