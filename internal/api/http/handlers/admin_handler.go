package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-portal/internal/api/dto"
	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/service"
	apperrors "github.com/spec-kit/gym-portal/pkg/util/errorutil"
)

// AdminHandler serves the administration pages.
type AdminHandler struct {
	members    *service.MemberService
	attendance *service.AttendanceService
	shop       *service.ShopService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(members *service.MemberService, attendance *service.AttendanceService, shop *service.ShopService) *AdminHandler {
	return &AdminHandler{members: members, attendance: attendance, shop: shop}
}

// Dashboard GET /admin.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	overview, err := h.members.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overview})
}

// Attendance GET /admin/attendance?since=YYYY-MM-DD.
func (h *AdminHandler) Attendance(c *fiber.Ctx) error {
	var since time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
		if err != nil {
			return apperrors.NewValidationError("since must be YYYY-MM-DD", map[string]any{"since": raw})
		}
		since = parsed
	}
	rows, err := h.attendance.AdminList(c.UserContext(), since)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// Orders GET /admin/orders?status=.
func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	var status *domain.OrderStatus
	if raw := c.Query("status"); raw != "" && raw != "all" {
		s := domain.OrderStatus(raw)
		status = &s
	}
	orders, err := h.shop.AllOrders(c.UserContext(), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orders})
}

// UpdateOrderStatus PATCH /admin/orders/:id/status.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var req dto.UpdateOrderStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	order, err := h.shop.UpdateOrderStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": order})
}

// Inventory GET /admin/inventory.
func (h *AdminHandler) Inventory(c *fiber.Ctx) error {
	products, err := h.shop.Inventory(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": products})
}

// UpdateProduct PATCH /admin/inventory/:id.
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	var req dto.UpdateProductRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	product, err := h.shop.UpdateProduct(c.UserContext(), c.Params("id"), req.ToDomain())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": product})
}

// Members GET /admin/members.
func (h *AdminHandler) Members(c *fiber.Ctx) error {
	members, err := h.members.Members(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": members})
}

// Financials GET /admin/financials?year=&month=.
func (h *AdminHandler) Financials(c *fiber.Ctx) error {
	year, err := optionalInt(c, "year")
	if err != nil {
		return err
	}
	month, err := optionalInt(c, "month")
	if err != nil {
		return err
	}
	summary, err := h.members.Financials(c.UserContext(), year, month)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

func optionalInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(key+" must be a number", map[string]any{key: raw})
	}
	return v, nil
}
