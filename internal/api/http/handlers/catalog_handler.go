package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/service"
)

// CatalogHandler serves the public plan and product listings.
type CatalogHandler struct {
	subscriptions *service.SubscriptionService
	shop          *service.ShopService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(subscriptions *service.SubscriptionService, shop *service.ShopService) *CatalogHandler {
	return &CatalogHandler{subscriptions: subscriptions, shop: shop}
}

// Plans GET /plans.
func (h *CatalogHandler) Plans(c *fiber.Ctx) error {
	plans, err := h.subscriptions.ListPlans(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": plans})
}

// Products GET /products?category=&search=.
func (h *CatalogHandler) Products(c *fiber.Ctx) error {
	filter := domain.ProductFilter{Search: c.Query("search")}
	if category := strings.TrimSpace(c.Query("category")); category != "" && category != "all" {
		filter.CategoryID = &category
	}
	products, err := h.shop.ListProducts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": products})
}

// Product GET /products/:id.
func (h *CatalogHandler) Product(c *fiber.Ctx) error {
	product, err := h.shop.Product(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": product})
}

// Categories GET /categories.
func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.shop.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categories})
}
