package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-portal/internal/api/dto"
	"github.com/spec-kit/gym-portal/internal/cart"
	"github.com/spec-kit/gym-portal/internal/service"
	apperrors "github.com/spec-kit/gym-portal/pkg/util/errorutil"
)

// CartHandler manages the session cart and checkout.
type CartHandler struct {
	shop *service.ShopService
}

// NewCartHandler constructs handler.
func NewCartHandler(shop *service.ShopService) *CartHandler {
	return &CartHandler{shop: shop}
}

// Get GET /user/cart.
func (h *CartHandler) Get(c *fiber.Ctx) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCartResponse(client.Cart)})
}

// AddItem POST /user/cart/items.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	var req dto.AddCartItemRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, err := h.shop.CartProduct(c.UserContext(), req.ProductID)
	if err != nil {
		return err
	}
	if err := client.Cart.Add(product, quantity); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCartResponse(client.Cart)})
}

// UpdateItem PATCH /user/cart/items/:productId.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	var req dto.UpdateCartItemRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	client.Cart.UpdateQuantity(c.Params("productId"), req.Quantity)
	return c.JSON(fiber.Map{"data": dto.NewCartResponse(client.Cart)})
}

// RemoveItem DELETE /user/cart/items/:productId.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	client.Cart.Remove(c.Params("productId"))
	return c.JSON(fiber.Map{"data": dto.NewCartResponse(client.Cart)})
}

// Clear DELETE /user/cart.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	client.Cart.Clear()
	return c.JSON(fiber.Map{"data": dto.NewCartResponse(client.Cart)})
}

// Checkout POST /user/cart/checkout. The ordered lines leave the cart once the order is placed.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	client, userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CheckoutRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	lines := client.Cart.Lines()
	order, err := h.shop.Checkout(c.UserContext(), userID, service.CheckoutInput{
		Lines:           lines,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		return err
	}
	client.Cart.Deduct(lines)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": order})
}
