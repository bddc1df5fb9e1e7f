package dto

import (
	"github.com/spec-kit/gym-portal/internal/cart"
	"github.com/spec-kit/gym-portal/internal/domain"
)

// AddCartItemRequest adds a product. Quantity defaults to 1.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  *int   `json:"quantity" validate:"omitempty,min=1,max=99"`
}

// UpdateCartItemRequest sets a line quantity. Values below 1 are stored as 1.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=99"`
}

// CheckoutRequest places an order from the cart.
type CheckoutRequest struct {
	DeliveryAddress string `json:"delivery_address" validate:"required,max=500"`
	PaymentMethod   string `json:"payment_method" validate:"omitempty,oneof=credit_card debit_card paypal"`
}

// CartResponse is the cart with derived totals.
type CartResponse struct {
	Items []cart.Line `json:"items"`
	Count int         `json:"count"`
	Total float64     `json:"total"`
}

// NewCartResponse snapshots c.
func NewCartResponse(c *cart.Store) CartResponse {
	lines := c.Lines()
	if lines == nil {
		lines = []cart.Line{}
	}
	return CartResponse{Items: lines, Count: c.Count(), Total: c.TotalPrice()}
}

// UpdateOrderStatusRequest moves an order between fulfilment states.
type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}

// UpdateProductRequest carries admin inventory edits. Omitted fields are unchanged.
type UpdateProductRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string  `json:"description" validate:"omitempty,max=5000"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	StockQuantity *int     `json:"stock_quantity" validate:"omitempty,gte=0"`
	IsActive      *bool    `json:"is_active"`
}

// ToDomain converts the request.
func (r UpdateProductRequest) ToDomain() domain.ProductUpdate {
	return domain.ProductUpdate{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		IsActive:      r.IsActive,
	}
}
