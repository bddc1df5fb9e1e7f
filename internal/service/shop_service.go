package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/gym-portal/internal/cart"
	"github.com/spec-kit/gym-portal/internal/domain"
	"github.com/spec-kit/gym-portal/internal/events"
	"github.com/spec-kit/gym-portal/internal/repository"
	"github.com/spec-kit/gym-portal/pkg/util/errorutil"
)

const adminOrderLimit = 200

// ShopService exposes the product catalogue and order workflows.
type ShopService struct {
	products   repository.ProductRepository
	orders     repository.OrderRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ShopDependencies bundles repositories for the shop service.
type ShopDependencies struct {
	ProductRepo repository.ProductRepository
	OrderRepo   repository.OrderRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Now         func() time.Time
}

// CheckoutInput describes an order placed from a cart.
type CheckoutInput struct {
	Lines           []cart.Line
	DeliveryAddress string
	PaymentMethod   string
}

// NewShopService constructs the service.
func NewShopService(deps ShopDependencies) *ShopService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopService{
		products:   deps.ProductRepo,
		orders:     deps.OrderRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
	}
}

// ListProducts returns catalogue products. Members only ever see active ones.
func (s *ShopService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.CategoryID != nil {
		if _, err := uuid.Parse(*filter.CategoryID); err != nil {
			return nil, errorutil.NewValidationError("invalid category id", map[string]any{"category_id": *filter.CategoryID})
		}
	}
	return s.products.List(ctx, filter)
}

// Categories lists product categories.
func (s *ShopService) Categories(ctx context.Context) ([]domain.ProductCategory, error) {
	return s.products.ListCategories(ctx)
}

// Product returns an active product.
func (s *ShopService) Product(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, errorutil.NewNotFound("product", map[string]any{"product_id": id})
	}
	return product, nil
}

// CartProduct resolves a product into the snapshot stored in a cart.
func (s *ShopService) CartProduct(ctx context.Context, id string) (cart.Product, error) {
	product, err := s.Product(ctx, id)
	if err != nil {
		return cart.Product{}, err
	}
	if product.StockQuantity <= 0 {
		return cart.Product{}, errorutil.NewConflict("product is out of stock", map[string]any{"product_id": id})
	}
	return cart.Product{ID: product.ID, Name: product.Name, UnitPrice: product.Price}, nil
}

// Checkout places an order for the cart lines. Payment is a placeholder and always completes.
func (s *ShopService) Checkout(ctx context.Context, userID string, input CheckoutInput) (*domain.Order, error) {
	if len(input.Lines) == 0 {
		return nil, errorutil.NewValidationError("cart is empty", nil)
	}
	address := sanitizeText(input.DeliveryAddress)
	if address == "" {
		return nil, errorutil.NewValidationError("delivery address is required", nil)
	}
	method := strings.TrimSpace(input.PaymentMethod)
	if method == "" {
		method = DefaultPaymentMethod
	}

	order := &domain.Order{
		UserID:          userID,
		PaymentMethod:   method,
		DeliveryAddress: address,
		Items:           make([]domain.OrderItem, 0, len(input.Lines)),
	}
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return nil, errorutil.NewValidationError("quantity must be at least 1", map[string]any{"product_id": line.Product.ID})
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.Product.UnitPrice,
		})
		order.TotalAmount += line.Subtotal()
	}
	order.TotalAmount = roundCents(order.TotalAmount)

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, errorutil.NewConflict("not enough stock for one or more items", nil)
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:   events.EventOrderPlaced,
		UserID: userID,
		Payload: events.OrderPlacedPayload{
			OrderID:     order.ID,
			TotalAmount: order.TotalAmount,
			ItemCount:   len(order.Items),
		},
	})
	return order, nil
}

// UserOrders lists the user's orders, newest first.
func (s *ShopService) UserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// AllOrders lists orders for the admin view, optionally by status.
func (s *ShopService) AllOrders(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error) {
	if status != nil && !status.Valid() {
		return nil, errorutil.NewValidationError("invalid order status", map[string]any{"status": *status})
	}
	return s.orders.ListAll(ctx, status, adminOrderLimit)
}

// UpdateOrderStatus moves an order to status.
func (s *ShopService) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, errorutil.NewValidationError("invalid order status", map[string]any{"status": status})
	}
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, errorutil.NewValidationError("invalid order id", map[string]any{"order_id": orderID})
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("order", map[string]any{"order_id": orderID})
		}
		return nil, err
	}
	old := order.Status
	if old == status {
		return order, nil
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.Status = status
	order.UpdatedAt = s.now()

	s.publish(ctx, events.Event{
		Type:   events.EventOrderStatusChanged,
		UserID: order.UserID,
		Payload: events.OrderStatusChangedPayload{
			OrderID:   orderID,
			OldStatus: old,
			NewStatus: status,
		},
	})
	return order, nil
}

// Inventory lists every product, including inactive ones.
func (s *ShopService) Inventory(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx, domain.ProductFilter{IncludeInactive: true})
}

// UpdateProduct applies an admin edit.
func (s *ShopService) UpdateProduct(ctx context.Context, id string, update domain.ProductUpdate) (*domain.Product, error) {
	if _, err := s.getProduct(ctx, id); err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := sanitizeText(*update.Name)
		if name == "" {
			return nil, errorutil.NewValidationError("name must not be empty", nil)
		}
		update.Name = &name
	}
	if update.Description != nil {
		description := sanitizeDescription(*update.Description)
		update.Description = &description
	}
	if update.Price != nil && *update.Price < 0 {
		return nil, errorutil.NewValidationError("price must not be negative", nil)
	}
	if update.StockQuantity != nil && *update.StockQuantity < 0 {
		return nil, errorutil.NewValidationError("stock must not be negative", nil)
	}
	return s.products.Update(ctx, id, update)
}

func (s *ShopService) getProduct(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errorutil.NewValidationError("invalid product id", map[string]any{"product_id": id})
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("product", map[string]any{"product_id": id})
		}
		return nil, err
	}
	return product, nil
}

func (s *ShopService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
