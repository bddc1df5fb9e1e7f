package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/gym-portal/internal/domain"
)

// OrderRepository encapsulates shop order persistence.
type OrderRepository interface {
	// Create stores order and its items in one transaction, reserving stock, and
	// leaves the order processing with payment completed.
	Create(ctx context.Context, order *domain.Order) error
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context, status *domain.OrderStatus, limit int) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository constructs repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `id, user_id, total_amount, status, payment_status, payment_method, delivery_address, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertOrder = `
            INSERT INTO orders (user_id, total_amount, status, payment_status, payment_method, delivery_address)
            VALUES ($1,$2,$3,$4,$5,$6)
            RETURNING id, created_at`
		if err := tx.QueryRow(ctx, insertOrder,
			order.UserID,
			order.TotalAmount,
			domain.OrderStatusPending,
			domain.PaymentStatusPending,
			order.PaymentMethod,
			order.DeliveryAddress,
		).Scan(&order.ID, &order.CreatedAt); err != nil {
			return err
		}

		const reserve = `
            UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW()
            WHERE id=$2 AND stock_quantity >= $1`
		const insertItem = `
            INSERT INTO order_items (order_id, product_id, quantity, unit_price)
            VALUES ($1,$2,$3,$4)
            RETURNING id`
		for i := range order.Items {
			item := &order.Items[i]
			cmd, err := tx.Exec(ctx, reserve, item.Quantity, item.ProductID)
			if err != nil {
				return err
			}
			if cmd.RowsAffected() == 0 {
				return fmt.Errorf("product %s: %w", item.ProductID, ErrInsufficientStock)
			}
			item.OrderID = order.ID
			if err := tx.QueryRow(ctx, insertItem, order.ID, item.ProductID, item.Quantity, item.UnitPrice).Scan(&item.ID); err != nil {
				return err
			}
		}

		const settle = `
            UPDATE orders SET status=$1, payment_status=$2, updated_at=NOW()
            WHERE id=$3
            RETURNING status, payment_status, updated_at`
		return tx.QueryRow(ctx, settle,
			domain.OrderStatusProcessing,
			domain.PaymentStatusCompleted,
			order.ID,
		).Scan(&order.Status, &order.PaymentStatus, &order.UpdatedAt)
	})
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *orderRepository) ListAll(ctx context.Context, status *domain.OrderStatus, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	if status != nil {
		query := fmt.Sprintf(`SELECT %s FROM orders WHERE status=$1 ORDER BY created_at DESC LIMIT %d`, orderColumns, limit)
		return r.list(ctx, query, *status)
	}
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC LIMIT %d`, orderColumns, limit)
	return r.list(ctx, query)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	orders, err := r.list(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &orders[0], nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// list loads orders and attaches their items with a second query.
func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.TotalAmount,
			&order.Status,
			&order.PaymentStatus,
			&order.PaymentMethod,
			&order.DeliveryAddress,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			rows.Close()
			return nil, err
		}
		order.Items = []domain.OrderItem{}
		orders = append(orders, order)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	const itemsQuery = `
        SELECT i.id, i.order_id, COALESCE(i.product_id::text, ''), COALESCE(p.name, ''), i.quantity, i.unit_price
        FROM order_items i
        LEFT JOIN products p ON p.id = i.product_id
        WHERE i.order_id = ANY($1::uuid[])
        ORDER BY i.created_at ASC`
	itemRows, err := r.pool.Query(ctx, itemsQuery, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var item domain.OrderItem
		if err := itemRows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
		); err != nil {
			return nil, err
		}
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, itemRows.Err()
}
