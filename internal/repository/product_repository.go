package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/gym-portal/internal/domain"
)

// ProductRepository encapsulates shop catalogue persistence.
type ProductRepository interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, id string, update domain.ProductUpdate) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.ProductCategory, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, name, description, price, image_url, stock_quantity, category_id, is_active, updated_at`

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if !filter.IncludeInactive {
		clauses = append(clauses, "is_active")
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id=$%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY name ASC`,
		productColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *product)
	}
	return result, rows.Err()
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	return scanProduct(r.pool.QueryRow(ctx, query, id))
}

func (r *productRepository) Update(ctx context.Context, id string, update domain.ProductUpdate) (*domain.Product, error) {
	query := `
        UPDATE products SET
            name = COALESCE($1, name),
            description = COALESCE($2, description),
            price = COALESCE($3, price),
            stock_quantity = COALESCE($4, stock_quantity),
            is_active = COALESCE($5, is_active),
            updated_at = NOW()
        WHERE id=$6
        RETURNING ` + productColumns
	return scanProduct(r.pool.QueryRow(ctx, query,
		update.Name,
		update.Description,
		update.Price,
		update.StockQuantity,
		update.IsActive,
		id,
	))
}

func (r *productRepository) ListCategories(ctx context.Context) ([]domain.ProductCategory, error) {
	const query = `SELECT id, name, description FROM product_categories ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProductCategory
	for rows.Next() {
		var category domain.ProductCategory
		if err := rows.Scan(&category.ID, &category.Name, &category.Description); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.ImageURL,
		&product.StockQuantity,
		&product.CategoryID,
		&product.IsActive,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &product, nil
}
