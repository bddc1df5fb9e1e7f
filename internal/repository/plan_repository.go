package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/gym-portal/internal/domain"
)

// PlanRepository reads membership plans.
type PlanRepository interface {
	ListActive(ctx context.Context) ([]domain.MembershipPlan, error)
	GetByID(ctx context.Context, id string) (*domain.MembershipPlan, error)
}

type planRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRepository constructs repository.
func NewPlanRepository(pool *pgxpool.Pool) PlanRepository {
	return &planRepository{pool: pool}
}

const planColumns = `id, name, description, price, duration_days, features, is_active, created_at`

func (r *planRepository) ListActive(ctx context.Context) ([]domain.MembershipPlan, error) {
	query := `SELECT ` + planColumns + ` FROM membership_plans WHERE is_active ORDER BY price ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MembershipPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *plan)
	}
	return result, rows.Err()
}

func (r *planRepository) GetByID(ctx context.Context, id string) (*domain.MembershipPlan, error) {
	query := `SELECT ` + planColumns + ` FROM membership_plans WHERE id=$1`
	return scanPlan(r.pool.QueryRow(ctx, query, id))
}

func scanPlan(row pgx.Row) (*domain.MembershipPlan, error) {
	var plan domain.MembershipPlan
	if err := row.Scan(
		&plan.ID,
		&plan.Name,
		&plan.Description,
		&plan.Price,
		&plan.DurationDays,
		&plan.Features,
		&plan.IsActive,
		&plan.CreatedAt,
	); err != nil {
		return nil, err
	}
	if plan.Features == nil {
		plan.Features = []string{}
	}
	return &plan, nil
}
