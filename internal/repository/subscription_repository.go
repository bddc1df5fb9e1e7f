package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/gym-portal/internal/domain"
)

// SubscriptionRepository manages member subscriptions.
type SubscriptionRepository interface {
	Query(ctx context.Context, userID string, filter domain.SubscriptionFilter) ([]domain.Subscription, error)
	// Replace deactivates the user's active subscriptions and inserts sub in one transaction.
	Replace(ctx context.Context, sub *domain.Subscription) error
	Deactivate(ctx context.Context, id, userID string) error
}

type subscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository constructs repository.
func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{pool: pool}
}

func (r *subscriptionRepository) Query(ctx context.Context, userID string, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
	base := `SELECT s.id, s.user_id, s.plan_id, COALESCE(p.name, ''), s.start_date, s.end_date,
                    s.is_active, s.payment_status, s.payment_method, s.auto_renew, s.created_at
             FROM user_subscriptions s
             LEFT JOIN membership_plans p ON p.id = s.plan_id`
	args := []any{userID}
	clauses := []string{"s.user_id=$1"}

	if filter.ActiveOnly {
		clauses = append(clauses, "s.is_active")
	}
	if filter.EndsAfter != nil {
		args = append(args, *filter.EndsAfter)
		clauses = append(clauses, fmt.Sprintf("s.end_date > $%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY s.end_date DESC`, base, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.PlanID,
			&sub.PlanName,
			&sub.StartDate,
			&sub.EndDate,
			&sub.IsActive,
			&sub.PaymentStatus,
			&sub.PaymentMethod,
			&sub.AutoRenew,
			&sub.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}

func (r *subscriptionRepository) Replace(ctx context.Context, sub *domain.Subscription) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const deactivate = `
            UPDATE user_subscriptions SET is_active=FALSE, updated_at=NOW()
            WHERE user_id=$1 AND is_active`
		if _, err := tx.Exec(ctx, deactivate, sub.UserID); err != nil {
			return err
		}

		const insert = `
            INSERT INTO user_subscriptions (user_id, plan_id, start_date, end_date, is_active, payment_status, payment_method, auto_renew)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            RETURNING id, created_at`
		return tx.QueryRow(ctx, insert,
			sub.UserID,
			sub.PlanID,
			sub.StartDate,
			sub.EndDate,
			sub.IsActive,
			sub.PaymentStatus,
			sub.PaymentMethod,
			sub.AutoRenew,
		).Scan(&sub.ID, &sub.CreatedAt)
	})
}

func (r *subscriptionRepository) Deactivate(ctx context.Context, id, userID string) error {
	const query = `
        UPDATE user_subscriptions SET is_active=FALSE, updated_at=NOW()
        WHERE id=$1 AND user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
