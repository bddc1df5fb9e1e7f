package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/gym-portal/internal/domain"
)

// MemberRepository answers admin reporting queries across members, orders and subscriptions.
type MemberRepository interface {
	ListMembers(ctx context.Context, monthStart time.Time) ([]domain.MemberSummary, error)
	Financials(ctx context.Context, from, to time.Time) (*domain.FinancialSummary, error)
	Overview(ctx context.Context, now time.Time) (*domain.AdminOverview, error)
}

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository constructs repository.
func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepository{pool: pool}
}

func (r *memberRepository) ListMembers(ctx context.Context, monthStart time.Time) ([]domain.MemberSummary, error) {
	const query = `
        SELECT u.id, COALESCE(p.full_name, ''), u.email, p.avatar_url, COALESCE(p.role, 'member'), u.created_at,
               ls.plan_name, ls.start_date, ls.end_date, COALESCE(ls.is_active, FALSE),
               (SELECT MAX(a.check_in_time) FROM attendance_records a WHERE a.user_id = u.id),
               (SELECT COUNT(*) FROM attendance_records a WHERE a.user_id = u.id AND a.check_in_time >= $1)
        FROM users u
        LEFT JOIN profiles p ON p.id = u.id
        LEFT JOIN LATERAL (
            SELECT mp.name AS plan_name, s.start_date, s.end_date, s.is_active
            FROM user_subscriptions s
            LEFT JOIN membership_plans mp ON mp.id = s.plan_id
            WHERE s.user_id = u.id
            ORDER BY s.end_date DESC
            LIMIT 1
        ) ls ON TRUE
        ORDER BY u.created_at DESC`

	rows, err := r.pool.Query(ctx, query, monthStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MemberSummary
	for rows.Next() {
		var (
			m    domain.MemberSummary
			role string
		)
		if err := rows.Scan(
			&m.UserID,
			&m.FullName,
			&m.Email,
			&m.AvatarURL,
			&role,
			&m.JoinDate,
			&m.PlanName,
			&m.SubscriptionStart,
			&m.SubscriptionEnd,
			&m.IsActive,
			&m.LastCheckIn,
			&m.VisitsThisMonth,
		); err != nil {
			return nil, err
		}
		m.Role = domain.ParseRole(role)
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *memberRepository) Financials(ctx context.Context, from, to time.Time) (*domain.FinancialSummary, error) {
	const query = `
        SELECT
            (SELECT COALESCE(SUM(total_amount), 0)::float8 FROM orders
             WHERE payment_status = 'completed' AND created_at >= $1 AND created_at < $2),
            (SELECT COUNT(*) FROM orders
             WHERE created_at >= $1 AND created_at < $2),
            (SELECT COALESCE(SUM(mp.price), 0)::float8 FROM user_subscriptions s
             JOIN membership_plans mp ON mp.id = s.plan_id
             WHERE s.payment_status = 'completed' AND s.start_date >= $1 AND s.start_date < $2),
            (SELECT COUNT(*) FROM user_subscriptions
             WHERE is_active AND start_date < $2 AND end_date >= $1)`

	summary := domain.FinancialSummary{
		Month: from.Month().String(),
		Year:  from.Year(),
	}
	if err := r.pool.QueryRow(ctx, query, from, to).Scan(
		&summary.OrderRevenue,
		&summary.OrdersCount,
		&summary.MembershipRevenue,
		&summary.ActiveMemberships,
	); err != nil {
		return nil, err
	}
	summary.TotalRevenue = summary.OrderRevenue + summary.MembershipRevenue
	return &summary, nil
}

func (r *memberRepository) Overview(ctx context.Context, now time.Time) (*domain.AdminOverview, error) {
	const query = `
        SELECT
            (SELECT COUNT(*) FROM users),
            (SELECT COUNT(DISTINCT user_id) FROM user_subscriptions WHERE is_active AND end_date > $1),
            (SELECT COUNT(*) FROM attendance_records WHERE check_out_time IS NULL AND check_in_time >= $2),
            (SELECT COUNT(*) FROM orders WHERE status IN ('pending', 'processing'))`

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var overview domain.AdminOverview
	if err := r.pool.QueryRow(ctx, query, now, dayStart).Scan(
		&overview.TotalMembers,
		&overview.ActiveMemberships,
		&overview.CheckedInNow,
		&overview.PendingOrders,
	); err != nil {
		return nil, err
	}
	return &overview, nil
}
