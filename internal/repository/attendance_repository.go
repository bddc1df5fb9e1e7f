package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/gym-portal/internal/domain"
)

// AttendanceRepository stores gym visits.
type AttendanceRepository interface {
	// LatestSince returns the most recent visit checked in at or after since.
	LatestSince(ctx context.Context, userID string, since time.Time) (*domain.AttendanceRecord, error)
	CheckIn(ctx context.Context, record *domain.AttendanceRecord) error
	// CheckOut closes the user's latest open visit.
	CheckOut(ctx context.Context, userID string, at time.Time) (*domain.AttendanceRecord, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.AttendanceRecord, error)
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
	ListAdmin(ctx context.Context, since time.Time, limit int) ([]domain.AdminAttendanceRow, error)
}

type attendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository constructs repository.
func NewAttendanceRepository(pool *pgxpool.Pool) AttendanceRepository {
	return &attendanceRepository{pool: pool}
}

const attendanceColumns = `id, user_id, check_in_time, check_out_time, location, COALESCE(created_by::text, '')`

func (r *attendanceRepository) LatestSince(ctx context.Context, userID string, since time.Time) (*domain.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + `
        FROM attendance_records
        WHERE user_id=$1 AND check_in_time >= $2
        ORDER BY check_in_time DESC
        LIMIT 1`
	return scanAttendance(r.pool.QueryRow(ctx, query, userID, since))
}

func (r *attendanceRepository) CheckIn(ctx context.Context, record *domain.AttendanceRecord) error {
	const query = `
        INSERT INTO attendance_records (user_id, check_in_time, location, created_by)
        VALUES ($1,$2,$3,NULLIF($4, '')::uuid)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		record.UserID,
		record.CheckInTime,
		record.Location,
		record.CreatedBy,
	).Scan(&record.ID)
}

func (r *attendanceRepository) CheckOut(ctx context.Context, userID string, at time.Time) (*domain.AttendanceRecord, error) {
	query := `
        UPDATE attendance_records SET check_out_time=$2
        WHERE id = (
            SELECT id FROM attendance_records
            WHERE user_id=$1 AND check_out_time IS NULL
            ORDER BY check_in_time DESC
            LIMIT 1
        )
        RETURNING ` + attendanceColumns
	return scanAttendance(r.pool.QueryRow(ctx, query, userID, at))
}

func (r *attendanceRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.AttendanceRecord, error) {
	if limit <= 0 {
		limit = 30
	}
	query := fmt.Sprintf(`SELECT %s FROM attendance_records WHERE user_id=$1 ORDER BY check_in_time DESC LIMIT %d`,
		attendanceColumns, limit)
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AttendanceRecord
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	return result, rows.Err()
}

func (r *attendanceRepository) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM attendance_records WHERE user_id=$1 AND check_in_time >= $2`
	var n int
	err := r.pool.QueryRow(ctx, query, userID, since).Scan(&n)
	return n, err
}

func (r *attendanceRepository) ListAdmin(ctx context.Context, since time.Time, limit int) ([]domain.AdminAttendanceRow, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`
        SELECT a.id, a.user_id, a.check_in_time, a.check_out_time, a.location, COALESCE(a.created_by::text, ''),
               COALESCE(p.full_name, ''), u.email,
               COALESCE((
                   SELECT mp.name FROM user_subscriptions s
                   JOIN membership_plans mp ON mp.id = s.plan_id
                   WHERE s.user_id = a.user_id AND s.is_active
                   ORDER BY s.end_date DESC LIMIT 1
               ), ''),
               CASE WHEN a.check_out_time IS NULL THEN NULL
                    ELSE (EXTRACT(EPOCH FROM (a.check_out_time - a.check_in_time)) / 60)::int END,
               a.check_out_time IS NULL
        FROM attendance_records a
        JOIN users u ON u.id = a.user_id
        LEFT JOIN profiles p ON p.id = a.user_id
        WHERE a.check_in_time >= $1
        ORDER BY a.check_in_time DESC
        LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AdminAttendanceRow
	for rows.Next() {
		var row domain.AdminAttendanceRow
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.CheckInTime,
			&row.CheckOutTime,
			&row.Location,
			&row.CreatedBy,
			&row.FullName,
			&row.Email,
			&row.MembershipPlan,
			&row.DurationMinutes,
			&row.IsCurrentlyCheckedIn,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func scanAttendance(row pgx.Row) (*domain.AttendanceRecord, error) {
	var record domain.AttendanceRecord
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.CheckInTime,
		&record.CheckOutTime,
		&record.Location,
		&record.CreatedBy,
	); err != nil {
		return nil, err
	}
	return &record, nil
}
