package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/gym-portal/internal/domain"
)

// ProfileRepository manages member profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	// EnsureExists creates the profile with fullName unless one already exists,
	// then returns the stored row. Concurrent callers see the same row.
	EnsureExists(ctx context.Context, id, fullName string) (*domain.Profile, error)
	Update(ctx context.Context, id string, fullName *string, avatarURL *string) (*domain.Profile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository constructs repository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `id, full_name, avatar_url, role, created_at, updated_at`

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id=$1`
	return scanProfile(r.pool.QueryRow(ctx, query, id))
}

func (r *profileRepository) EnsureExists(ctx context.Context, id, fullName string) (*domain.Profile, error) {
	const insert = `
        INSERT INTO profiles (id, full_name)
        VALUES ($1, NULLIF($2, ''))
        ON CONFLICT (id) DO NOTHING`
	if _, err := r.pool.Exec(ctx, insert, id, fullName); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *profileRepository) Update(ctx context.Context, id string, fullName *string, avatarURL *string) (*domain.Profile, error) {
	query := `
        UPDATE profiles SET
            full_name = COALESCE($1, full_name),
            avatar_url = COALESCE($2, avatar_url),
            updated_at = NOW()
        WHERE id=$3
        RETURNING ` + profileColumns
	return scanProfile(r.pool.QueryRow(ctx, query, fullName, avatarURL, id))
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var (
		profile  domain.Profile
		fullName *string
		role     string
	)
	if err := row.Scan(
		&profile.ID,
		&fullName,
		&profile.AvatarURL,
		&role,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if fullName != nil {
		profile.FullName = *fullName
	}
	profile.Role = domain.ParseRole(role)
	return &profile, nil
}
