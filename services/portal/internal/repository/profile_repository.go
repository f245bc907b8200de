package repository

import (
	"context"
	"errors"
	"time"

	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository interface {
	List(ctx context.Context) ([]domain.GuestProfile, error)
	FindByGuestID(ctx context.Context, guestID uuid.UUID) (*domain.GuestProfile, error)
	UpsertAvatar(ctx context.Context, guestID uuid.UUID, avatarURL string) (*domain.GuestProfile, error)
	UpsertLocation(ctx context.Context, guestID uuid.UUID, location *string) (*domain.GuestProfile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileCols = `guest_id, avatar_url, location, updated_at`

func scanProfile(row pgx.Row) (*domain.GuestProfile, error) {
	var p domain.GuestProfile
	if err := row.Scan(&p.GuestID, &p.AvatarURL, &p.Location, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) List(ctx context.Context) ([]domain.GuestProfile, error) {
	const q = `SELECT ` + profileCols + ` FROM guest_profiles`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.GuestProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID) (*domain.GuestProfile, error) {
	const q = `SELECT ` + profileCols + ` FROM guest_profiles WHERE guest_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanProfile(r.pool.QueryRow(ctx, q, guestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *profileRepository) UpsertAvatar(ctx context.Context, guestID uuid.UUID, avatarURL string) (*domain.GuestProfile, error) {
	const q = `INSERT INTO guest_profiles (guest_id, avatar_url, updated_at)
	VALUES ($1,$2,now())
	ON CONFLICT (guest_id) DO UPDATE SET avatar_url=EXCLUDED.avatar_url, updated_at=now()
	RETURNING ` + profileCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanProfile(r.pool.QueryRow(ctx, q, guestID, avatarURL))
}

func (r *profileRepository) UpsertLocation(ctx context.Context, guestID uuid.UUID, location *string) (*domain.GuestProfile, error) {
	const q = `INSERT INTO guest_profiles (guest_id, location, updated_at)
	VALUES ($1,$2,now())
	ON CONFLICT (guest_id) DO UPDATE SET location=EXCLUDED.location, updated_at=now()
	RETURNING ` + profileCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanProfile(r.pool.QueryRow(ctx, q, guestID, location))
}
