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

type GuestRepository interface {
	List(ctx context.Context) ([]domain.Guest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Guest, error)
	FindByName(ctx context.Context, name string) (*domain.Guest, error)
	MarkAnswered(ctx context.Context, id uuid.UUID) error
	Create(ctx context.Context, req *domain.CreateGuestRequest, passwordHash string) (*domain.Guest, error)
}

type guestRepository struct {
	pool *pgxpool.Pool
}

func NewGuestRepository(pool *pgxpool.Pool) GuestRepository {
	return &guestRepository{pool: pool}
}

const guestCols = `id, name, password_hash, side, type, is_answered_qa, created_at`

func scanGuest(row pgx.Row) (*domain.Guest, error) {
	var g domain.Guest
	err := row.Scan(&g.ID, &g.Name, &g.PasswordHash, &g.Side, &g.Type, &g.IsAnsweredQA, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *guestRepository) List(ctx context.Context) ([]domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests ORDER BY side, name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guests []domain.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, *g)
	}
	return guests, rows.Err()
}

func (r *guestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	g, err := scanGuest(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return g, err
}

func (r *guestRepository) FindByName(ctx context.Context, name string) (*domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE name=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	g, err := scanGuest(r.pool.QueryRow(ctx, q, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return g, err
}

func (r *guestRepository) MarkAnswered(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE guests SET is_answered_qa=true WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Create inserts a guest; an existing guest with the same name is returned unchanged.
func (r *guestRepository) Create(ctx context.Context, req *domain.CreateGuestRequest, passwordHash string) (*domain.Guest, error) {
	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	const q = `INSERT INTO guests (id, name, password_hash, side, type)
	VALUES ($1,$2,$3,$4,$5)
	ON CONFLICT (name) DO UPDATE SET name=EXCLUDED.name
	RETURNING ` + guestCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanGuest(r.pool.QueryRow(ctx, q, id, req.Name, passwordHash, req.Side, req.Type))
}
