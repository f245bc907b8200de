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

type TimelineRepository interface {
	// ListWithOwner returns every event with its creator's side resolved, ordered by date.
	ListWithOwner(ctx context.Context) ([]domain.TimelineEvent, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TimelineEvent, error)
	Create(ctx context.Context, creatorID uuid.UUID, req *domain.CreateTimelineEventRequest) (*domain.TimelineEvent, error)
	Update(ctx context.Context, e domain.TimelineEvent) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type timelineRepository struct {
	pool *pgxpool.Pool
}

func NewTimelineRepository(pool *pgxpool.Pool) TimelineRepository {
	return &timelineRepository{pool: pool}
}

const timelineSelect = `SELECT te.id, te.date, te.title, te.location, te.visibility,
	te.created_by, g.side, te.side, te.created_at
FROM timeline_events te
LEFT JOIN guests g ON g.id = te.created_by`

func scanTimelineEvent(row pgx.Row) (*domain.TimelineEvent, error) {
	var (
		e         domain.TimelineEvent
		createdBy *uuid.UUID
	)
	err := row.Scan(&e.ID, &e.Date, &e.Title, &e.Location, &e.Visibility,
		&createdBy, &e.CreatorSide, &e.Side, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		e.CreatedBy = *createdBy
	}
	return &e, nil
}

func (r *timelineRepository) ListWithOwner(ctx context.Context) ([]domain.TimelineEvent, error) {
	const q = timelineSelect + ` ORDER BY te.date, te.created_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.TimelineEvent
	for rows.Next() {
		e, err := scanTimelineEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *timelineRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TimelineEvent, error) {
	const q = timelineSelect + ` WHERE te.id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	e, err := scanTimelineEvent(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (r *timelineRepository) Create(ctx context.Context, creatorID uuid.UUID, req *domain.CreateTimelineEventRequest) (*domain.TimelineEvent, error) {
	const q = `WITH inserted AS (
		INSERT INTO timeline_events (date, title, location, visibility, created_by, side)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING *
	)
	SELECT te.id, te.date, te.title, te.location, te.visibility,
		te.created_by, g.side, te.side, te.created_at
	FROM inserted te
	LEFT JOIN guests g ON g.id = te.created_by`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanTimelineEvent(r.pool.QueryRow(ctx, q, req.Date, req.Title, req.Location, req.Visibility, creatorID, req.Side))
}

func (r *timelineRepository) Update(ctx context.Context, e domain.TimelineEvent) error {
	const q = `UPDATE timeline_events SET date=$2, title=$3, location=$4, visibility=$5, side=$6 WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, e.ID, e.Date, e.Title, e.Location, e.Visibility, e.Side)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *timelineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM timeline_events WHERE id=$1`
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
