package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChecklistRepository interface {
	// ListWithOwner returns every item with its creator's side resolved, oldest first.
	ListWithOwner(ctx context.Context) ([]domain.ChecklistItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ChecklistItem, error)
	// Create also inserts the creator's initial, not completed state.
	Create(ctx context.Context, creatorID uuid.UUID, req *domain.CreateChecklistItemRequest) (*domain.ChecklistItem, error)
	Update(ctx context.Context, item domain.ChecklistItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ChecklistStateRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ChecklistState, error)
	// Toggle flips the state of (itemID, userID), creating it as completed when absent.
	Toggle(ctx context.Context, itemID, userID uuid.UUID) (*domain.ChecklistState, error)
}

type checklistRepository struct {
	pool *pgxpool.Pool
}

func NewChecklistRepository(pool *pgxpool.Pool) ChecklistRepository {
	return &checklistRepository{pool: pool}
}

const checklistSelect = `SELECT ci.id, ci.content, ci.due_type, ci.link, ci.visibility,
	ci.created_by, g.side, ci.created_at
FROM checklist_items ci
LEFT JOIN guests g ON g.id = ci.created_by`

func scanChecklistItem(row pgx.Row) (*domain.ChecklistItem, error) {
	var (
		item      domain.ChecklistItem
		createdBy *uuid.UUID
	)
	err := row.Scan(&item.ID, &item.Content, &item.DueType, &item.Link, &item.Visibility,
		&createdBy, &item.CreatorSide, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		item.CreatedBy = *createdBy
	}
	return &item, nil
}

func (r *checklistRepository) ListWithOwner(ctx context.Context) ([]domain.ChecklistItem, error) {
	const q = checklistSelect + ` ORDER BY ci.created_at, ci.id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ChecklistItem
	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *checklistRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ChecklistItem, error) {
	const q = checklistSelect + ` WHERE ci.id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	item, err := scanChecklistItem(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

func (r *checklistRepository) Create(ctx context.Context, creatorID uuid.UUID, req *domain.CreateChecklistItemRequest) (*domain.ChecklistItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var id uuid.UUID
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertItem = `INSERT INTO checklist_items (content, due_type, link, visibility, created_by)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`
		if err := tx.QueryRow(ctx, insertItem, req.Content, req.DueType, req.Link, req.Visibility, creatorID).Scan(&id); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}

		const insertState = `INSERT INTO checklist_states (checklist_item_id, user_id, is_completed) VALUES ($1,$2,false)`
		if _, err := tx.Exec(ctx, insertState, id, creatorID); err != nil {
			return fmt.Errorf("insert initial state: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return scanChecklistItem(r.pool.QueryRow(ctx, checklistSelect+` WHERE ci.id=$1`, id))
}

func (r *checklistRepository) Update(ctx context.Context, item domain.ChecklistItem) error {
	const q = `UPDATE checklist_items SET content=$2, due_type=$3, link=$4, visibility=$5 WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, item.ID, item.Content, item.DueType, item.Link, item.Visibility)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *checklistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM checklist_items WHERE id=$1`
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

type checklistStateRepository struct {
	pool *pgxpool.Pool
}

func NewChecklistStateRepository(pool *pgxpool.Pool) ChecklistStateRepository {
	return &checklistStateRepository{pool: pool}
}

func (r *checklistStateRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ChecklistState, error) {
	const q = `SELECT id, checklist_item_id, user_id, is_completed FROM checklist_states WHERE user_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []domain.ChecklistState
	for rows.Next() {
		var s domain.ChecklistState
		if err := rows.Scan(&s.ID, &s.ChecklistItemID, &s.UserID, &s.IsCompleted); err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

func (r *checklistStateRepository) Toggle(ctx context.Context, itemID, userID uuid.UUID) (*domain.ChecklistState, error) {
	const q = `INSERT INTO checklist_states (checklist_item_id, user_id, is_completed)
	VALUES ($1,$2,true)
	ON CONFLICT (checklist_item_id, user_id) DO UPDATE
		SET is_completed = NOT checklist_states.is_completed, updated_at = now()
	RETURNING id, checklist_item_id, user_id, is_completed`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.ChecklistState
	if err := r.pool.QueryRow(ctx, q, itemID, userID).Scan(&s.ID, &s.ChecklistItemID, &s.UserID, &s.IsCompleted); err != nil {
		return nil, err
	}
	return &s, nil
}
