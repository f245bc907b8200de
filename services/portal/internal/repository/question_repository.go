package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuestionRepository interface {
	// ListVisibleTo returns the custom questions guestID created plus every public one.
	ListVisibleTo(ctx context.Context, guestID uuid.UUID) ([]domain.Question, error)
	Create(ctx context.Context, q domain.Question) (*domain.Question, error)
}

type questionRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionRepository(pool *pgxpool.Pool) QuestionRepository {
	return &questionRepository{pool: pool}
}

func (r *questionRepository) ListVisibleTo(ctx context.Context, guestID uuid.UUID) ([]domain.Question, error) {
	const q = `SELECT qs.key, qs.label, qs.order_num, qs.subject, qs.created_by, g.name
	FROM questions qs
	LEFT JOIN guests g ON g.id = qs.created_by
	WHERE qs.created_by = $1 OR qs.subject = 'public'
	ORDER BY qs.order_num, qs.created_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var qs domain.Question
		if err := rows.Scan(&qs.Key, &qs.Label, &qs.OrderNum, &qs.Subject, &qs.CreatedBy, &qs.CreatedByName); err != nil {
			return nil, err
		}
		questions = append(questions, qs)
	}
	return questions, rows.Err()
}

func (r *questionRepository) Create(ctx context.Context, in domain.Question) (*domain.Question, error) {
	const q = `INSERT INTO questions (key, label, order_num, subject, created_by)
	VALUES ($1,$2,$3,$4,$5)
	RETURNING key, label, order_num, subject, created_by`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.Question
	err := r.pool.QueryRow(ctx, q, in.Key, in.Label, in.OrderNum, in.Subject, in.CreatedBy).
		Scan(&out.Key, &out.Label, &out.OrderNum, &out.Subject, &out.CreatedBy)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("question %s: %w", in.Key, domain.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	out.CreatedByName = in.CreatedByName
	return &out, nil
}
