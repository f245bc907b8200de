package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AnswerRepository interface {
	ListByGuest(ctx context.Context, guestID uuid.UUID) ([]domain.Answer, error)
	// Add inserts or overwrites a single answer.
	Add(ctx context.Context, a domain.Answer) error
	// ReplaceAll deletes every answer of guestID and inserts answers in one transaction.
	ReplaceAll(ctx context.Context, guestID uuid.UUID, answers []domain.Answer) error
}

type answerRepository struct {
	pool *pgxpool.Pool
}

func NewAnswerRepository(pool *pgxpool.Pool) AnswerRepository {
	return &answerRepository{pool: pool}
}

func (r *answerRepository) ListByGuest(ctx context.Context, guestID uuid.UUID) ([]domain.Answer, error) {
	const q = `SELECT guest_id, question_key, answer, updated_at FROM guest_qa WHERE guest_id=$1 ORDER BY question_key`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.GuestID, &a.QuestionKey, &a.Answer, &a.UpdatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (r *answerRepository) Add(ctx context.Context, a domain.Answer) error {
	const q = `INSERT INTO guest_qa (guest_id, question_key, answer)
	VALUES ($1,$2,$3)
	ON CONFLICT (guest_id, question_key) DO UPDATE SET answer=EXCLUDED.answer, updated_at=now()`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, a.GuestID, a.QuestionKey, a.Answer)
	return err
}

func (r *answerRepository) ReplaceAll(ctx context.Context, guestID uuid.UUID, answers []domain.Answer) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM guest_qa WHERE guest_id=$1`, guestID); err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
		if len(answers) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, a := range answers {
			batch.Queue(`INSERT INTO guest_qa (guest_id, question_key, answer) VALUES ($1,$2,$3)`,
				guestID, a.QuestionKey, a.Answer)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert answers: %w", err)
		}
		return nil
	})
}
