package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/diagnosis/wedding-portal/pkg/logger"
	"github.com/diagnosis/wedding-portal/services/portal/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Summary struct {
	Guests         int
	ChecklistItems int
	TimelineEvents int
}

type Seeder struct {
	pool   *pgxpool.Pool
	guests repository.GuestRepository
}

func New(pool *pgxpool.Pool) *Seeder {
	return &Seeder{pool: pool, guests: repository.NewGuestRepository(pool)}
}

// Run inserts the initial data set. Rows that already exist are left alone.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	reqs, err := Guests()
	if err != nil {
		return nil, err
	}

	// a guest that already exists under another id keeps it; remap references to it
	ids := make(map[uuid.UUID]uuid.UUID, len(reqs))
	for i := range reqs {
		hash, err := argon2id.CreateHash(reqs[i].Password, argon2id.DefaultParams)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		g, err := s.guests.Create(ctx, &reqs[i], hash)
		if err != nil {
			return nil, fmt.Errorf("failed to create guest %s: %w", reqs[i].Name, err)
		}
		ids[reqs[i].ID] = g.ID
	}
	resolve := func(id uuid.UUID) uuid.UUID {
		if actual, ok := ids[id]; ok {
			return actual
		}
		return id
	}

	items := ChecklistItems()
	events := TimelineEvents()

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`INSERT INTO checklist_items (id, content, due_type, link, visibility)
			VALUES ($1,$2,$3,$4,$5) ON CONFLICT (id) DO NOTHING`,
			item.ID, item.Content, item.DueType, item.Link, item.Visibility)
	}
	for _, st := range InitialStates() {
		batch.Queue(`INSERT INTO checklist_states (id, checklist_item_id, user_id, is_completed)
			VALUES ($1,$2,$3,$4) ON CONFLICT DO NOTHING`,
			st.ID, st.ChecklistItemID, resolve(st.UserID), st.IsCompleted)
	}
	for _, e := range events {
		batch.Queue(`INSERT INTO timeline_events (id, date, title, location, visibility, created_by, side)
			VALUES ($1,$2,$3,$4,$5,$6,$7) ON CONFLICT (id) DO NOTHING`,
			e.ID, e.Date, e.Title, e.Location, e.Visibility, resolve(e.CreatedBy), e.Side)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed checklist and timeline: %w", err)
	}

	summary := &Summary{Guests: len(reqs), ChecklistItems: len(items), TimelineEvents: len(events)}
	logger.InfoContext(ctx, "Seed applied", "guests", summary.Guests, "checklist_items", summary.ChecklistItems, "timeline_events", summary.TimelineEvents)
	return summary, nil
}
