package repository

import (
	"context"
	"os"
	"testing"

	"github.com/diagnosis/wedding-portal/pkg/config"
	"github.com/diagnosis/wedding-portal/pkg/database"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// These tests run against a real Postgres when PORTAL_TEST_DATABASE_URL is set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("PORTAL_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PORTAL_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, config.DatabaseConfig{URL: url, MaxConns: 4})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func createTestGuest(t *testing.T, pool *pgxpool.Pool, side domain.Side) *domain.Guest {
	t.Helper()
	req := &domain.CreateGuestRequest{
		ID:   uuid.New(),
		Name: "test-" + uuid.NewString(),
		Side: side,
		Type: domain.TypeFriend,
	}
	g, err := NewGuestRepository(pool).Create(context.Background(), req, "hash")
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM guests WHERE id=$1`, g.ID)
	})
	return g
}

func createTestItem(t *testing.T, pool *pgxpool.Pool, creator uuid.UUID, v domain.Visibility) *domain.ChecklistItem {
	t.Helper()
	item, err := NewChecklistRepository(pool).Create(context.Background(), creator, &domain.CreateChecklistItemRequest{
		Content:    "パスポートを持った",
		DueType:    domain.DueDayBefore,
		Visibility: v,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM checklist_items WHERE id=$1`, item.ID)
	})
	return item
}

func TestAnswerRepository_ReplaceAllRollsBack(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	guest := createTestGuest(t, pool, domain.SideGroom)
	repo := NewAnswerRepository(pool)

	before := []domain.Answer{{GuestID: guest.ID, QuestionKey: "dream", Answer: "世界一周"}}
	if err := repo.ReplaceAll(ctx, guest.ID, before); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	dup := []domain.Answer{
		{GuestID: guest.ID, QuestionKey: "location", Answer: "Tokyo"},
		{GuestID: guest.ID, QuestionKey: "location", Answer: "Osaka"},
	}
	err := repo.ReplaceAll(ctx, guest.ID, dup)
	if !isUniqueViolation(err) {
		t.Fatalf("Expected a unique violation, got %v", err)
	}

	answers, err := repo.ListByGuest(ctx, guest.ID)
	if err != nil {
		t.Fatalf("ListByGuest: %v", err)
	}
	if len(answers) != 1 || answers[0].QuestionKey != "dream" || answers[0].Answer != "世界一周" {
		t.Fatalf("Expected previous answers to survive the failed replace, got %+v", answers)
	}
}

func TestChecklistStateRepository_ToggleFlips(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	owner := createTestGuest(t, pool, domain.SideGroom)
	other := createTestGuest(t, pool, domain.SideBride)
	item := createTestItem(t, pool, owner.ID, domain.VisibilityPublic)
	repo := NewChecklistStateRepository(pool)

	// Create leaves the creator an uncompleted state row
	states, err := repo.ListByUser(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(states) != 1 || states[0].IsCompleted {
		t.Fatalf("Expected one uncompleted initial state, got %+v", states)
	}

	for i, want := range []bool{true, false, true} {
		st, err := repo.Toggle(ctx, item.ID, owner.ID)
		if err != nil {
			t.Fatalf("Toggle %d: %v", i, err)
		}
		if st.IsCompleted != want || st.ID != states[0].ID {
			t.Fatalf("Toggle %d: expected completed=%v on the same row, got %+v", i, want, st)
		}
	}

	st, err := repo.Toggle(ctx, item.ID, other.ID)
	if err != nil {
		t.Fatalf("Toggle other: %v", err)
	}
	if !st.IsCompleted || st.UserID != other.ID {
		t.Fatalf("Expected a new completed row for the other guest, got %+v", st)
	}
}

func TestChecklistRepository_OwnerSideResolution(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	owner := createTestGuest(t, pool, domain.SideBride)
	item := createTestItem(t, pool, owner.ID, domain.VisibilityFamily)
	repo := NewChecklistRepository(pool)

	got, err := repo.FindByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.CreatorSide == nil || *got.CreatorSide != domain.SideBride || got.CreatedBy != owner.ID {
		t.Fatalf("Expected creator side to resolve to bride side, got %+v", got)
	}

	if _, err := pool.Exec(ctx, `DELETE FROM guests WHERE id=$1`, owner.ID); err != nil {
		t.Fatalf("delete guest: %v", err)
	}
	got, err = repo.FindByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.CreatorSide != nil {
		t.Fatalf("Expected no creator side once the guest is gone, got %v", *got.CreatorSide)
	}

	viewer := domain.SessionUser{ID: uuid.New(), Side: domain.SideBride}
	if domain.IsVisible(got, viewer) {
		t.Fatalf("Expected an orphaned family item to be hidden")
	}
}
