package service

import (
	"context"
	"errors"
	"testing"

	"github.com/diagnosis/wedding-portal/pkg/config"
	"github.com/diagnosis/wedding-portal/pkg/events"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/google/uuid"
)

func newChecklistFixture(items ...domain.ChecklistItem) (ChecklistService, *mockChecklistRepo, *mockStateRepo, *mockPublisher) {
	guests := newMockGuestRepo(taroGuest, jiroGuest, hanakoGuest)
	itemRepo := &mockChecklistRepo{guests: guests, items: items}
	stateRepo := &mockStateRepo{}
	bus := &mockPublisher{}
	return NewChecklistService(itemRepo, stateRepo, bus, &config.Config{}), itemRepo, stateRepo, bus
}

func publicItem(content string) domain.ChecklistItem {
	return domain.ChecklistItem{ID: uuid.New(), Content: content, DueType: domain.DueWeekBefore, Visibility: domain.VisibilityPublic}
}

func TestChecklist_ToggleUpdatesProgress(t *testing.T) {
	a, b, c, d := publicItem("パスポート"), publicItem("ESTA"), publicItem("保険"), publicItem("両替")
	svc, _, _, bus := newChecklistFixture(a, b, c, d)
	ctx := context.Background()

	view, err := svc.Toggle(ctx, a.ID, taro)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if view.Progress.Completed != 1 || view.Progress.Total != 4 || view.Progress.Percent() != 25 {
		t.Fatalf("Expected 1/4 (25%%), got %+v", view.Progress)
	}

	view, err = svc.Toggle(ctx, a.ID, taro)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if view.Progress.Completed != 0 {
		t.Fatalf("Expected second toggle to undo completion, got %+v", view.Progress)
	}

	// Taro's state never leaks into Hanako's view
	_, _ = svc.Toggle(ctx, b.ID, taro)
	other, err := svc.List(ctx, hanako)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if other.Progress.Completed != 0 {
		t.Fatalf("Expected Hanako's progress to be unaffected, got %+v", other.Progress)
	}

	if subjects := bus.subjects(); len(subjects) != 3 || subjects[0] != events.ChecklistToggled {
		t.Fatalf("Expected three toggle events, got %v", subjects)
	}
}

func TestChecklist_AddAppliesVisibility(t *testing.T) {
	svc, _, _, _ := newChecklistFixture()
	ctx := context.Background()

	view, err := svc.Add(ctx, taro, &domain.CreateChecklistItemRequest{Content: "  水着  ", DueType: domain.DueDayBefore})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Content != "水着" || view.Items[0].Visibility != domain.VisibilityPrivate {
		t.Fatalf("Expected one trimmed private item, got %+v", view.Items)
	}
	if view.Progress.Total != 0 {
		t.Fatalf("Expected private items to stay out of progress, got %+v", view.Progress)
	}

	for _, viewer := range []domain.SessionUser{jiro, hanako} {
		v, err := svc.List(ctx, viewer)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(v.Items) != 0 {
			t.Fatalf("Expected %s not to see Taro's private item", viewer.Name)
		}
	}

	_, err = svc.Add(ctx, taro, &domain.CreateChecklistItemRequest{Content: "", DueType: domain.DueDayBefore})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput for empty content, got %v", err)
	}
}

func TestChecklist_ModifyRules(t *testing.T) {
	family := domain.ChecklistItem{ID: uuid.New(), Content: "集合時間確認", DueType: domain.DueDayBefore, Visibility: domain.VisibilityFamily, CreatedBy: taro.ID}
	private := domain.ChecklistItem{ID: uuid.New(), Content: "日焼け止め", DueType: domain.DueDayBefore, Visibility: domain.VisibilityPrivate, CreatedBy: taro.ID}
	svc, repo, _, _ := newChecklistFixture(family, private)
	ctx := context.Background()

	content := "集合時間を再確認"
	patch := &domain.ChecklistItemPatch{Content: &content}

	tests := []struct {
		name   string
		itemID uuid.UUID
		viewer domain.SessionUser
		want   error
	}{
		{"same side but not creator", family.ID, jiro, domain.ErrForbidden},
		{"other side cannot see family item", family.ID, hanako, domain.ErrNotFound},
		{"private item of someone else", private.ID, jiro, domain.ErrNotFound},
		{"unknown item", uuid.New(), taro, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Update(ctx, tt.itemID, tt.viewer, patch); !errors.Is(err, tt.want) {
				t.Fatalf("Update: expected %v, got %v", tt.want, err)
			}
			if _, err := svc.Delete(ctx, tt.itemID, tt.viewer); !errors.Is(err, tt.want) {
				t.Fatalf("Delete: expected %v, got %v", tt.want, err)
			}
		})
	}

	view, err := svc.Update(ctx, family.ID, taro, patch)
	if err != nil {
		t.Fatalf("Update by creator: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("Expected both items in the refreshed view, got %d", len(view.Items))
	}
	if found, _ := repo.FindByID(ctx, family.ID); found.Content != content {
		t.Fatalf("Expected content to be updated, got %q", found.Content)
	}

	view, err = svc.Delete(ctx, private.ID, taro)
	if err != nil {
		t.Fatalf("Delete by creator: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("Expected one item left, got %d", len(view.Items))
	}
}

func TestChecklist_ToggleHiddenItem(t *testing.T) {
	private := domain.ChecklistItem{ID: uuid.New(), Content: "秘密", DueType: domain.DueDayBefore, Visibility: domain.VisibilityPrivate, CreatedBy: taro.ID}
	svc, _, states, _ := newChecklistFixture(private)

	if _, err := svc.Toggle(context.Background(), private.ID, hanako); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if len(states.states) != 0 {
		t.Fatalf("Expected no state row for a hidden item")
	}
}

func TestChecklist_OrphanedFamilyItemHidden(t *testing.T) {
	orphan := domain.ChecklistItem{ID: uuid.New(), Content: "?", DueType: domain.DueDayBefore, Visibility: domain.VisibilityFamily}
	svc, _, _, _ := newChecklistFixture(orphan)

	view, err := svc.List(context.Background(), taro)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("Expected family item without creator to be hidden")
	}
}
