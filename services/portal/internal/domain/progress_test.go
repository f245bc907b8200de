package domain_test

import (
	"testing"

	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/google/uuid"
)

func TestProgress_CountsOnlyPublicItemsOfGuest(t *testing.T) {
	public1 := itemBy(hanako, domain.VisibilityPublic)
	public2 := itemBy(hanako, domain.VisibilityPublic)
	private := itemBy(taro, domain.VisibilityPrivate)

	items := []domain.ChecklistItemWithState{
		{ChecklistItem: public1, State: &domain.ChecklistState{ChecklistItemID: public1.ID, UserID: taro.ID, IsCompleted: true}},
		{ChecklistItem: public2, State: &domain.ChecklistState{ChecklistItemID: public2.ID, UserID: hanako.ID, IsCompleted: true}},
		{ChecklistItem: private, State: &domain.ChecklistState{ChecklistItemID: private.ID, UserID: taro.ID, IsCompleted: true}},
	}

	got := domain.Progress(items, taro.ID)
	if got.Total != 2 {
		t.Fatalf("Expected total of 2 public items, got %d", got.Total)
	}
	if got.Completed != 1 {
		t.Fatalf("Expected only Taro's own public completion to count, got %d", got.Completed)
	}
	if got.Percent() != 50 {
		t.Fatalf("Expected 50%%, got %d", got.Percent())
	}
}

func TestProgress_Idempotent(t *testing.T) {
	item := itemBy(hanako, domain.VisibilityPublic)
	items := []domain.ChecklistItemWithState{
		{ChecklistItem: item, State: &domain.ChecklistState{ChecklistItemID: item.ID, UserID: taro.ID, IsCompleted: true}},
		{ChecklistItem: itemBy(hanako, domain.VisibilityPublic)},
	}

	first := domain.Progress(items, taro.ID)
	second := domain.Progress(items, taro.ID)
	if first != second {
		t.Fatalf("Expected identical results, got %+v and %+v", first, second)
	}
}

func TestProgress_ToggleScenario(t *testing.T) {
	items := []domain.ChecklistItem{
		itemBy(hanako, domain.VisibilityPublic),
		itemBy(hanako, domain.VisibilityPublic),
		itemBy(taro, domain.VisibilityFamily),
	}

	before := domain.Progress(domain.MergeStates(items, nil, taro.ID), taro.ID)

	states := []domain.ChecklistState{{ID: uuid.New(), ChecklistItemID: items[0].ID, UserID: taro.ID, IsCompleted: true}}
	after := domain.Progress(domain.MergeStates(items, states, taro.ID), taro.ID)

	if after.Completed != before.Completed+1 {
		t.Fatalf("Expected completed to grow by one, before=%d after=%d", before.Completed, after.Completed)
	}
	if after.Total != before.Total {
		t.Fatalf("Expected total unchanged, before=%d after=%d", before.Total, after.Total)
	}
}

func TestMergeStates_IgnoresOtherGuests(t *testing.T) {
	item := itemBy(hanako, domain.VisibilityPublic)
	states := []domain.ChecklistState{
		{ID: uuid.New(), ChecklistItemID: item.ID, UserID: hanako.ID, IsCompleted: true},
	}

	merged := domain.MergeStates([]domain.ChecklistItem{item}, states, taro.ID)
	if len(merged) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(merged))
	}
	if merged[0].State != nil || merged[0].IsCompleted() {
		t.Fatalf("Expected no state for Taro, got %+v", merged[0].State)
	}
}

func TestPercent_EmptyIsZero(t *testing.T) {
	if (domain.ProgressSummary{}).Percent() != 0 {
		t.Fatalf("Expected 0%% for an empty checklist")
	}
}
