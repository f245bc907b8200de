package service

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/wedding-portal/pkg/config"
	"github.com/diagnosis/wedding-portal/pkg/events"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/diagnosis/wedding-portal/services/portal/internal/repository"
	"github.com/google/uuid"
)

// ChecklistService returns the viewer's full checklist view after every call.
type ChecklistService interface {
	List(ctx context.Context, viewer domain.SessionUser) (*domain.ChecklistView, error)
	Add(ctx context.Context, viewer domain.SessionUser, req *domain.CreateChecklistItemRequest) (*domain.ChecklistView, error)
	Toggle(ctx context.Context, itemID uuid.UUID, viewer domain.SessionUser) (*domain.ChecklistView, error)
	Update(ctx context.Context, itemID uuid.UUID, viewer domain.SessionUser, patch *domain.ChecklistItemPatch) (*domain.ChecklistView, error)
	Delete(ctx context.Context, itemID uuid.UUID, viewer domain.SessionUser) (*domain.ChecklistView, error)
}

type checklistService struct {
	itemRepo  repository.ChecklistRepository
	stateRepo repository.ChecklistStateRepository
	eventBus  events.Publisher
	config    *config.Config
	now       func() time.Time
}

func NewChecklistService(
	itemRepo repository.ChecklistRepository,
	stateRepo repository.ChecklistStateRepository,
	eventBus events.Publisher,
	config *config.Config,
) ChecklistService {
	return &checklistService{
		itemRepo:  itemRepo,
		stateRepo: stateRepo,
		eventBus:  eventBus,
		config:    config,
		now:       time.Now,
	}
}

func (s *checklistService) List(ctx context.Context, viewer domain.SessionUser) (*domain.ChecklistView, error) {
	items, err := s.itemRepo.ListWithOwner(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	states, err := s.stateRepo.ListByUser(ctx, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist states: %w", err)
	}

	merged := domain.MergeStates(domain.FilterVisible(items, viewer), states, viewer.ID)
	return &domain.ChecklistView{
		Items:    merged,
		Progress: domain.Progress(merged, viewer.ID),
	}, nil
}

func (s *checklistService) Add(ctx context.Context, viewer domain.SessionUser, req *domain.CreateChecklistItemRequest) (*domain.ChecklistView, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item, err := s.itemRepo.Create(ctx, viewer.ID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create checklist item: %w", err)
	}

	s.publishItem(ctx, events.ChecklistItemCreated, *item, viewer, nil)
	return s.List(ctx, viewer)
}

func (s *checklistService) Toggle(ctx context.Context, itemID uuid.UUID, viewer domain.SessionUser) (*domain.ChecklistView, error) {
	item, err := s.visibleItem(ctx, itemID, viewer)
	if err != nil {
		return nil, err
	}

	state, err := s.stateRepo.Toggle(ctx, item.ID, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle checklist item: %w", err)
	}

	completed := state.IsCompleted
	s.publishItem(ctx, events.ChecklistToggled, *item, viewer, &completed)
	return s.List(ctx, viewer)
}

func (s *checklistService) Update(ctx context.Context, itemID uuid.UUID, viewer domain.SessionUser, patch *domain.ChecklistItemPatch) (*domain.ChecklistView, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	item, err := s.ownedItem(ctx, itemID, viewer)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(*item)
	if err := s.itemRepo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update checklist item: %w", err)
	}

	s.publishItem(ctx, events.ChecklistItemUpdated, updated, viewer, nil)
	return s.List(ctx, viewer)
}

func (s *checklistService) Delete(ctx context.Context, itemID uuid.UUID, viewer domain.SessionUser) (*domain.ChecklistView, error) {
	item, err := s.ownedItem(ctx, itemID, viewer)
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.Delete(ctx, item.ID); err != nil {
		return nil, fmt.Errorf("failed to delete checklist item: %w", err)
	}

	s.publishItem(ctx, events.ChecklistItemDeleted, *item, viewer, nil)
	return s.List(ctx, viewer)
}

// visibleItem hides items the viewer cannot see behind ErrNotFound.
func (s *checklistService) visibleItem(ctx context.Context, itemID uuid.UUID, viewer domain.SessionUser) (*domain.ChecklistItem, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to find checklist item: %w", err)
	}
	if item == nil || !domain.IsVisible(*item, viewer) {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *checklistService) ownedItem(ctx context.Context, itemID uuid.UUID, viewer domain.SessionUser) (*domain.ChecklistItem, error) {
	item, err := s.visibleItem(ctx, itemID, viewer)
	if err != nil {
		return nil, err
	}
	if !domain.CanModify(*item, viewer) {
		return nil, domain.ErrForbidden
	}
	return item, nil
}

func (s *checklistService) publishItem(ctx context.Context, subject string, item domain.ChecklistItem, actor domain.SessionUser, completed *bool) {
	publish(ctx, s.eventBus, subject, events.ChecklistEvent{
		ItemID:     item.ID,
		ActorID:    actor.ID,
		Content:    item.Content,
		Visibility: string(item.Visibility),
		Completed:  completed,
		OccurredAt: s.now(),
	})
}
