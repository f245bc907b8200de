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

type TimelineService interface {
	// List returns the events visible to viewer, oldest first. A non-nil side keeps
	// only that family's timeline.
	List(ctx context.Context, viewer domain.SessionUser, side *domain.Side) ([]domain.TimelineEvent, error)
	Add(ctx context.Context, viewer domain.SessionUser, req *domain.CreateTimelineEventRequest) ([]domain.TimelineEvent, error)
	Update(ctx context.Context, eventID uuid.UUID, viewer domain.SessionUser, patch *domain.TimelineEventPatch) ([]domain.TimelineEvent, error)
	Delete(ctx context.Context, eventID uuid.UUID, viewer domain.SessionUser) ([]domain.TimelineEvent, error)
}

type timelineService struct {
	timelineRepo repository.TimelineRepository
	eventBus     events.Publisher
	config       *config.Config
	now          func() time.Time
}

func NewTimelineService(timelineRepo repository.TimelineRepository, eventBus events.Publisher, config *config.Config) TimelineService {
	return &timelineService{
		timelineRepo: timelineRepo,
		eventBus:     eventBus,
		config:       config,
		now:          time.Now,
	}
}

func (s *timelineService) List(ctx context.Context, viewer domain.SessionUser, side *domain.Side) ([]domain.TimelineEvent, error) {
	all, err := s.timelineRepo.ListWithOwner(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list timeline events: %w", err)
	}

	visible := domain.FilterVisible(all, viewer)
	if side != nil {
		visible = domain.EventsBySide(visible, *side)
	}
	domain.SortEventsByDate(visible)
	return visible, nil
}

func (s *timelineService) Add(ctx context.Context, viewer domain.SessionUser, req *domain.CreateTimelineEventRequest) ([]domain.TimelineEvent, error) {
	req.Normalize(viewer)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	created, err := s.timelineRepo.Create(ctx, viewer.ID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create timeline event: %w", err)
	}

	s.publishEvent(ctx, events.TimelineEventCreated, *created, viewer)
	return s.List(ctx, viewer, nil)
}

func (s *timelineService) Update(ctx context.Context, eventID uuid.UUID, viewer domain.SessionUser, patch *domain.TimelineEventPatch) ([]domain.TimelineEvent, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.ownedEvent(ctx, eventID, viewer)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(*existing)
	if err := s.timelineRepo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update timeline event: %w", err)
	}

	s.publishEvent(ctx, events.TimelineEventUpdated, updated, viewer)
	return s.List(ctx, viewer, nil)
}

func (s *timelineService) Delete(ctx context.Context, eventID uuid.UUID, viewer domain.SessionUser) ([]domain.TimelineEvent, error) {
	existing, err := s.ownedEvent(ctx, eventID, viewer)
	if err != nil {
		return nil, err
	}

	if err := s.timelineRepo.Delete(ctx, existing.ID); err != nil {
		return nil, fmt.Errorf("failed to delete timeline event: %w", err)
	}

	s.publishEvent(ctx, events.TimelineEventDeleted, *existing, viewer)
	return s.List(ctx, viewer, nil)
}

func (s *timelineService) ownedEvent(ctx context.Context, eventID uuid.UUID, viewer domain.SessionUser) (*domain.TimelineEvent, error) {
	e, err := s.timelineRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to find timeline event: %w", err)
	}
	if e == nil || !domain.IsVisible(*e, viewer) {
		return nil, domain.ErrNotFound
	}
	if !domain.CanModify(*e, viewer) {
		return nil, domain.ErrForbidden
	}
	return e, nil
}

func (s *timelineService) publishEvent(ctx context.Context, subject string, e domain.TimelineEvent, actor domain.SessionUser) {
	publish(ctx, s.eventBus, subject, events.TimelineEvent{
		EventID:    e.ID,
		ActorID:    actor.ID,
		Title:      e.Title,
		Side:       string(e.Side),
		Visibility: string(e.Visibility),
		Date:       e.Date,
		OccurredAt: s.now(),
	})
}
