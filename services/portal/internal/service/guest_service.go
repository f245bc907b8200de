package service

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/wedding-portal/pkg/config"
	"github.com/diagnosis/wedding-portal/pkg/events"
	"github.com/diagnosis/wedding-portal/pkg/logger"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/diagnosis/wedding-portal/services/portal/internal/repository"
	"github.com/diagnosis/wedding-portal/services/portal/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type GuestService interface {
	ListGuests(ctx context.Context) ([]domain.GuestSummary, error)
	GetProfilePage(ctx context.Context, guestID uuid.UUID, viewer domain.SessionUser) (*domain.ProfilePage, error)
	ListQuestions(ctx context.Context, viewer domain.SessionUser) ([]domain.Question, error)
	// SaveAnswers replaces the whole answer set of the viewer's own profile.
	SaveAnswers(ctx context.Context, guestID uuid.UUID, viewer domain.SessionUser, req *domain.SaveAnswersRequest) ([]domain.Answer, error)
	// CompleteWelcome saves the onboarding answers and marks the viewer as onboarded.
	CompleteWelcome(ctx context.Context, viewer domain.SessionUser, req *domain.SaveAnswersRequest) ([]domain.Answer, error)
	AddCustomQuestion(ctx context.Context, guestID uuid.UUID, viewer domain.SessionUser, req *domain.CreateQuestionRequest) (*domain.ProfilePage, error)
	UploadAvatar(ctx context.Context, guestID uuid.UUID, viewer domain.SessionUser, data []byte) (*domain.GuestProfile, error)
	UpdateProfile(ctx context.Context, guestID uuid.UUID, viewer domain.SessionUser, req *domain.UpdateProfileRequest) (*domain.GuestProfile, error)
	GuestProgress(ctx context.Context, guestID uuid.UUID) (*domain.GuestProgress, error)
}

type guestService struct {
	guestRepo     repository.GuestRepository
	profileRepo   repository.ProfileRepository
	questionRepo  repository.QuestionRepository
	answerRepo    repository.AnswerRepository
	checklistRepo repository.ChecklistRepository
	stateRepo     repository.ChecklistStateRepository
	avatars       storage.AvatarBucket
	eventBus      events.Publisher
	config        *config.Config
	now           func() time.Time
}

func NewGuestService(
	guestRepo repository.GuestRepository,
	profileRepo repository.ProfileRepository,
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	checklistRepo repository.ChecklistRepository,
	stateRepo repository.ChecklistStateRepository,
	avatars storage.AvatarBucket,
	eventBus events.Publisher,
	config *config.Config,
) GuestService {
	return &guestService{
		guestRepo:     guestRepo,
		profileRepo:   profileRepo,
		questionRepo:  questionRepo,
		answerRepo:    answerRepo,
		checklistRepo: checklistRepo,
		stateRepo:     stateRepo,
		avatars:       avatars,
		eventBus:      eventBus,
		config:        config,
		now:           time.Now,
	}
}

func (s *guestService) ListGuests(ctx context.Context) ([]domain.GuestSummary, error) {
	var (
		guests   []domain.Guest
		profiles []domain.GuestProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		guests, err = s.guestRepo.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		profiles, err = s.profileRepo.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}

	byGuest := make(map[uuid.UUID]*domain.GuestProfile, len(profiles))
	for i := range profiles {
		byGuest[profiles[i].GuestID] = &profiles[i]
	}

	out := make([]domain.GuestSummary, 0, len(guests))
	for _, guest := range guests {
		out = append(out, domain.NewGuestSummary(guest, byGuest[guest.ID]))
	}
	domain.SortGuests(out)
	return out, nil
}

func (s *guestService) GetProfilePage(ctx context.Context, guestID uuid.UUID, viewer domain.SessionUser) (*domain.ProfilePage, error) {
	var (
		guest    *domain.Guest
		profile  *domain.GuestProfile
		answers  []domain.Answer
		custom   []domain.Question
		progress *domain.GuestProgress
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		guest, err = s.guestRepo.FindByID(gctx, guestID)
		return err
	})
	g.Go(func() (err error) {
		profile, err = s.profileRepo.FindByGuestID(gctx, guestID)
		return err
	})
	g.Go(func() (err error) {
		answers, err = s.answerRepo.ListByGuest(gctx, guestID)
		return err
	})
	g.Go(func() (err error) {
		custom, err = s.questionRepo.ListVisibleTo(gctx, viewer.ID)
		return err
	})
	g.Go(func() (err error) {
		progress, err = s.progressOf(gctx, guestID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if guest == nil {
		return nil, domain.ErrNotFound
	}

	questions := domain.MergeQuestions(custom)
	shown := make(map[string]bool, len(questions))
	for _, q := range questions {
		shown[q.Key] = true
	}
	visibleAnswers := make([]domain.Answer, 0, len(answers))
	for _, a := range answers {
		if shown[a.QuestionKey] {
			visibleAnswers = append(visibleAnswers, a)
		}
	}

	return &domain.ProfilePage{
		Guest:     domain.NewGuestSummary(*guest, profile),
		Questions: questions,
		Answers:   visibleAnswers,
		Progress:  *progress,
		IsOwner:   guest.ID == viewer.ID,
	}, nil
}

func (s *guestService) ListQuestions(ctx context.Context, viewer domain.SessionUser) ([]domain.Question, error) {
	custom, err := s.questionRepo.ListVisibleTo(ctx, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return domain.MergeQuestions(custom), nil
}

func (s *guestService) SaveAnswers(ctx context.Context, guestID uuid.UUID, viewer domain.SessionUser, req *domain.SaveAnswersRequest) ([]domain.Answer, error) {
	if guestID != viewer.ID {
		return nil, domain.ErrForbidden
	}
	guest, rows, err := s.prepareAnswers(ctx, viewer, req)
	if err != nil {
		return nil, err
	}

	if err := s.answerRepo.ReplaceAll(ctx, viewer.ID, rows); err != nil {
		return nil, fmt.Errorf("failed to save answers: %w", err)
	}
	if !guest.IsAnsweredQA && len(rows) > 0 {
		if err := s.guestRepo.MarkAnswered(ctx, viewer.ID); err != nil {
			return nil, fmt.Errorf("failed to mark guest as answered: %w", err)
		}
	}

	publish(ctx, s.eventBus, events.GuestAnswersSaved, events.AnswersSavedEvent{
		GuestID:     viewer.ID,
		AnswerCount: len(rows),
		SavedAt:     s.now(),
	})
	return s.reloadAnswers(ctx, viewer.ID)
}

func (s *guestService) CompleteWelcome(ctx context.Context, viewer domain.SessionUser, req *domain.SaveAnswersRequest) ([]domain.Answer, error) {
	_, rows, err := s.prepareAnswers(ctx, viewer, req)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNoAnswers
	}

	if err := s.answerRepo.ReplaceAll(ctx, viewer.ID, rows); err != nil {
		return nil, fmt.Errorf("failed to save answers: %w", err)
	}
	if err := s.guestRepo.MarkAnswered(ctx, viewer.ID); err != nil {
		return nil, fmt.Errorf("failed to mark guest as answered: %w", err)
	}

	logger.InfoContext(ctx, "Guest completed welcome", "guest_id", viewer.ID, "answers", len(rows))
	publish(ctx, s.eventBus, events.GuestWelcomed, events.AnswersSavedEvent{
		GuestID:     viewer.ID,
		AnswerCount: len(rows),
		Welcome:     true,
		SavedAt:     s.now(),
	})
	return s.reloadAnswers(ctx, viewer.ID)
}

func (s *guestService) prepareAnswers(ctx context.Context, viewer domain.SessionUser, req *domain.SaveAnswersRequest) (*domain.Guest, []domain.Answer, error) {
	guest, err := s.guestRepo.FindByID(ctx, viewer.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find guest: %w", err)
	}
	if guest == nil {
		return nil, nil, domain.ErrUserNotFound
	}

	allowed, err := s.ListQuestions(ctx, viewer)
	if err != nil {
		return nil, nil, err
	}
	if err := req.Validate(allowed); err != nil {
		return nil, nil, err
	}
	return guest, req.Rows(viewer.ID), nil
}

func (s *guestService) reloadAnswers(ctx context.Context, guestID uuid.UUID) ([]domain.Answer, error) {
	answers, err := s.answerRepo.ListByGuest(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload answers: %w", err)
	}
	if answers == nil {
		answers = []domain.Answer{}
	}
	return answers, nil
}

func (s *guestService) AddCustomQuestion(ctx context.Context, guestID uuid.UUID, viewer domain.SessionUser, req *domain.CreateQuestionRequest) (*domain.ProfilePage, error) {
	if guestID != viewer.ID {
		return nil, domain.ErrForbidden
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	creator := viewer.ID
	name := viewer.Name
	q, err := s.questionRepo.Create(ctx, domain.Question{
		Key:           domain.CustomQuestionKey(s.now()),
		Label:         req.Label,
		OrderNum:      domain.CustomQuestionOrder,
		Subject:       req.Subject,
		CreatedBy:     &creator,
		CreatedByName: &name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	if req.Answer != "" {
		if err := s.answerRepo.Add(ctx, domain.Answer{GuestID: viewer.ID, QuestionKey: q.Key, Answer: req.Answer}); err != nil {
			return nil, fmt.Errorf("failed to save answer: %w", err)
		}
	}

	publish(ctx, s.eventBus, events.QuestionCreated, events.QuestionEvent{
		Key:        q.Key,
		CreatedBy:  viewer.ID,
		Subject:    string(q.Subject),
		OccurredAt: s.now(),
	})
	return s.GetProfilePage(ctx, guestID, viewer)
}

func (s *guestService) UploadAvatar(ctx context.Context, guestID uuid.UUID, viewer domain.SessionUser, data []byte) (*domain.GuestProfile, error) {
	if guestID != viewer.ID {
		return nil, domain.ErrForbidden
	}
	if err := storage.ValidateAvatar(data, s.config.Storage.MaxAvatarBytes); err != nil {
		return nil, err
	}

	url, err := s.avatars.Put(ctx, storage.AvatarName(viewer.ID, s.now()), data)
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}
	profile, err := s.profileRepo.UpsertAvatar(ctx, viewer.ID, url)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	publish(ctx, s.eventBus, events.GuestAvatarUpdated, events.GuestEvent{
		GuestID:    viewer.ID,
		GuestName:  viewer.Name,
		Detail:     url,
		OccurredAt: s.now(),
	})
	return profile, nil
}

func (s *guestService) UpdateProfile(ctx context.Context, guestID uuid.UUID, viewer domain.SessionUser, req *domain.UpdateProfileRequest) (*domain.GuestProfile, error) {
	if guestID != viewer.ID {
		return nil, domain.ErrForbidden
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var location *string
	if *req.Location != "" {
		location = req.Location
	}
	profile, err := s.profileRepo.UpsertLocation(ctx, viewer.ID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	publish(ctx, s.eventBus, events.GuestProfileUpdated, events.GuestEvent{
		GuestID:    viewer.ID,
		GuestName:  viewer.Name,
		OccurredAt: s.now(),
	})
	return profile, nil
}

func (s *guestService) GuestProgress(ctx context.Context, guestID uuid.UUID) (*domain.GuestProgress, error) {
	guest, err := s.guestRepo.FindByID(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to find guest: %w", err)
	}
	if guest == nil {
		return nil, domain.ErrNotFound
	}

	progress, err := s.progressOf(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute progress: %w", err)
	}
	return progress, nil
}

func (s *guestService) progressOf(ctx context.Context, guestID uuid.UUID) (*domain.GuestProgress, error) {
	items, err := s.checklistRepo.ListWithOwner(ctx)
	if err != nil {
		return nil, err
	}
	states, err := s.stateRepo.ListByUser(ctx, guestID)
	if err != nil {
		return nil, err
	}

	summary := domain.Progress(domain.MergeStates(items, states, guestID), guestID)
	return &domain.GuestProgress{GuestID: guestID, ProgressSummary: summary, Percent: summary.Percent()}, nil
}
