package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/diagnosis/wedding-portal/pkg/config"
	"github.com/diagnosis/wedding-portal/pkg/events"
	"github.com/diagnosis/wedding-portal/pkg/logger"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/diagnosis/wedding-portal/services/portal/internal/repository"
	"github.com/diagnosis/wedding-portal/services/portal/internal/session"
	"github.com/google/uuid"
)

type AuthService interface {
	session.Authenticator
	Me(ctx context.Context, guestID uuid.UUID) (*domain.Guest, error)
	LoginChoices(ctx context.Context) ([]domain.LoginChoice, error)
	// Navigate decides where a viewer asking for path should land. viewer is nil when
	// nobody is logged in. domain.ErrUserNotFound means the session points at a guest
	// that no longer exists; the returned decision then treats the viewer as anonymous.
	Navigate(ctx context.Context, viewer *domain.SessionUser, path string) (session.Decision, error)
}

type authService struct {
	guestRepo repository.GuestRepository
	eventBus  events.Publisher
	config    *config.Config
}

func NewAuthService(guestRepo repository.GuestRepository, eventBus events.Publisher, config *config.Config) AuthService {
	return &authService{
		guestRepo: guestRepo,
		eventBus:  eventBus,
		config:    config,
	}
}

func (s *authService) Authenticate(ctx context.Context, name, password string) (*domain.Guest, error) {
	req := domain.LoginRequest{Name: name, Password: password}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	guest, err := s.guestRepo.FindByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to find guest: %w", err)
	}
	if guest == nil {
		return nil, domain.ErrUserNotFound
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, guest.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		logger.WarnContext(ctx, "Login with incorrect password", "guest_id", guest.ID)
		return nil, domain.ErrIncorrectPassword
	}

	publish(ctx, s.eventBus, events.GuestLoggedIn, events.GuestEvent{
		GuestID:    guest.ID,
		GuestName:  guest.Name,
		OccurredAt: time.Now(),
	})
	return guest, nil
}

func (s *authService) Me(ctx context.Context, guestID uuid.UUID) (*domain.Guest, error) {
	guest, err := s.guestRepo.FindByID(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to find guest: %w", err)
	}
	if guest == nil {
		return nil, domain.ErrUserNotFound
	}
	return guest, nil
}

func (s *authService) LoginChoices(ctx context.Context) ([]domain.LoginChoice, error) {
	guests, err := s.guestRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}

	summaries := make([]domain.GuestSummary, 0, len(guests))
	for _, g := range guests {
		summaries = append(summaries, domain.NewGuestSummary(g, nil))
	}
	domain.SortGuests(summaries)

	choices := make([]domain.LoginChoice, 0, len(summaries))
	for _, g := range summaries {
		choices = append(choices, domain.LoginChoice{ID: g.ID, Name: g.Name, Side: g.Side})
	}
	return choices, nil
}

func (s *authService) Navigate(ctx context.Context, viewer *domain.SessionUser, path string) (session.Decision, error) {
	if viewer == nil {
		return session.Resolve(path, false, false), nil
	}

	guest, err := s.Me(ctx, viewer.ID)
	if err != nil {
		return session.Resolve(path, false, false), err
	}
	return session.Resolve(path, true, guest.IsAnsweredQA), nil
}
