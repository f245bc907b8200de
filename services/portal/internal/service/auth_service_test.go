package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/diagnosis/wedding-portal/pkg/config"
	"github.com/diagnosis/wedding-portal/pkg/events"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/google/uuid"
)

func newAuthFixture(t *testing.T) (AuthService, *mockGuestRepo, *mockPublisher) {
	t.Helper()
	hash, err := argon2id.CreateHash("1234", argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("CreateHash: %v", err)
	}
	withHash := func(g domain.Guest) domain.Guest {
		g.PasswordHash = hash
		return g
	}
	answered := withHash(taroGuest)
	answered.IsAnsweredQA = true

	guests := newMockGuestRepo(answered, withHash(jiroGuest), withHash(hanakoGuest))
	bus := &mockPublisher{}
	return NewAuthService(guests, bus, &config.Config{}), guests, bus
}

func TestAuthenticate(t *testing.T) {
	svc, _, bus := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		user     string
		password string
		want     error
	}{
		{"unknown guest", "山田", "1234", domain.ErrUserNotFound},
		{"wrong password", taroGuest.Name, "0000", domain.ErrIncorrectPassword},
		{"missing password", taroGuest.Name, "", domain.ErrInvalidInput},
		{"missing name", "  ", "1234", domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Authenticate(ctx, tt.user, tt.password); !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
		})
	}
	if len(bus.subjects()) != 0 {
		t.Fatalf("Expected no events for failed logins")
	}

	guest, err := svc.Authenticate(ctx, " "+taroGuest.Name+" ", "1234")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if guest.ID != taroGuest.ID {
		t.Fatalf("Expected Taro, got %s", guest.Name)
	}
	if subjects := bus.subjects(); len(subjects) != 1 || subjects[0] != events.GuestLoggedIn {
		t.Fatalf("Expected one login event, got %v", subjects)
	}
}

func TestAuthenticate_PublishFailureDoesNotBlockLogin(t *testing.T) {
	svc, _, bus := newAuthFixture(t)
	bus.err = errors.New("nats: connection closed")

	if _, err := svc.Authenticate(context.Background(), hanakoGuest.Name, "1234"); err != nil {
		t.Fatalf("Expected login to succeed when publishing fails, got %v", err)
	}
}

func TestLoginChoices_GroomSideFirst(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	choices, err := svc.LoginChoices(context.Background())
	if err != nil {
		t.Fatalf("LoginChoices: %v", err)
	}
	if len(choices) != 3 {
		t.Fatalf("Expected 3 choices, got %d", len(choices))
	}
	if choices[0].ID != taroGuest.ID || choices[2].ID != hanakoGuest.ID {
		t.Fatalf("Unexpected order %+v", choices)
	}
}

func TestNavigate(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		viewer   *domain.SessionUser
		path     string
		redirect string
	}{
		{"anonymous home", nil, "/", "/login"},
		{"anonymous login", nil, "/login", ""},
		{"answered on login", &taro, "/login", "/"},
		{"answered on checklist", &taro, "/checklist", ""},
		{"unanswered on home", &jiro, "/", "/welcome"},
		{"unanswered on welcome", &jiro, "/welcome", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := svc.Navigate(ctx, tt.viewer, tt.path)
			if err != nil {
				t.Fatalf("Navigate: %v", err)
			}
			if d.Redirect != tt.redirect {
				t.Fatalf("Expected redirect %q, got %q", tt.redirect, d.Redirect)
			}
		})
	}

	ghost := domain.SessionUser{ID: uuid.New(), Name: "ghost"}
	d, err := svc.Navigate(ctx, &ghost, "/")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound for a stale session, got %v", err)
	}
	if d.Redirect != "/login" {
		t.Fatalf("Expected stale session to be sent to login, got %q", d.Redirect)
	}
}
