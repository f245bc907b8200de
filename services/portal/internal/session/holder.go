package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/diagnosis/wedding-portal/pkg/logger"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
)

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Authenticator checks a name and password against the guest list.
// It returns domain.ErrUserNotFound or domain.ErrIncorrectPassword on failure.
type Authenticator interface {
	Authenticate(ctx context.Context, name, password string) (*domain.Guest, error)
}

// Holder is the session of one request. It starts Unauthenticated and
// writes the cookie side effects of every transition to w.
type Holder struct {
	codec *Codec
	w     http.ResponseWriter
	state State
	user  domain.SessionUser
}

func NewHolder(codec *Codec, w http.ResponseWriter) *Holder {
	return &Holder{codec: codec, w: w}
}

func (h *Holder) State() State {
	return h.state
}

// User returns the current user and whether the holder is Authenticated.
func (h *Holder) User() (domain.SessionUser, bool) {
	return h.user, h.state == Authenticated
}

// Restore reads the session cookie. A missing cookie leaves the holder
// Unauthenticated; a malformed or expired one is cleared as well.
func (h *Holder) Restore(r *http.Request) {
	c, err := r.Cookie(h.codec.CookieName())
	if err != nil || c.Value == "" {
		h.state, h.user = Unauthenticated, domain.SessionUser{}
		return
	}

	user, err := h.codec.Decode(c.Value)
	if err != nil {
		logger.DebugContext(r.Context(), "Discarding session cookie", "error", err)
		h.Logout()
		return
	}
	h.state, h.user = Authenticated, user
}

// Login authenticates and, on success, persists the session cookie.
// A failed attempt leaves the current state untouched.
func (h *Holder) Login(ctx context.Context, authn Authenticator, name, password string) (*domain.Guest, error) {
	guest, err := authn.Authenticate(ctx, name, password)
	if err != nil {
		return nil, err
	}
	if guest == nil {
		return nil, errors.New("authenticator returned no guest")
	}

	user := guest.SessionUser()
	cookie, err := h.codec.Encode(user)
	if err != nil {
		return nil, err
	}
	http.SetCookie(h.w, cookie)
	h.state, h.user = Authenticated, user
	return guest, nil
}

func (h *Holder) Logout() {
	http.SetCookie(h.w, h.codec.Clear())
	h.state, h.user = Unauthenticated, domain.SessionUser{}
}
