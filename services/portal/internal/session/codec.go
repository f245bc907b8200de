package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/diagnosis/wedding-portal/pkg/auth"
	"github.com/diagnosis/wedding-portal/pkg/config"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/google/uuid"
)

var ErrMalformedCookie = errors.New("malformed session cookie")

// Codec turns a session user into a signed cookie and back.
type Codec struct {
	secret string
	ttl    time.Duration
	name   string
	secure bool
}

func NewCodec(cfg config.AuthConfig) *Codec {
	name := cfg.CookieName
	if name == "" {
		name = "auth-user"
	}
	return &Codec{
		secret: cfg.JWTSecret,
		ttl:    cfg.SessionTTL,
		name:   name,
		secure: cfg.CookieSecure,
	}
}

func (c *Codec) CookieName() string {
	return c.name
}

func (c *Codec) Encode(user domain.SessionUser) (*http.Cookie, error) {
	token, expires, err := auth.NewSessionToken(user.ID.String(), user.Name, string(user.Side), string(user.Type), c.secret, c.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}
	return &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Decode validates the cookie value. Any failure is reported as ErrMalformedCookie.
func (c *Codec) Decode(value string) (domain.SessionUser, error) {
	claims, err := auth.ParseSession(value, c.secret)
	if err != nil {
		return domain.SessionUser{}, fmt.Errorf("%w: %v", ErrMalformedCookie, err)
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return domain.SessionUser{}, fmt.Errorf("%w: bad guest id", ErrMalformedCookie)
	}
	side, ok := domain.ParseSide(claims.Side)
	if !ok {
		return domain.SessionUser{}, fmt.Errorf("%w: bad side", ErrMalformedCookie)
	}
	guestType, ok := domain.ParseGuestType(claims.Type)
	if !ok {
		return domain.SessionUser{}, fmt.Errorf("%w: bad guest type", ErrMalformedCookie)
	}

	return domain.SessionUser{ID: id, Name: claims.Name, Side: side, Type: guestType}, nil
}

// Clear returns a cookie that deletes the session cookie in the browser.
func (c *Codec) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
