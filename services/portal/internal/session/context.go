package session

import (
	"context"
	"net/http"

	"github.com/diagnosis/wedding-portal/internal/http/response"
	"github.com/diagnosis/wedding-portal/pkg/logger"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
)

type holderKey struct{}

func WithHolder(ctx context.Context, h *Holder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

// FromContext returns the request's holder, or nil outside Middleware.
func FromContext(ctx context.Context) *Holder {
	h, _ := ctx.Value(holderKey{}).(*Holder)
	return h
}

// Middleware restores a holder for every request from its cookie.
func Middleware(codec *Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := NewHolder(codec, w)
			h.Restore(r)

			ctx := WithHolder(r.Context(), h)
			if user, ok := h.User(); ok {
				ctx = context.WithValue(ctx, logger.UserIDKey, user.ID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests whose holder is not Authenticated.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := FromContext(r.Context())
		if h == nil || h.State() != Authenticated {
			response.Unauthorized(w, "Login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser is the viewer of an authenticated request.
func CurrentUser(ctx context.Context) (domain.SessionUser, bool) {
	h := FromContext(ctx)
	if h == nil {
		return domain.SessionUser{}, false
	}
	return h.User()
}
