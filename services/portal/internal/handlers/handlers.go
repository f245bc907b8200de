package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diagnosis/wedding-portal/internal/http/response"
	"github.com/diagnosis/wedding-portal/pkg/config"
	"github.com/diagnosis/wedding-portal/pkg/logger"
	mw "github.com/diagnosis/wedding-portal/pkg/middleware"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/diagnosis/wedding-portal/services/portal/internal/service"
	"github.com/diagnosis/wedding-portal/services/portal/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handlers struct {
	authService      service.AuthService
	guestService     service.GuestService
	checklistService service.ChecklistService
	timelineService  service.TimelineService
	codec            *session.Codec
	config           *config.Config

	limiter     mw.Limiter
	idempotency mw.IdempotencyStore
}

func New(
	authService service.AuthService,
	guestService service.GuestService,
	checklistService service.ChecklistService,
	timelineService service.TimelineService,
	codec *session.Codec,
	config *config.Config,
) *Handlers {
	return &Handlers{
		authService:      authService,
		guestService:     guestService,
		checklistService: checklistService,
		timelineService:  timelineService,
		codec:            codec,
		config:           config,
	}
}

// UseRateLimiter throttles login attempts per client.
func (h *Handlers) UseRateLimiter(l mw.Limiter) {
	h.limiter = l
}

// UseIdempotency enables Idempotency-Key replay on authenticated POSTs.
func (h *Handlers) UseIdempotency(s mw.IdempotencyStore) {
	h.idempotency = s
}

// Mount registers the /v1 API on r.
func (h *Handlers) Mount(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Use(session.Middleware(h.codec))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/guests", h.LoginChoices)
			if h.limiter != nil {
				r.With(mw.RateLimit(h.limiter, "login", h.config.Auth.LoginAttempts, h.config.Auth.LoginWindow)).Post("/login", h.Login)
			} else {
				r.Post("/login", h.Login)
			}
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})
		r.Get("/navigation", h.Navigate)

		r.Group(func(r chi.Router) {
			r.Use(session.RequireUser)
			if h.idempotency != nil {
				r.Use(mw.IdempotencyMiddleware(h.idempotency))
			}

			r.Get("/guests", h.ListGuests)
			r.Route("/guests/{id}", func(r chi.Router) {
				r.Get("/", h.GetProfile)
				r.Get("/progress", h.GetProgress)
				r.Put("/answers", h.SaveAnswers)
				r.Post("/questions", h.AddQuestion)
				r.Put("/avatar", h.UploadAvatar)
				r.Patch("/profile", h.UpdateProfile)
			})
			r.Post("/welcome", h.CompleteWelcome)
			r.Get("/questions", h.ListQuestions)

			r.Route("/checklist", func(r chi.Router) {
				r.Get("/", h.ListChecklist)
				r.Post("/", h.AddChecklistItem)
				r.Post("/{id}/toggle", h.ToggleChecklistItem)
				r.Patch("/{id}", h.UpdateChecklistItem)
				r.Delete("/{id}", h.DeleteChecklistItem)
			})

			r.Route("/timeline", func(r chi.Router) {
				r.Get("/", h.ListTimeline)
				r.Post("/", h.AddTimelineEvent)
				r.Patch("/{id}", h.UpdateTimelineEvent)
				r.Delete("/{id}", h.DeleteTimelineEvent)
			})
		})
	})
}

// viewer is only called behind session.RequireUser.
func viewer(r *http.Request) domain.SessionUser {
	user, _ := session.CurrentUser(r.Context())
	return user
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

func decodeJSON(r *http.Request, v interface{}) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	response.WriteJSON(w, statusCode, data)
}

// writeServiceError maps domain errors onto the JSON error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		response.WriteErrorWithDetails(w, http.StatusBadRequest, "Invalid input", response.CodeInvalidInput, verr.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrNoAnswers):
		response.WriteError(w, http.StatusBadRequest, "At least one answer is required", response.CodeNoAnswers)
	case errors.Is(err, domain.ErrUserNotFound):
		response.WriteError(w, http.StatusUnauthorized, "User not found", response.CodeUserNotFound)
	case errors.Is(err, domain.ErrIncorrectPassword):
		response.WriteError(w, http.StatusUnauthorized, "Incorrect password", response.CodeIncorrectPassword)
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(w, "You cannot modify this resource")
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "Resource not found")
	case errors.Is(err, domain.ErrConflict):
		response.Conflict(w, "Already exists, try again")
	case errors.Is(err, domain.ErrAvatarTooLarge):
		response.PayloadTooLarge(w, "Avatar is too large")
	case errors.Is(err, domain.ErrUnsupportedImage):
		response.WriteError(w, http.StatusUnsupportedMediaType, "Avatar must be a JPEG image", response.CodeUnsupportedMedia)
	default:
		logger.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		response.InternalError(w, "Internal server error")
	}
}
