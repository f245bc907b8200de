package handlers

import (
	"errors"
	"net/http"

	"github.com/diagnosis/wedding-portal/internal/http/response"
	"github.com/diagnosis/wedding-portal/pkg/logger"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/diagnosis/wedding-portal/services/portal/internal/session"
)

type meResponse struct {
	User         domain.SessionUser `json:"user"`
	IsAnsweredQA bool               `json:"is_answered_qa"`
	Redirect     string             `json:"redirect"`
}

func newMeResponse(g *domain.Guest) meResponse {
	redirect := session.HomePath
	if !g.IsAnsweredQA {
		redirect = session.WelcomePath
	}
	return meResponse{User: g.SessionUser(), IsAnsweredQA: g.IsAnsweredQA, Redirect: redirect}
}

// LoginChoices lists the names offered on the login screen
func (h *Handlers) LoginChoices(w http.ResponseWriter, r *http.Request) {
	choices, err := h.authService.LoginChoices(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, choices)
}

// Login authenticates by name and password and sets the session cookie
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(r, &req) {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	holder := session.FromContext(r.Context())
	guest, err := holder.Login(r.Context(), h.authService, req.Name, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.InfoContext(r.Context(), "Guest logged in", "guest_id", guest.ID)
	writeJSON(w, http.StatusOK, newMeResponse(guest))
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	session.FromContext(r.Context()).Logout()
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the logged-in guest. A cookie that points at a removed guest is cleared.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := session.CurrentUser(r.Context())
	if !ok {
		response.Unauthorized(w, "Login required")
		return
	}

	guest, err := h.authService.Me(r.Context(), user.ID)
	if errors.Is(err, domain.ErrUserNotFound) {
		session.FromContext(r.Context()).Logout()
		response.Unauthorized(w, "Login required")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMeResponse(guest))
}

// Navigate tells the client where a page request should land
func (h *Handlers) Navigate(w http.ResponseWriter, r *http.Request) {
	var current *domain.SessionUser
	if user, ok := session.CurrentUser(r.Context()); ok {
		current = &user
	}

	decision, err := h.authService.Navigate(r.Context(), current, r.URL.Query().Get("path"))
	if errors.Is(err, domain.ErrUserNotFound) {
		session.FromContext(r.Context()).Logout()
		err = nil
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}
