package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/diagnosis/wedding-portal/internal/http/response"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/diagnosis/wedding-portal/services/portal/internal/session"
)

// multipart framing allowance on top of the avatar size cap
const multipartOverhead = 64 << 10

func (h *Handlers) ListGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := h.guestService.ListGuests(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guests)
}

// GetProfile returns a guest's profile page: summary, questions, answers and progress
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid guest ID")
		return
	}

	page, err := h.guestService.GetProfilePage(r.Context(), id, viewer(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) GetProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid guest ID")
		return
	}

	progress, err := h.guestService.GuestProgress(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// SaveAnswers replaces the caller's answers with the submitted set
func (h *Handlers) SaveAnswers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid guest ID")
		return
	}

	var req domain.SaveAnswersRequest
	if !decodeJSON(r, &req) {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	answers, err := h.guestService.SaveAnswers(r.Context(), id, viewer(r), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answers)
}

// CompleteWelcome is the onboarding submit. It responds with where to go next.
func (h *Handlers) CompleteWelcome(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveAnswersRequest
	if !decodeJSON(r, &req) {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	answers, err := h.guestService.CompleteWelcome(r.Context(), viewer(r), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"answers":  answers,
		"redirect": session.HomePath,
	})
}

func (h *Handlers) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.guestService.ListQuestions(r.Context(), viewer(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handlers) AddQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid guest ID")
		return
	}

	var req domain.CreateQuestionRequest
	if !decodeJSON(r, &req) {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	page, err := h.guestService.AddCustomQuestion(r.Context(), id, viewer(r), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

// UploadAvatar accepts a multipart form with the image in the "avatar" field
func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid guest ID")
		return
	}

	maxBytes := h.config.Storage.MaxAvatarBytes
	if r.ContentLength > maxBytes+multipartOverhead {
		response.PayloadTooLarge(w, "Avatar is too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(w, "Avatar is too large")
			return
		}
		response.BadRequest(w, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("avatar")
	if err != nil {
		response.BadRequest(w, "Missing avatar file")
		return
	}
	defer file.Close()

	// one byte past the cap is enough to reject it
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		response.BadRequest(w, "Failed to read avatar")
		return
	}

	profile, err := h.guestService.UploadAvatar(r.Context(), id, viewer(r), data)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid guest ID")
		return
	}

	var req domain.UpdateProfileRequest
	if !decodeJSON(r, &req) {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	profile, err := h.guestService.UpdateProfile(r.Context(), id, viewer(r), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
