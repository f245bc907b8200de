package handlers

import (
	"net/http"

	"github.com/diagnosis/wedding-portal/internal/http/response"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
)

func (h *Handlers) ListChecklist(w http.ResponseWriter, r *http.Request) {
	view, err := h.checklistService.List(r.Context(), viewer(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) AddChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateChecklistItemRequest
	if !decodeJSON(r, &req) {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	view, err := h.checklistService.Add(r.Context(), viewer(r), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// ToggleChecklistItem flips the caller's completion state for one item
func (h *Handlers) ToggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid checklist item ID")
		return
	}

	view, err := h.checklistService.Toggle(r.Context(), id, viewer(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) UpdateChecklistItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid checklist item ID")
		return
	}

	var patch domain.ChecklistItemPatch
	if !decodeJSON(r, &patch) {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	view, err := h.checklistService.Update(r.Context(), id, viewer(r), &patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) DeleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid checklist item ID")
		return
	}

	view, err := h.checklistService.Delete(r.Context(), id, viewer(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
