package handlers

import (
	"net/http"

	"github.com/diagnosis/wedding-portal/internal/http/response"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
)

// ListTimeline returns visible events oldest first; ?side= narrows to one family
func (h *Handlers) ListTimeline(w http.ResponseWriter, r *http.Request) {
	var side *domain.Side
	if v := r.URL.Query().Get("side"); v != "" {
		parsed, ok := domain.ParseSide(v)
		if !ok {
			response.BadRequest(w, "Invalid side parameter")
			return
		}
		side = &parsed
	}

	events, err := h.timelineService.List(r.Context(), viewer(r), side)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handlers) AddTimelineEvent(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTimelineEventRequest
	if !decodeJSON(r, &req) {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	events, err := h.timelineService.Add(r.Context(), viewer(r), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, events)
}

func (h *Handlers) UpdateTimelineEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid timeline event ID")
		return
	}

	var patch domain.TimelineEventPatch
	if !decodeJSON(r, &patch) {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	events, err := h.timelineService.Update(r.Context(), id, viewer(r), &patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handlers) DeleteTimelineEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid timeline event ID")
		return
	}

	events, err := h.timelineService.Delete(r.Context(), id, viewer(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
