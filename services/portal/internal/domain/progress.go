package domain

import "github.com/google/uuid"

type ProgressSummary struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Percent is rounded down; zero when there is nothing to complete.
func (p ProgressSummary) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Completed * 100 / p.Total
}

// Progress counts public items only, so the figure is comparable between guests.
// An item counts as completed only when its state belongs to guestID.
func Progress(items []ChecklistItemWithState, guestID uuid.UUID) ProgressSummary {
	var p ProgressSummary
	for _, item := range items {
		if item.Visibility != VisibilityPublic {
			continue
		}
		p.Total++
		if item.State != nil && item.State.IsCompleted && item.State.UserID == guestID {
			p.Completed++
		}
	}
	return p
}

// GuestProgress is the per-guest figure shown on profile pages.
type GuestProgress struct {
	GuestID uuid.UUID `json:"guest_id"`
	ProgressSummary
	Percent int `json:"percent"`
}
