package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/diagnosis/wedding-portal/internal/utils"
	"github.com/google/uuid"
)

type TimelineEvent struct {
	ID          uuid.UUID  `json:"id"`
	Date        time.Time  `json:"date"`
	Title       string     `json:"title"`
	Location    string     `json:"location"`
	Visibility  Visibility `json:"visibility"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatorSide *Side      `json:"creator_side,omitempty"`
	// Side is whose family timeline the event belongs to.
	Side      Side      `json:"side"`
	CreatedAt time.Time `json:"created_at"`
}

func (e TimelineEvent) RecordVisibility() Visibility { return e.Visibility }
func (e TimelineEvent) OwnerID() uuid.UUID           { return e.CreatedBy }
func (e TimelineEvent) OwnerSide() *Side             { return e.CreatorSide }

func SortEventsByDate(events []TimelineEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}

// EventsBySide keeps the events that belong to side's timeline.
func EventsBySide(events []TimelineEvent, side Side) []TimelineEvent {
	out := make([]TimelineEvent, 0, len(events))
	for _, e := range events {
		if e.Side == side {
			out = append(out, e)
		}
	}
	return out
}

type CreateTimelineEventRequest struct {
	Date       time.Time  `json:"date"`
	Title      string     `json:"title"`
	Location   string     `json:"location"`
	Visibility Visibility `json:"visibility"`
	// Side defaults to the creator's side.
	Side Side `json:"side,omitempty"`
}

func (r *CreateTimelineEventRequest) Normalize(creator SessionUser) {
	r.Title = strings.TrimSpace(r.Title)
	r.Location = strings.TrimSpace(r.Location)
	if r.Visibility == "" {
		r.Visibility = VisibilityFamily
	}
	if r.Side == "" {
		r.Side = creator.Side
	}
}

func (r *CreateTimelineEventRequest) Validate() error {
	if r.Date.IsZero() {
		return invalid("date", "date is required")
	}
	if r.Title == "" {
		return invalid("title", "title is required")
	}
	if utils.RuneLen(r.Title) > 100 {
		return invalid("title", "must be at most 100 characters")
	}
	if utils.RuneLen(r.Location) > 100 {
		return invalid("location", "must be at most 100 characters")
	}
	if _, ok := ParseVisibility(string(r.Visibility)); !ok {
		return invalid("visibility", "must be private, family or public")
	}
	if !r.Side.Valid() {
		return invalid("side", "must be groom_side or bride_side")
	}
	return nil
}

type TimelineEventPatch struct {
	Date       *time.Time  `json:"date,omitempty"`
	Title      *string     `json:"title,omitempty"`
	Location   *string     `json:"location,omitempty"`
	Visibility *Visibility `json:"visibility,omitempty"`
	Side       *Side       `json:"side,omitempty"`
}

func (p *TimelineEventPatch) Normalize() {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		p.Title = &t
	}
	if p.Location != nil {
		l := strings.TrimSpace(*p.Location)
		p.Location = &l
	}
}

func (p *TimelineEventPatch) Validate() error {
	if p.Date == nil && p.Title == nil && p.Location == nil && p.Visibility == nil && p.Side == nil {
		return invalid("", "no fields to update")
	}
	if p.Date != nil && p.Date.IsZero() {
		return invalid("date", "date is required")
	}
	if p.Title != nil && (*p.Title == "" || utils.RuneLen(*p.Title) > 100) {
		return invalid("title", "must be 1 to 100 characters")
	}
	if p.Location != nil && utils.RuneLen(*p.Location) > 100 {
		return invalid("location", "must be at most 100 characters")
	}
	if p.Visibility != nil {
		if _, ok := ParseVisibility(string(*p.Visibility)); !ok {
			return invalid("visibility", "must be private, family or public")
		}
	}
	if p.Side != nil && !p.Side.Valid() {
		return invalid("side", "must be groom_side or bride_side")
	}
	return nil
}

func (p *TimelineEventPatch) Apply(e TimelineEvent) TimelineEvent {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Visibility != nil {
		e.Visibility = *p.Visibility
	}
	if p.Side != nil {
		e.Side = *p.Side
	}
	return e
}
