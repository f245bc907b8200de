package domain

import (
	"strings"
	"time"

	"github.com/diagnosis/wedding-portal/internal/utils"
	"github.com/google/uuid"
)

type DueType string

const (
	DueWeekBefore DueType = "week_before"
	DueDayBefore  DueType = "day_before"
)

var dueTypeLabels = map[DueType]Label{
	DueWeekBefore: {Ja: "1週間前まで", En: "A week before"},
	DueDayBefore:  {Ja: "前日まで", En: "The day before"},
}

func ParseDueType(s string) (DueType, bool) {
	d := DueType(strings.TrimSpace(s))
	_, ok := dueTypeLabels[d]
	return d, ok
}

func (d DueType) Label() Label {
	return dueTypeLabels[d]
}

type ChecklistItem struct {
	ID          uuid.UUID  `json:"id"`
	Content     string     `json:"content"`
	DueType     DueType    `json:"due_type"`
	Link        *string    `json:"link,omitempty"`
	Visibility  Visibility `json:"visibility"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatorSide *Side      `json:"creator_side,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (c ChecklistItem) RecordVisibility() Visibility { return c.Visibility }
func (c ChecklistItem) OwnerID() uuid.UUID           { return c.CreatedBy }
func (c ChecklistItem) OwnerSide() *Side             { return c.CreatorSide }

type ChecklistState struct {
	ID              uuid.UUID `json:"id"`
	ChecklistItemID uuid.UUID `json:"checklist_item_id"`
	UserID          uuid.UUID `json:"user_id"`
	IsCompleted     bool      `json:"is_completed"`
}

// ChecklistItemWithState pairs an item with one guest's completion state.
// State is nil until that guest first toggles the item.
type ChecklistItemWithState struct {
	ChecklistItem
	State *ChecklistState `json:"state,omitempty"`
}

func (c ChecklistItemWithState) IsCompleted() bool {
	return c.State != nil && c.State.IsCompleted
}

// MergeStates attaches the states belonging to guestID to their items.
// States of other guests are ignored.
func MergeStates(items []ChecklistItem, states []ChecklistState, guestID uuid.UUID) []ChecklistItemWithState {
	byItem := make(map[uuid.UUID]ChecklistState, len(states))
	for _, s := range states {
		if s.UserID == guestID {
			byItem[s.ChecklistItemID] = s
		}
	}

	out := make([]ChecklistItemWithState, 0, len(items))
	for _, item := range items {
		merged := ChecklistItemWithState{ChecklistItem: item}
		if s, ok := byItem[item.ID]; ok {
			s := s
			merged.State = &s
		}
		out = append(out, merged)
	}
	return out
}

// ChecklistView is the canonical checklist state returned after every read or write.
type ChecklistView struct {
	Items    []ChecklistItemWithState `json:"items"`
	Progress ProgressSummary          `json:"progress"`
}

type CreateChecklistItemRequest struct {
	Content    string     `json:"content"`
	DueType    DueType    `json:"due_type"`
	Link       *string    `json:"link,omitempty"`
	Visibility Visibility `json:"visibility"`
}

func (r *CreateChecklistItemRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
	r.Link = utils.NormalizeOptional(r.Link)
	if r.Visibility == "" {
		r.Visibility = VisibilityPrivate
	}
}

func (r *CreateChecklistItemRequest) Validate() error {
	if r.Content == "" {
		return invalid("content", "content is required")
	}
	if utils.RuneLen(r.Content) > 200 {
		return invalid("content", "must be at most 200 characters")
	}
	if _, ok := ParseDueType(string(r.DueType)); !ok {
		return invalid("due_type", "must be week_before or day_before")
	}
	if _, ok := ParseVisibility(string(r.Visibility)); !ok {
		return invalid("visibility", "must be private, family or public")
	}
	if r.Link != nil && !utils.IsValidHTTPURL(*r.Link) {
		return invalid("link", "must be an http(s) URL")
	}
	return nil
}

type ChecklistItemPatch struct {
	Content    *string     `json:"content,omitempty"`
	DueType    *DueType    `json:"due_type,omitempty"`
	Link       *string     `json:"link,omitempty"`
	Visibility *Visibility `json:"visibility,omitempty"`
}

func (p *ChecklistItemPatch) Normalize() {
	if p.Content != nil {
		c := strings.TrimSpace(*p.Content)
		p.Content = &c
	}
	if p.Link != nil {
		l := strings.TrimSpace(*p.Link)
		p.Link = &l
	}
}

// Validate rejects empty patches. An empty link clears it.
func (p *ChecklistItemPatch) Validate() error {
	if p.Content == nil && p.DueType == nil && p.Link == nil && p.Visibility == nil {
		return invalid("", "no fields to update")
	}
	if p.Content != nil && (*p.Content == "" || utils.RuneLen(*p.Content) > 200) {
		return invalid("content", "must be 1 to 200 characters")
	}
	if p.DueType != nil {
		if _, ok := ParseDueType(string(*p.DueType)); !ok {
			return invalid("due_type", "must be week_before or day_before")
		}
	}
	if p.Visibility != nil {
		if _, ok := ParseVisibility(string(*p.Visibility)); !ok {
			return invalid("visibility", "must be private, family or public")
		}
	}
	if p.Link != nil && *p.Link != "" && !utils.IsValidHTTPURL(*p.Link) {
		return invalid("link", "must be an http(s) URL")
	}
	return nil
}

// Apply returns item with the patch applied.
func (p *ChecklistItemPatch) Apply(item ChecklistItem) ChecklistItem {
	if p.Content != nil {
		item.Content = *p.Content
	}
	if p.DueType != nil {
		item.DueType = *p.DueType
	}
	if p.Link != nil {
		if *p.Link == "" {
			item.Link = nil
		} else {
			link := *p.Link
			item.Link = &link
		}
	}
	if p.Visibility != nil {
		item.Visibility = *p.Visibility
	}
	return item
}
