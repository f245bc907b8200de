package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/diagnosis/wedding-portal/internal/utils"
	"github.com/google/uuid"
)

// Label is a bilingual display string.
type Label struct {
	Ja string `json:"ja"`
	En string `json:"en"`
}

type Side string

const (
	SideGroom Side = "groom_side"
	SideBride Side = "bride_side"
)

var sideLabels = map[Side]Label{
	SideGroom: {Ja: "新郎側", En: "Groom's side"},
	SideBride: {Ja: "新婦側", En: "Bride's side"},
}

// ParseSide accepts the stored value or its Japanese label.
func ParseSide(s string) (Side, bool) {
	s = strings.TrimSpace(s)
	for side, label := range sideLabels {
		if s == string(side) || s == label.Ja {
			return side, true
		}
	}
	return "", false
}

func (s Side) Label() Label {
	return sideLabels[s]
}

func (s Side) Valid() bool {
	_, ok := sideLabels[s]
	return ok
}

type GuestType string

const (
	TypeFather       GuestType = "father"
	TypeMother       GuestType = "mother"
	TypeGroom        GuestType = "groom"
	TypeBride        GuestType = "bride"
	TypeGrandfather  GuestType = "grandfather"
	TypeGrandmother  GuestType = "grandmother"
	TypeOlderBrother GuestType = "older_brother"
	TypeNiece        GuestType = "niece"
	TypeNephew       GuestType = "nephew"
	TypeParent       GuestType = "parent"
	TypeSibling      GuestType = "sibling"
	TypeRelative     GuestType = "relative"
	TypeFriend       GuestType = "friend"
	TypeColleague    GuestType = "colleague"
	TypeOther        GuestType = "other"
)

// guestTypes is in display order.
var guestTypes = []struct {
	Type  GuestType
	Label Label
}{
	{TypeFather, Label{Ja: "父", En: "Father"}},
	{TypeMother, Label{Ja: "母", En: "Mother"}},
	{TypeGroom, Label{Ja: "新郎本人", En: "Groom"}},
	{TypeBride, Label{Ja: "新婦本人", En: "Bride"}},
	{TypeGrandfather, Label{Ja: "祖父", En: "Grandfather"}},
	{TypeGrandmother, Label{Ja: "祖母", En: "Grandmother"}},
	{TypeOlderBrother, Label{Ja: "兄", En: "Older brother"}},
	{TypeNiece, Label{Ja: "姪", En: "Niece"}},
	{TypeNephew, Label{Ja: "甥", En: "Nephew"}},
	{TypeParent, Label{Ja: "親", En: "Parent"}},
	{TypeSibling, Label{Ja: "兄弟姉妹", En: "Sibling"}},
	{TypeRelative, Label{Ja: "親族", En: "Relative"}},
	{TypeFriend, Label{Ja: "友人", En: "Friend"}},
	{TypeColleague, Label{Ja: "同僚", En: "Colleague"}},
	{TypeOther, Label{Ja: "その他", En: "Other"}},
}

// ParseGuestType accepts the stored value or its Japanese label.
func ParseGuestType(s string) (GuestType, bool) {
	s = strings.TrimSpace(s)
	for _, gt := range guestTypes {
		if s == string(gt.Type) || s == gt.Label.Ja {
			return gt.Type, true
		}
	}
	return "", false
}

func (t GuestType) Label() Label {
	for _, gt := range guestTypes {
		if gt.Type == t {
			return gt.Label
		}
	}
	return Label{Ja: string(t), En: string(t)}
}

// Order is the display rank of the type; unknown types sort last.
func (t GuestType) Order() int {
	for i, gt := range guestTypes {
		if gt.Type == t {
			return i + 1
		}
	}
	return 999
}

type Guest struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Side         Side      `json:"side"`
	Type         GuestType `json:"type"`
	IsAnsweredQA bool      `json:"is_answered_qa"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionUser is the identity a session carries. It is also the viewer for visibility checks.
func (g *Guest) SessionUser() SessionUser {
	return SessionUser{ID: g.ID, Name: g.Name, Side: g.Side, Type: g.Type}
}

type SessionUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Side Side      `json:"side"`
	Type GuestType `json:"type"`
}

type GuestProfile struct {
	GuestID   uuid.UUID `json:"guest_id"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Location  *string   `json:"location,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GuestSummary is a guest as listed on the guests page.
type GuestSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Side         Side      `json:"side"`
	SideLabel    Label     `json:"side_label"`
	Type         GuestType `json:"type"`
	TypeLabel    Label     `json:"type_label"`
	IsAnsweredQA bool      `json:"is_answered_qa"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	Location     *string   `json:"location,omitempty"`
}

func NewGuestSummary(g Guest, p *GuestProfile) GuestSummary {
	s := GuestSummary{
		ID:           g.ID,
		Name:         g.Name,
		Side:         g.Side,
		SideLabel:    g.Side.Label(),
		Type:         g.Type,
		TypeLabel:    g.Type.Label(),
		IsAnsweredQA: g.IsAnsweredQA,
	}
	if p != nil {
		s.AvatarURL = p.AvatarURL
		s.Location = p.Location
	}
	return s
}

// LoginChoice is what the login picker shows; it never exposes anything but the name.
type LoginChoice struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Side Side      `json:"side"`
}

// SortGuests orders by side (groom first), then type order, then name.
func SortGuests(guests []GuestSummary) {
	sort.SliceStable(guests, func(i, j int) bool {
		a, b := guests[i], guests[j]
		if a.Side != b.Side {
			return a.Side == SideGroom
		}
		if a.Type.Order() != b.Type.Order() {
			return a.Type.Order() < b.Type.Order()
		}
		return a.Name < b.Name
	})
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *LoginRequest) Validate() error {
	if r.Name == "" {
		return invalid("name", "name is required")
	}
	if r.Password == "" {
		return invalid("password", "password is required")
	}
	return nil
}

type UpdateProfileRequest struct {
	Location *string `json:"location"`
}

func (r *UpdateProfileRequest) Normalize() {
	if r.Location != nil {
		trimmed := strings.TrimSpace(*r.Location)
		r.Location = &trimmed
	}
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Location == nil {
		return invalid("location", "location is required")
	}
	if utils.RuneLen(*r.Location) > 100 {
		return invalid("location", "must be at most 100 characters")
	}
	return nil
}

// CreateGuestRequest is used by seeding; guests do not sign up themselves.
type CreateGuestRequest struct {
	ID       uuid.UUID
	Name     string
	Password string
	Side     Side
	Type     GuestType
}

func (r *CreateGuestRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalid("name", "name is required")
	}
	if r.Password == "" {
		return invalid("password", "password is required")
	}
	if !r.Side.Valid() {
		return invalid("side", "unknown side %q", r.Side)
	}
	if r.Type.Order() == 999 {
		return invalid("type", "unknown guest type %q", r.Type)
	}
	return nil
}
