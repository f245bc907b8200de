package domain

import (
	"strings"

	"github.com/google/uuid"
)

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityFamily  Visibility = "family"
	VisibilityPublic  Visibility = "public"
)

var visibilityLabels = map[Visibility]Label{
	VisibilityPrivate: {Ja: "自分のみ", En: "Only me"},
	VisibilityFamily:  {Ja: "家族", En: "Family"},
	VisibilityPublic:  {Ja: "全員", En: "Everyone"},
}

func ParseVisibility(s string) (Visibility, bool) {
	v := Visibility(strings.TrimSpace(s))
	_, ok := visibilityLabels[v]
	return v, ok
}

func (v Visibility) Label() Label {
	return visibilityLabels[v]
}

// Owned is a record whose visibility depends on who created it.
type Owned interface {
	RecordVisibility() Visibility
	// OwnerID is uuid.Nil when the creator is unknown.
	OwnerID() uuid.UUID
	// OwnerSide is nil when the creator could not be resolved.
	OwnerSide() *Side
}

// IsVisible reports whether viewer may see record. Anything that is not
// public and cannot be tied to a known owner is hidden.
func IsVisible(record Owned, viewer SessionUser) bool {
	switch record.RecordVisibility() {
	case VisibilityPublic:
		return true
	case VisibilityPrivate:
		owner := record.OwnerID()
		return owner != uuid.Nil && owner == viewer.ID
	case VisibilityFamily:
		side := record.OwnerSide()
		return side != nil && side.Valid() && *side == viewer.Side
	default:
		return false
	}
}

// CanModify reports whether viewer may edit or delete record: it must be
// visible to them and they must have created it.
func CanModify(record Owned, viewer SessionUser) bool {
	owner := record.OwnerID()
	return owner != uuid.Nil && owner == viewer.ID && IsVisible(record, viewer)
}

func FilterVisible[T Owned](records []T, viewer SessionUser) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if IsVisible(r, viewer) {
			out = append(out, r)
		}
	}
	return out
}
