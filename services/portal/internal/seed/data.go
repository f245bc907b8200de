package seed

import (
	"fmt"
	"time"

	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/google/uuid"
)

// namespace for the deterministic ids of seeded rows, so re-running the seed is a no-op
var namespace = uuid.MustParse("9a3e5c1e-2f4b-4d8a-8c61-0b7d2e6f4a10")

func seedID(kind string, n int) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(fmt.Sprintf("%s:%d", kind, n)))
}

const defaultPassword = "1234"

type guestRow struct {
	n    int
	name string
	side string
	kind string
}

var guestRows = []guestRow{
	{1, "生駒大貴", "新郎側", "新郎本人"},
	{2, "小野原弥香", "新婦側", "新婦本人"},
	{3, "生駒竜二", "新郎側", "親"},
	{4, "生駒久美子", "新郎側", "親"},
	{5, "小野原雅通", "新婦側", "親"},
	{6, "小野原理恵", "新婦側", "親"},
}

// Guests returns the invited guests. Labels are parsed the same way the API parses them.
func Guests() ([]domain.CreateGuestRequest, error) {
	out := make([]domain.CreateGuestRequest, 0, len(guestRows))
	for _, row := range guestRows {
		side, ok := domain.ParseSide(row.side)
		if !ok {
			return nil, fmt.Errorf("guest %s: unknown side %q", row.name, row.side)
		}
		guestType, ok := domain.ParseGuestType(row.kind)
		if !ok {
			return nil, fmt.Errorf("guest %s: unknown type %q", row.name, row.kind)
		}
		req := domain.CreateGuestRequest{
			ID:       seedID("guest", row.n),
			Name:     row.name,
			Password: defaultPassword,
			Side:     side,
			Type:     guestType,
		}
		if err := req.Validate(); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

func link(s string) *string { return &s }

// ChecklistItems are the shared public items every guest starts with.
func ChecklistItems() []domain.ChecklistItem {
	return []domain.ChecklistItem{
		{ID: seedID("checklist", 1), Content: "入国申請をした", DueType: domain.DueWeekBefore, Link: link("https://www.visitguam.jp/planning/immigration-to-guam/"), Visibility: domain.VisibilityPublic},
		{ID: seedID("checklist", 2), Content: "ムームーを受け取った", DueType: domain.DueWeekBefore, Visibility: domain.VisibilityPublic},
		{ID: seedID("checklist", 3), Content: "Wi-FiもしくはSimカードの予約をした", DueType: domain.DueWeekBefore, Visibility: domain.VisibilityPublic},
		{ID: seedID("checklist", 4), Content: "パスポートを持った", DueType: domain.DueDayBefore, Visibility: domain.VisibilityPublic},
		{ID: seedID("checklist", 5), Content: "ムームーを持った", DueType: domain.DueDayBefore, Visibility: domain.VisibilityPublic},
	}
}

// InitialStates is the one pre-existing state row: the groom has not yet applied for entry.
func InitialStates() []domain.ChecklistState {
	return []domain.ChecklistState{
		{ID: seedID("state", 1), ChecklistItemID: seedID("checklist", 1), UserID: seedID("guest", 1), IsCompleted: false},
	}
}

var jst = time.FixedZone("JST", 9*60*60)

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006/01/02 15:04", s, jst)
	if err != nil {
		panic(err)
	}
	return t
}

// TimelineEvents are the travel plans of both families. Each family's events
// are created by the bride or groom of that side.
func TimelineEvents() []domain.TimelineEvent {
	groom, bride := seedID("guest", 1), seedID("guest", 2)
	event := func(n int, date, title, location string, v domain.Visibility, creator uuid.UUID, side domain.Side) domain.TimelineEvent {
		return domain.TimelineEvent{
			ID:         seedID("timeline", n),
			Date:       at(date),
			Title:      title,
			Location:   location,
			Visibility: v,
			CreatedBy:  creator,
			Side:       side,
		}
	}

	return []domain.TimelineEvent{
		event(1, "2025/02/08 18:00", "成田空港集合", "成田国際空港", domain.VisibilityFamily, groom, domain.SideGroom),
		event(2, "2025/02/09 10:00", "ホテルチェックイン", "ロッテホテルグアム", domain.VisibilityPublic, groom, domain.SideGroom),
		event(3, "2025/02/10 09:00", "市内観光", "タモン地区", domain.VisibilityFamily, groom, domain.SideGroom),
		event(4, "2025/02/07 11:40", "中部国際空港出発", "中部国際空港", domain.VisibilityPublic, bride, domain.SideBride),
		event(5, "2025/02/07 16:15", "グアム国際空港到着", "グアム国際空港", domain.VisibilityPublic, bride, domain.SideBride),
		event(6, "2025/02/07 18:30", "夕食", "グアムニッコー サンセットバーベキュー", domain.VisibilityFamily, bride, domain.SideBride),
		event(7, "2025/02/10 07:25", "グアム国際空港出発", "グアム国際空港", domain.VisibilityPublic, bride, domain.SideBride),
		event(8, "2025/02/10 10:20", "中部国際空港到着", "中部国際空港", domain.VisibilityPublic, bride, domain.SideBride),
	}
}
