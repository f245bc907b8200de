package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/google/uuid"
)

// ---------- Mocks ----------

type publishedEvent struct {
	subject string
	payload interface{}
}

type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, subject string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{subject: subject, payload: data})
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.subject)
	}
	return out
}

type mockGuestRepo struct {
	mu      sync.Mutex
	guests  map[uuid.UUID]*domain.Guest
	listErr error
}

func newMockGuestRepo(guests ...domain.Guest) *mockGuestRepo {
	m := &mockGuestRepo{guests: make(map[uuid.UUID]*domain.Guest)}
	for i := range guests {
		g := guests[i]
		m.guests[g.ID] = &g
	}
	return m
}

func (m *mockGuestRepo) List(context.Context) ([]domain.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Guest, 0, len(m.guests))
	for _, g := range m.guests {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockGuestRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guests[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m *mockGuestRepo) FindByName(_ context.Context, name string) (*domain.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.guests {
		if g.Name == name {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockGuestRepo) MarkAnswered(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guests[id]
	if !ok {
		return domain.ErrNotFound
	}
	g.IsAnsweredQA = true
	return nil
}

func (m *mockGuestRepo) Create(_ context.Context, req *domain.CreateGuestRequest, passwordHash string) (*domain.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := &domain.Guest{ID: req.ID, Name: req.Name, PasswordHash: passwordHash, Side: req.Side, Type: req.Type}
	m.guests[g.ID] = g
	cp := *g
	return &cp, nil
}

func (m *mockGuestRepo) sideOf(id uuid.UUID) *domain.Side {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guests[id]
	if !ok {
		return nil
	}
	side := g.Side
	return &side
}

type mockProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*domain.GuestProfile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[uuid.UUID]*domain.GuestProfile)}
}

func (m *mockProfileRepo) List(context.Context) ([]domain.GuestProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.GuestProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProfileRepo) FindByGuestID(_ context.Context, guestID uuid.UUID) (*domain.GuestProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[guestID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockProfileRepo) upsert(guestID uuid.UUID, fn func(p *domain.GuestProfile)) *domain.GuestProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[guestID]
	if !ok {
		p = &domain.GuestProfile{GuestID: guestID}
		m.profiles[guestID] = p
	}
	fn(p)
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp
}

func (m *mockProfileRepo) UpsertAvatar(_ context.Context, guestID uuid.UUID, avatarURL string) (*domain.GuestProfile, error) {
	return m.upsert(guestID, func(p *domain.GuestProfile) { p.AvatarURL = &avatarURL }), nil
}

func (m *mockProfileRepo) UpsertLocation(_ context.Context, guestID uuid.UUID, location *string) (*domain.GuestProfile, error) {
	return m.upsert(guestID, func(p *domain.GuestProfile) { p.Location = location }), nil
}

type mockQuestionRepo struct {
	mu        sync.Mutex
	questions []domain.Question
}

func (m *mockQuestionRepo) ListVisibleTo(_ context.Context, guestID uuid.UUID) ([]domain.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Question
	for _, q := range m.questions {
		if domain.QuestionVisibleTo(q, guestID) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockQuestionRepo) Create(_ context.Context, q domain.Question) (*domain.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.questions {
		if existing.Key == q.Key {
			return nil, fmt.Errorf("question %s: %w", q.Key, domain.ErrConflict)
		}
	}
	m.questions = append(m.questions, q)
	return &q, nil
}

type mockAnswerRepo struct {
	mu         sync.Mutex
	answers      map[uuid.UUID]map[string]domain.Answer
	replaceErr   error
	replaceCalls int
}

func newMockAnswerRepo() *mockAnswerRepo {
	return &mockAnswerRepo{answers: make(map[uuid.UUID]map[string]domain.Answer)}
}

func (m *mockAnswerRepo) ListByGuest(_ context.Context, guestID uuid.UUID) ([]domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Answer, 0, len(m.answers[guestID]))
	for _, a := range m.answers[guestID] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionKey < out[j].QuestionKey })
	return out, nil
}

func (m *mockAnswerRepo) Add(_ context.Context, a domain.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.answers[a.GuestID] == nil {
		m.answers[a.GuestID] = make(map[string]domain.Answer)
	}
	m.answers[a.GuestID][a.QuestionKey] = a
	return nil
}

func (m *mockAnswerRepo) ReplaceAll(_ context.Context, guestID uuid.UUID, answers []domain.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	set := make(map[string]domain.Answer, len(answers))
	for _, a := range answers {
		// (guest_id, question_key) is the primary key of guest_qa
		if _, dup := set[a.QuestionKey]; dup {
			return fmt.Errorf("duplicate key value violates unique constraint guest_qa_pkey: %s", a.QuestionKey)
		}
		set[a.QuestionKey] = a
	}
	m.answers[guestID] = set
	return nil
}

type mockChecklistRepo struct {
	mu     sync.Mutex
	items  []domain.ChecklistItem
	guests *mockGuestRepo
}

func (m *mockChecklistRepo) withOwner(item domain.ChecklistItem) domain.ChecklistItem {
	item.CreatorSide = nil
	if item.CreatedBy != uuid.Nil && m.guests != nil {
		item.CreatorSide = m.guests.sideOf(item.CreatedBy)
	}
	return item
}

func (m *mockChecklistRepo) ListWithOwner(context.Context) ([]domain.ChecklistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ChecklistItem, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, m.withOwner(item))
	}
	return out, nil
}

func (m *mockChecklistRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.ChecklistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			found := m.withOwner(item)
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockChecklistRepo) Create(_ context.Context, creatorID uuid.UUID, req *domain.CreateChecklistItemRequest) (*domain.ChecklistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := domain.ChecklistItem{
		ID:         uuid.New(),
		Content:    req.Content,
		DueType:    req.DueType,
		Link:       req.Link,
		Visibility: req.Visibility,
		CreatedBy:  creatorID,
		CreatedAt:  time.Now(),
	}
	m.items = append(m.items, item)
	created := m.withOwner(item)
	return &created, nil
}

func (m *mockChecklistRepo) Update(_ context.Context, item domain.ChecklistItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == item.ID {
			m.items[i] = item
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockChecklistRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type mockStateRepo struct {
	mu     sync.Mutex
	states []domain.ChecklistState
}

func (m *mockStateRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.ChecklistState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ChecklistState
	for _, s := range m.states {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStateRepo) Toggle(_ context.Context, itemID, userID uuid.UUID) (*domain.ChecklistState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.states {
		if m.states[i].ChecklistItemID == itemID && m.states[i].UserID == userID {
			m.states[i].IsCompleted = !m.states[i].IsCompleted
			s := m.states[i]
			return &s, nil
		}
	}
	s := domain.ChecklistState{ID: uuid.New(), ChecklistItemID: itemID, UserID: userID, IsCompleted: true}
	m.states = append(m.states, s)
	return &s, nil
}

type mockTimelineRepo struct {
	mu     sync.Mutex
	events []domain.TimelineEvent
	guests *mockGuestRepo
}

func (m *mockTimelineRepo) withOwner(e domain.TimelineEvent) domain.TimelineEvent {
	e.CreatorSide = nil
	if e.CreatedBy != uuid.Nil && m.guests != nil {
		e.CreatorSide = m.guests.sideOf(e.CreatedBy)
	}
	return e
}

func (m *mockTimelineRepo) ListWithOwner(context.Context) ([]domain.TimelineEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.TimelineEvent, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, m.withOwner(e))
	}
	return out, nil
}

func (m *mockTimelineRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.TimelineEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			found := m.withOwner(e)
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockTimelineRepo) Create(_ context.Context, creatorID uuid.UUID, req *domain.CreateTimelineEventRequest) (*domain.TimelineEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := domain.TimelineEvent{
		ID:         uuid.New(),
		Date:       req.Date,
		Title:      req.Title,
		Location:   req.Location,
		Visibility: req.Visibility,
		CreatedBy:  creatorID,
		Side:       req.Side,
		CreatedAt:  time.Now(),
	}
	m.events = append(m.events, e)
	created := m.withOwner(e)
	return &created, nil
}

func (m *mockTimelineRepo) Update(_ context.Context, e domain.TimelineEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == e.ID {
			m.events[i] = e
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockTimelineRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type mockBucket struct {
	puts map[string][]byte
	err  error
}

func (m *mockBucket) Put(_ context.Context, name string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.puts == nil {
		m.puts = make(map[string][]byte)
	}
	m.puts[name] = data
	return "https://cdn.test/avatars/" + name, nil
}

// ---------- Fixtures ----------

var (
	taroGuest   = domain.Guest{ID: uuid.New(), Name: "生駒太郎", Side: domain.SideGroom, Type: domain.TypeGroom}
	jiroGuest   = domain.Guest{ID: uuid.New(), Name: "生駒次郎", Side: domain.SideGroom, Type: domain.TypeOlderBrother}
	hanakoGuest = domain.Guest{ID: uuid.New(), Name: "小野原花子", Side: domain.SideBride, Type: domain.TypeBride}

	taro   = taroGuest.SessionUser()
	jiro   = jiroGuest.SessionUser()
	hanako = hanakoGuest.SessionUser()
)

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
