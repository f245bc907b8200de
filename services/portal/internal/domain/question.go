package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/diagnosis/wedding-portal/internal/utils"
	"github.com/google/uuid"
)

type Subject string

const (
	SubjectPrivate Subject = "private"
	SubjectPublic  Subject = "public"
)

// CustomQuestionOrder places guest-authored questions after the built-in set.
const CustomQuestionOrder = 999

type Question struct {
	Key           string     `json:"key"`
	Label         string     `json:"label"`
	LabelEn       string     `json:"label_en,omitempty"`
	OrderNum      int        `json:"order_num"`
	Subject       Subject    `json:"subject"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	CreatedByName *string    `json:"created_by_name,omitempty"`
	Builtin       bool       `json:"builtin"`
}

var builtinQuestions = []Question{
	{Key: "location", Label: "どこに住んでる？", LabelEn: "Where do you live?"},
	{Key: "favorite_food", Label: "好きな食べ物は？", LabelEn: "Favorite food?"},
	{Key: "favorite_drink", Label: "好きな飲み物は？", LabelEn: "Favorite drink?"},
	{Key: "holiday_activity", Label: "休みの日は何してる？", LabelEn: "What do you do on your days off?"},
	{Key: "favorite_celebrity", Label: "好きな芸能人は？", LabelEn: "Favorite celebrity?"},
	{Key: "impression", Label: "新郎（新婦）の印象は？", LabelEn: "Your impression of the groom (bride)?"},
	{Key: "dream", Label: "叶えたいことは？", LabelEn: "A dream you want to come true?"},
	{Key: "memory", Label: "一番の思い出は？", LabelEn: "Your best memory?"},
	{Key: "guam_plan", Label: "グアムでしたいことは？", LabelEn: "What do you want to do in Guam?"},
}

// BuiltinQuestions returns a fresh copy of the fixed question set in display order.
func BuiltinQuestions() []Question {
	out := make([]Question, len(builtinQuestions))
	for i, q := range builtinQuestions {
		q.OrderNum = i + 1
		q.Subject = SubjectPublic
		q.Builtin = true
		out[i] = q
	}
	return out
}

func IsBuiltinQuestion(key string) bool {
	for _, q := range builtinQuestions {
		if q.Key == key {
			return true
		}
	}
	return false
}

// CustomQuestionKey derives the key of a question created at t.
func CustomQuestionKey(t time.Time) string {
	return fmt.Sprintf("custom_%d", t.UnixMilli())
}

// QuestionVisibleTo reports whether guestID may see and answer q.
func QuestionVisibleTo(q Question, guestID uuid.UUID) bool {
	if q.Builtin || q.Subject == SubjectPublic {
		return true
	}
	return q.CreatedBy != nil && *q.CreatedBy == guestID
}

// MergeQuestions returns the built-in set followed by custom questions, ordered by order_num then key.
func MergeQuestions(custom []Question) []Question {
	out := BuiltinQuestions()
	for _, q := range custom {
		if IsBuiltinQuestion(q.Key) {
			continue
		}
		out = append(out, q)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderNum != out[j].OrderNum {
			return out[i].OrderNum < out[j].OrderNum
		}
		return out[i].Key < out[j].Key
	})
	return out
}

type Answer struct {
	GuestID     uuid.UUID `json:"guest_id"`
	QuestionKey string    `json:"question_key"`
	Answer      string    `json:"answer"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// SaveAnswersRequest is a whole Q&A form keyed by question key.
type SaveAnswersRequest struct {
	Answers map[string]string `json:"answers"`
}

// Rows trims every value and drops the empty ones, ordered by key.
func (r *SaveAnswersRequest) Rows(guestID uuid.UUID) []Answer {
	keys := make([]string, 0, len(r.Answers))
	for k := range r.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Answer, 0, len(keys))
	for _, k := range keys {
		v := strings.TrimSpace(r.Answers[k])
		if v == "" {
			continue
		}
		out = append(out, Answer{GuestID: guestID, QuestionKey: strings.TrimSpace(k), Answer: v})
	}
	return out
}

// Validate checks every submitted key against the questions the guest can see.
func (r *SaveAnswersRequest) Validate(allowed []Question) error {
	if r.Answers == nil {
		return invalid("answers", "answers are required")
	}
	known := make(map[string]bool, len(allowed))
	for _, q := range allowed {
		known[q.Key] = true
	}
	seen := make(map[string]bool, len(r.Answers))
	for k, v := range r.Answers {
		key := strings.TrimSpace(k)
		if !known[key] {
			return invalid("answers", "unknown question %q", k)
		}
		if seen[key] {
			return invalid("answers", "duplicate question %q", key)
		}
		seen[key] = true
		if utils.RuneLen(v) > 1000 {
			return invalid("answers", "answer to %q must be at most 1000 characters", k)
		}
	}
	return nil
}

type CreateQuestionRequest struct {
	Label   string  `json:"label"`
	Subject Subject `json:"subject"`
	Answer  string  `json:"answer"`
}

func (r *CreateQuestionRequest) Normalize() {
	r.Label = strings.TrimSpace(r.Label)
	r.Answer = strings.TrimSpace(r.Answer)
	if r.Subject == "" {
		r.Subject = SubjectPrivate
	}
}

func (r *CreateQuestionRequest) Validate() error {
	if r.Label == "" {
		return invalid("label", "label is required")
	}
	if utils.RuneLen(r.Label) > 100 {
		return invalid("label", "must be at most 100 characters")
	}
	if r.Subject != SubjectPrivate && r.Subject != SubjectPublic {
		return invalid("subject", "must be private or public")
	}
	if utils.RuneLen(r.Answer) > 1000 {
		return invalid("answer", "must be at most 1000 characters")
	}
	return nil
}

// ProfilePage is everything the profile screen of one guest shows.
type ProfilePage struct {
	Guest     GuestSummary  `json:"guest"`
	Questions []Question    `json:"questions"`
	Answers   []Answer      `json:"answers"`
	Progress  GuestProgress `json:"progress"`
	IsOwner   bool          `json:"is_owner"`
}
