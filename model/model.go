package model

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// CanAuthor reports whether the role may create and delete surveys.
func (r Role) CanAuthor() bool {
	return r == RoleAdmin || r == RoleManager
}

type User struct {
	ID           string    `bson:"_id" json:"id"`
	Email        *string   `bson:"email" json:"email"`
	PasswordHash []byte    `bson:"passwordHash,omitempty" json:"-"`
	Role         Role      `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

type QuestionKind string

const (
	MultipleChoice QuestionKind = "multiple-choice"
	FreeText       QuestionKind = "text"
)

// Question is a variant type: multiple-choice questions carry at least
// two options, text questions carry none.
type Question struct {
	Kind    QuestionKind `bson:"kind" json:"kind"`
	Text    string       `bson:"text" json:"text"`
	Options []string     `bson:"options,omitempty" json:"options,omitempty"`
}

type Survey struct {
	ID          string     `bson:"_id" json:"id,omitempty"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description" json:"description"`
	Questions   []Question `bson:"questions" json:"questions"`
	ExpiresAt   *time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatorID   string     `bson:"creatorId" json:"creatorId,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
}

// Answer holds one respondent's responses to one survey, indexed by
// question position. An entry is a zero-based option index for a
// multiple-choice question, a string for a text question, or nil.
type Answer struct {
	ID          string    `bson:"_id" json:"id,omitempty"`
	SurveyID    string    `bson:"surveyId" json:"surveyId"`
	UserID      string    `bson:"userId" json:"userId"`
	Responses   []any     `bson:"responses" json:"responses"`
	SubmittedAt time.Time `bson:"submittedAt" json:"submittedAt"`
}

type ValidationError string

func (e ValidationError) Error() string { return string(e) }

func validationErrorf(format string, args ...any) ValidationError {
	return ValidationError(fmt.Sprintf(format, args...))
}

func (s Survey) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ValidationError("survey title must not be empty")
	}
	if len(s.Questions) == 0 {
		return ValidationError("survey must have at least one question")
	}
	for i, q := range s.Questions {
		if err := q.Validate(); err != nil {
			return validationErrorf("question %d: %s", i+1, err)
		}
	}
	return nil
}

func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ValidationError("missing question text")
	}
	switch q.Kind {
	case MultipleChoice:
		if len(q.Options) < 2 {
			return ValidationError("multiple-choice question needs at least two options")
		}
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return ValidationError("option text must not be empty")
			}
		}
	case FreeText:
		if len(q.Options) > 0 {
			return ValidationError("text question must not have options")
		}
	default:
		return validationErrorf("unknown question kind %q", q.Kind)
	}
	return nil
}

// ValidateResponses checks a submission against the survey it answers:
// one entry per question, every multiple-choice question answered with
// an in-range option index, text entries optional.
func ValidateResponses(s Survey, responses []any) error {
	if len(responses) != len(s.Questions) {
		return validationErrorf("expected %d responses, got %d", len(s.Questions), len(responses))
	}
	for i, q := range s.Questions {
		v := responses[i]
		switch q.Kind {
		case MultipleChoice:
			idx, ok := OptionIndex(v)
			if !ok {
				return validationErrorf("question %d requires a choice", i+1)
			}
			if idx < 0 || idx >= len(q.Options) {
				return validationErrorf("question %d: option %d out of range", i+1, idx)
			}
		case FreeText:
			if v == nil {
				continue
			}
			if _, ok := v.(string); !ok {
				return validationErrorf("question %d expects a text response", i+1)
			}
		}
	}
	return nil
}

// OptionIndex interprets a response entry as an option index. JSON
// decoding yields float64, BSON decoding may yield int32 or int64.
func OptionIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// Expired reports whether the survey has a close time in the past.
func (s Survey) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

// ResultsVisible is the visibility gate on aggregated results: open-ended
// surveys are always visible, closing surveys only once expired. The rule
// is independent of the caller's role; role-based routing is session logic.
func (s Survey) ResultsVisible(now time.Time) bool {
	return s.ExpiresAt == nil || s.Expired(now)
}
