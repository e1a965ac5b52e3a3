package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSurvey() Survey {
	return Survey{
		Title: "lunch plans",
		Questions: []Question{
			{Kind: MultipleChoice, Text: "where to?", Options: []string{"pizza", "soup"}},
			{Kind: FreeText, Text: "anything else?"},
		},
	}
}

func TestSurveyValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Survey)
		wantErr string
	}{
		{"valid", func(s *Survey) {}, ""},
		{"empty title", func(s *Survey) { s.Title = "  " }, "title"},
		{"no questions", func(s *Survey) { s.Questions = nil }, "at least one question"},
		{"missing question text", func(s *Survey) { s.Questions[0].Text = "" }, "question text"},
		{"single option", func(s *Survey) { s.Questions[0].Options = []string{"pizza"} }, "two options"},
		{"blank option", func(s *Survey) { s.Questions[0].Options[1] = " " }, "option text"},
		{"options on text question", func(s *Survey) { s.Questions[1].Options = []string{"x"} }, "must not have options"},
		{"unknown kind", func(s *Survey) { s.Questions[0].Kind = "ranked" }, "unknown question kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSurvey()
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorAs(t, err, new(ValidationError))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateResponses(t *testing.T) {
	survey := validSurvey()

	tests := []struct {
		name      string
		responses []any
		wantErr   bool
	}{
		{"complete", []any{float64(0), "a comment"}, false},
		{"text left blank", []any{float64(1), nil}, false},
		{"too few entries", []any{float64(0)}, true},
		{"too many entries", []any{float64(0), "x", "y"}, true},
		{"choice missing", []any{nil, "x"}, true},
		{"choice out of range", []any{float64(2), "x"}, true},
		{"choice negative", []any{float64(-1), "x"}, true},
		{"choice not integral", []any{0.5, "x"}, true},
		{"text with wrong type", []any{float64(0), float64(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResponses(survey, tt.responses)
			if tt.wantErr {
				assert.ErrorAs(t, err, new(ValidationError))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVisibilityGate(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	openEnded := Survey{}
	assert.False(t, openEnded.Expired(now))
	assert.True(t, openEnded.ResultsVisible(now), "open-ended surveys are always visible")

	closed := Survey{ExpiresAt: &past}
	assert.True(t, closed.Expired(now))
	assert.True(t, closed.ResultsVisible(now))

	running := Survey{ExpiresAt: &future}
	assert.False(t, running.Expired(now))
	assert.False(t, running.ResultsVisible(now), "gate stays closed until expiry, for every role")

	boundary := Survey{ExpiresAt: &now}
	assert.True(t, boundary.Expired(now), "expiry at exactly now counts as closed")
}

func TestOptionIndex(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{float64(2), 2, true},
		{int(1), 1, true},
		{int32(3), 3, true},
		{int64(0), 0, true},
		{2.5, 0, false},
		{"1", 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := OptionIndex(tt.in)
		assert.Equal(t, tt.ok, ok)
		if ok {
			assert.Equal(t, tt.want, got)
		}
	}
}
