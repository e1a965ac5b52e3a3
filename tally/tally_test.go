package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesoda/anket/model"
)

func mcSurvey(options ...string) model.Survey {
	return model.Survey{
		ID:    "s1",
		Title: "favorite letter",
		Questions: []model.Question{
			{Kind: model.MultipleChoice, Text: "pick one", Options: options},
		},
	}
}

func answer(responses ...any) model.Answer {
	return model.Answer{SurveyID: "s1", Responses: responses}
}

func TestComputeZeroAnswers(t *testing.T) {
	results := Compute(mcSurvey("A", "B"), nil)

	assert.Equal(t, 0, results.TotalVotes)
	require.Len(t, results.Questions, 1)
	require.Len(t, results.Questions[0].Options, 2)
	for _, opt := range results.Questions[0].Options {
		assert.Equal(t, 0, opt.Votes)
		assert.Equal(t, "0.0", opt.Percent)
	}
}

func TestComputeTwoToOne(t *testing.T) {
	answers := []model.Answer{
		answer(float64(0)),
		answer(float64(0)),
		answer(float64(1)),
	}

	results := Compute(mcSurvey("A", "B"), answers)

	assert.Equal(t, 3, results.TotalVotes)
	q := results.Questions[0]
	require.Len(t, q.Options, 2)
	assert.Equal(t, "A", q.Options[0].Label)
	assert.Equal(t, 2, q.Options[0].Votes)
	assert.Equal(t, "66.7", q.Options[0].Percent)
	assert.Equal(t, "B", q.Options[1].Label)
	assert.Equal(t, 1, q.Options[1].Votes)
	assert.Equal(t, "33.3", q.Options[1].Percent)
}

func TestComputeSkipsMalformedEntries(t *testing.T) {
	answers := []model.Answer{
		answer(float64(0)),  // valid
		answer(float64(5)),  // out of range
		answer(float64(-1)), // negative
		answer(nil),         // absent
		answer("zero"),      // wrong type
		answer(1.5),         // not an integer
		{SurveyID: "s1"},    // responses shorter than questions
		answer(int32(1)),    // bson integer decode
	}

	results := Compute(mcSurvey("A", "B"), answers)

	assert.Equal(t, 8, results.TotalVotes)
	q := results.Questions[0]
	assert.Equal(t, 1, q.Options[0].Votes)
	assert.Equal(t, 1, q.Options[1].Votes)

	// counts sum to the number of answers with a valid in-range index
	total := 0
	for _, opt := range q.Options {
		total += opt.Votes
	}
	assert.Equal(t, 2, total)
}

func TestComputeFreeText(t *testing.T) {
	survey := model.Survey{
		ID: "s1",
		Questions: []model.Question{
			{Kind: model.MultipleChoice, Text: "pick", Options: []string{"A", "B"}},
			{Kind: model.FreeText, Text: "thoughts?"},
		},
	}
	answers := []model.Answer{
		answer(float64(0), "first comment"),
		answer(float64(1), "   "),
		answer(float64(0), nil),
		answer(float64(1), "  second comment  "),
		answer(float64(0), float64(3)),
	}

	results := Compute(survey, answers)

	require.Len(t, results.Questions, 2)
	texts := results.Questions[1]
	assert.Equal(t, model.FreeText, texts.Kind)
	assert.Empty(t, texts.Options)
	// submission order preserved, blanks and non-strings dropped
	assert.Equal(t, []string{"first comment", "second comment"}, texts.Texts)
}

func TestComputeKeepsQuestionOrder(t *testing.T) {
	survey := model.Survey{
		ID: "s1",
		Questions: []model.Question{
			{Kind: model.MultipleChoice, Text: "one", Options: []string{"A", "B"}},
			{Kind: model.FreeText, Text: "two"},
			{Kind: model.MultipleChoice, Text: "three", Options: []string{"X", "Y", "Z"}},
		},
	}

	results := Compute(survey, []model.Answer{answer(float64(1), "hi", float64(2))})

	require.Len(t, results.Questions, 3)
	assert.Equal(t, "one", results.Questions[0].Text)
	assert.Equal(t, "two", results.Questions[1].Text)
	assert.Equal(t, "three", results.Questions[2].Text)
	assert.Equal(t, 1, results.Questions[2].Options[2].Votes)
	assert.Equal(t, "100.0", results.Questions[2].Options[2].Percent)
}
