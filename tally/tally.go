// Package tally aggregates answer documents into per-option vote counts
// and collected free-text responses for one survey.
package tally

import (
	"strconv"
	"strings"

	"github.com/wesoda/anket/model"
)

type Results struct {
	TotalVotes int              `json:"totalVotes"`
	Questions  []QuestionResult `json:"questions"`
}

type QuestionResult struct {
	Kind    model.QuestionKind `json:"kind"`
	Text    string             `json:"text"`
	Options []OptionTally      `json:"options,omitempty"`
	Texts   []string           `json:"texts,omitempty"`
}

type OptionTally struct {
	Label   string `json:"label"`
	Votes   int    `json:"votes"`
	Percent string `json:"percent"`
}

// Compute tallies a set of answers against the survey definition.
// Malformed response entries are skipped, never an error: answers are
// independently written documents and one bad field must not invalidate
// the whole aggregation.
func Compute(survey model.Survey, answers []model.Answer) Results {
	results := Results{
		TotalVotes: len(answers),
		Questions:  make([]QuestionResult, len(survey.Questions)),
	}

	for i, q := range survey.Questions {
		qr := QuestionResult{Kind: q.Kind, Text: q.Text}

		switch q.Kind {
		case model.MultipleChoice:
			counts := make([]int, len(q.Options))
			for _, a := range answers {
				if i >= len(a.Responses) {
					continue
				}
				v, ok := model.OptionIndex(a.Responses[i])
				if !ok || v < 0 || v >= len(counts) {
					continue
				}
				counts[v]++
			}
			qr.Options = make([]OptionTally, len(q.Options))
			for o, label := range q.Options {
				qr.Options[o] = OptionTally{
					Label:   label,
					Votes:   counts[o],
					Percent: percent(counts[o], len(answers)),
				}
			}
		case model.FreeText:
			qr.Texts = []string{}
			for _, a := range answers {
				if i >= len(a.Responses) {
					continue
				}
				text, ok := a.Responses[i].(string)
				if !ok {
					continue
				}
				if text = strings.TrimSpace(text); text != "" {
					qr.Texts = append(qr.Texts, text)
				}
			}
		}

		results.Questions[i] = qr
	}
	return results
}

// percent formats count/total as a percentage with one decimal; "0.0"
// when there are no answers at all.
func percent(count, total int) string {
	if total == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(float64(count)/float64(total)*100, 'f', 1, 64)
}
