package exam

import (
	"fmt"
	"strings"
	"time"
)

// Result is the persisted record of a completed session.
type Result struct {
	ID        string     `json:"id" yaml:"id"`
	Topic     string     `json:"topic" yaml:"topic"`
	Grade     Grade      `json:"difficulty" yaml:"grade"`
	Score     int        `json:"score" yaml:"score"`
	Total     int        `json:"total" yaml:"total"`
	Timestamp time.Time  `json:"date" yaml:"date"`
	Questions []Question `json:"questions" yaml:"questions"`
	Answers   []Answer   `json:"userAnswers" yaml:"user_answers"`
}

// Ratio returns score/total, or 0 for an empty result.
func (r Result) Ratio() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total)
}

// Percent returns the rounded score percentage.
func (r Result) Percent() int {
	return int(r.Ratio()*100 + 0.5)
}

// Validate checks the record invariants: matching lengths and a score
// equal to the number of correct answers.
func (r Result) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("result has no id")
	}
	if len(r.Questions) != r.Total || len(r.Answers) != r.Total {
		return fmt.Errorf("result %s: total %d, %d questions, %d answers",
			r.ID, r.Total, len(r.Questions), len(r.Answers))
	}
	for i, q := range r.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("result %s: question %d: %w", r.ID, i+1, err)
		}
	}
	if got := CountCorrect(r.Questions, r.Answers); got != r.Score {
		return fmt.Errorf("result %s: score %d does not match %d correct answers", r.ID, r.Score, got)
	}
	return nil
}

// Clone returns a deep copy.
func (r Result) Clone() Result {
	r.Questions = CloneQuestions(r.Questions)
	r.Answers = append([]Answer(nil), r.Answers...)
	return r
}

// CountCorrect counts the positions where the answer matches the question's
// correct option.
func CountCorrect(qs []Question, answers []Answer) int {
	n := 0
	for i, q := range qs {
		if i < len(answers) && q.IsCorrect(answers[i]) {
			n++
		}
	}
	return n
}
