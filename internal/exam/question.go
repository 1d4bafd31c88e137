package exam

import (
	"fmt"
	"strings"
)

// OptionCount is the number of options every question carries.
const OptionCount = 4

// Question is a single multiple-choice question. It is immutable once a
// session has been built from it.
type Question struct {
	// Text is the question prompt.
	Text string `json:"question" yaml:"question"`

	// Options holds exactly OptionCount distinct, non-empty choices in
	// display order.
	Options []string `json:"options" yaml:"options"`

	// Correct is the text of the correct option, present verbatim in Options.
	Correct string `json:"correctAnswer" yaml:"correct_answer"`

	// Explanation is shown during review.
	Explanation string `json:"explanation" yaml:"explanation"`
}

// CorrectIndex returns the position of the correct option, or -1.
func (q Question) CorrectIndex() int {
	for i, o := range q.Options {
		if o == q.Correct {
			return i
		}
	}
	return -1
}

// IsCorrect reports whether the answer matches the correct option.
func (q Question) IsCorrect(a Answer) bool {
	return a.Answered && a.Choice == q.Correct
}

// Validate checks the question shape.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("expected %d options, got %d", OptionCount, len(q.Options))
	}
	seen := make(map[string]bool, len(q.Options))
	for i, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("option %d is empty", i+1)
		}
		if seen[o] {
			return fmt.Errorf("duplicate option %q", o)
		}
		seen[o] = true
	}
	if !seen[q.Correct] {
		return fmt.Errorf("correct answer %q is not one of the options", q.Correct)
	}
	return nil
}

// ValidateQuestions checks a fetched question set. Any problem is reported
// as a *MalformedError.
func ValidateQuestions(qs []Question) error {
	if len(qs) == 0 {
		return &MalformedError{Index: -1, Reason: "no questions returned"}
	}
	for i, q := range qs {
		if err := q.Validate(); err != nil {
			return &MalformedError{Index: i, Reason: err.Error()}
		}
	}
	return nil
}

// CloneQuestions returns a deep copy so a snapshot cannot alias a live
// session.
func CloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
