package exam

// Mark is the review state of one option.
type Mark int

const (
	MarkNeutral   Mark = iota // not chosen, not correct
	MarkCorrect               // the correct option
	MarkWrongPick             // chosen by the learner but wrong
)

// Verdict thresholds on score/total.
const (
	ExcellentRatio = 0.8
	HighlightRatio = 0.6
)

// Verdict summarises a result.
type Verdict string

const (
	VerdictExcellent      Verdict = "excellent"
	VerdictKeepPracticing Verdict = "keep_practicing"
)

// VerdictFor returns the verdict for a result.
func VerdictFor(r Result) Verdict {
	if r.Ratio() >= ExcellentRatio {
		return VerdictExcellent
	}
	return VerdictKeepPracticing
}

// Highlighted reports whether a history row is shown as a pass.
func Highlighted(r Result) bool {
	return r.Ratio() >= HighlightRatio
}

// ReviewItem is the read-only reconstruction of one answered question.
type ReviewItem struct {
	Number      int
	Question    Question
	Answer      Answer
	Correct     bool
	OptionMarks []Mark
}

// Review rebuilds per-option correctness purely from the stored snapshot.
func Review(r Result) []ReviewItem {
	items := make([]ReviewItem, len(r.Questions))
	for i, q := range r.Questions {
		var a Answer
		if i < len(r.Answers) {
			a = r.Answers[i]
		}
		marks := make([]Mark, len(q.Options))
		for j, o := range q.Options {
			switch {
			case o == q.Correct:
				marks[j] = MarkCorrect
			case a.Answered && o == a.Choice:
				marks[j] = MarkWrongPick
			}
		}
		items[i] = ReviewItem{
			Number:      i + 1,
			Question:    q,
			Answer:      a,
			Correct:     q.IsCorrect(a),
			OptionMarks: marks,
		}
	}
	return items
}
