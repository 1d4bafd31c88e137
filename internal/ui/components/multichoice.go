package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/ui/theme"
)

// OptionList renders the options of one question. Before grading, Pending
// is highlighted; once Marks is set each option is colored by its mark.
type OptionList struct {
	Options  []string
	Pending  int
	Marks    []exam.Mark
	Disabled bool
	Width    int
}

// View renders the options, one per line.
func (o OptionList) View() string {
	var b strings.Builder
	for i, opt := range o.Options {
		prefix := "  "
		if o.Marks == nil && i == o.Pending {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)
		if o.Width > 0 {
			line = lipgloss.NewStyle().Width(o.Width).Render(line)
		}
		b.WriteString(o.style(i).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (o OptionList) style(i int) lipgloss.Style {
	if o.Marks != nil && i < len(o.Marks) {
		switch o.Marks[i] {
		case exam.MarkCorrect:
			return theme.Correct
		case exam.MarkWrongPick:
			return theme.Incorrect
		default:
			return theme.Neutral
		}
	}
	switch {
	case o.Disabled:
		return theme.Neutral
	case i == o.Pending:
		return theme.Selected
	default:
		return theme.Unselected
	}
}

// MarksFor returns the option marks for question q answered with a, as
// shown right after grading.
func MarksFor(q exam.Question, a exam.Answer) []exam.Mark {
	items := exam.Review(exam.Result{Questions: []exam.Question{q}, Answers: []exam.Answer{a}})
	return items[0].OptionMarks
}
