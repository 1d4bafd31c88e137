package exam

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/i18n"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/ui/components"
	"github.com/abhisek/examiz/internal/ui/layout"
	"github.com/abhisek/examiz/internal/ui/theme"
)

// cardWidth caps the width of the question card.
const cardWidth = 72

func (s *Screen) View(width, height int) string {
	var body string
	switch s.m.State() {
	case session.StateSetup:
		body = s.renderSetup(width)
	case session.StateGenerating:
		body = s.renderGenerating(width)
	case session.StateActive, session.StateGrading:
		if s.confirmQuit {
			body = renderQuitConfirm(width)
		} else {
			body = s.renderQuestion(width)
		}
	case session.StateCompleted:
		body = s.renderResults(width)
	case session.StateHistory:
		body = s.renderHistory(width, height)
	case session.StateReviewing:
		body = s.renderReview(width, height)
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(body)
}

func innerWidth(width int) int {
	return min(width-8, cardWidth)
}

func (s *Screen) renderSetup(width int) string {
	w := innerWidth(width)
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Center(theme.Title.Render(i18n.T("SetupHeading")), width))
	b.WriteString("\n\n")

	label := lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true)
	form := label.Render(i18n.T("SetupTopic")) + "\n" + s.input.View() + "\n\n" +
		label.Render(i18n.T("SetupGrade")) + "\n" + renderGradePicker(s.grade)

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(w).Render(form)))
	return b.String()
}

// renderGradePicker shows the selected grade between its neighbours.
func renderGradePicker(selected int) string {
	grades := exam.Grades()
	var parts []string
	if selected > 0 {
		parts = append(parts, theme.Neutral.Render("‹ "+string(grades[selected-1])))
	}
	parts = append(parts, theme.ButtonActive.Render(string(grades[selected])))
	if selected < len(grades)-1 {
		parts = append(parts, theme.Neutral.Render(string(grades[selected+1])+" ›"))
	}
	return strings.Join(parts, "  ")
}

func (s *Screen) renderGenerating(width int) string {
	cfg := s.m.Config()
	msg := i18n.Td("Generating", map[string]any{"Topic": cfg.Topic, "Grade": string(cfg.Grade)})
	return "\n\n\n" + layout.Center(theme.Hint.Render(msg), width)
}

func (s *Screen) renderQuestion(width int) string {
	q, ok := s.m.Current()
	if !ok {
		return ""
	}
	w := innerWidth(width)

	var b strings.Builder
	b.WriteString("\n")

	counter := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(i18n.Td("QuestionCounter", map[string]any{"Index": s.m.Index() + 1, "Total": s.m.Total()}))
	score := lipgloss.NewStyle().Foreground(theme.Accent).
		Render(i18n.Td("ScoreLabel", map[string]any{"Score": s.m.Score()}))
	gap := w - lipgloss.Width(counter) - lipgloss.Width(score)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, counter+strings.Repeat(" ", gap)+score))
	b.WriteString("\n")

	bar := components.TimerBar{
		Fraction: s.m.TimeFraction(),
		Label:    i18n.Td("SecondsLeft", map[string]any{"Seconds": s.m.Remaining()}),
		Width:    w,
		Paused:   s.m.Paused(),
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Body.Bold(true).Width(w).Render(q.Text)))
	b.WriteString("\n\n")

	if s.m.Paused() {
		b.WriteString(layout.Center(theme.Title.Foreground(theme.Accent).Render(i18n.T("Paused")), width))
		b.WriteString("\n")
		b.WriteString(layout.Center(theme.Hint.Render(i18n.T("PausedHint")), width))
		return b.String()
	}

	list := components.OptionList{Options: q.Options, Pending: s.m.Pending(), Width: w}
	graded := s.m.State() == session.StateGrading
	var answer exam.Answer
	if graded {
		answer, _ = s.m.Answer(s.m.Index())
		list.Marks = components.MarksFor(q, answer)
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, list.View()))

	if graded {
		b.WriteString("\n")
		b.WriteString(layout.Center(renderFeedback(q, answer), width))
	}
	return b.String()
}

func renderFeedback(q exam.Question, a exam.Answer) string {
	switch {
	case q.IsCorrect(a):
		return theme.Correct.Render(i18n.T("FeedbackCorrect"))
	case !a.Answered:
		return theme.Incorrect.Render(i18n.Td("FeedbackTimedOut", map[string]any{"Answer": q.Correct}))
	default:
		return theme.Incorrect.Render(i18n.Td("FeedbackIncorrect", map[string]any{"Answer": q.Correct}))
	}
}

func renderQuitConfirm(width int) string {
	return "\n\n\n" +
		layout.Center(theme.Body.Bold(true).Render(i18n.T("QuitConfirm")), width) + "\n\n" +
		layout.Center(
			theme.Incorrect.Render("[Y] "+i18n.T("HintYes"))+"    "+
				theme.Selected.Render("[N] "+i18n.T("HintNo")), width)
}

func (s *Screen) renderResults(width int) string {
	r, ok := s.m.Result()
	if !ok {
		return ""
	}

	verdict := theme.Correct.Render(i18n.T("VerdictExcellent"))
	if exam.VerdictFor(r) != exam.VerdictExcellent {
		verdict = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(i18n.T("VerdictKeepPracticing"))
	}

	lines := []string{
		theme.Title.Render(i18n.T("ResultsHeading")),
		"",
		verdict,
		"",
		theme.Body.Bold(true).Render(i18n.Td("ResultsScore", map[string]any{
			"Score": r.Score, "Total": r.Total, "Percent": r.Percent(),
		})),
		lipgloss.NewStyle().Foreground(theme.Accent).Render(i18n.Td("ResultsReward", map[string]any{"XP": s.m.Reward()})),
		"",
		theme.Subtitle.Render(r.Topic + " · " + string(r.Grade)),
	}
	card := theme.Card.Width(innerWidth(width)).Align(lipgloss.Center).Render(strings.Join(lines, "\n"))
	return "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, card)
}

func (s *Screen) renderHistory(width, height int) string {
	if s.loadErr != "" {
		return "\n\n" + layout.Center(theme.ErrorText.Render(s.loadErr), width)
	}
	results := s.m.History()
	if len(results) == 0 {
		return "\n\n" + layout.Center(theme.Hint.Render(i18n.T("HistoryEmpty")), width)
	}

	w := innerWidth(width)
	first, last := window(s.histSel, len(results), height-2)

	var b strings.Builder
	b.WriteString("\n")
	for i := first; i < last; i++ {
		r := results[i]
		prefix := "  "
		if i == s.histSel {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s  %-24s  %-8s  %d/%d  %s",
			prefix,
			r.Timestamp.Local().Format("Jan 02 15:04"),
			truncate(r.Topic, 24),
			truncate(string(r.Grade), 8),
			r.Score, r.Total,
			i18n.Tp("Questions", r.Total))

		style := theme.Unselected
		if exam.Highlighted(r) {
			style = theme.Highlighted
		}
		if i == s.histSel {
			style = style.Bold(true).Background(theme.BgCard)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Width(w).Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Screen) renderReview(width, height int) string {
	r, ok := s.m.Reviewing()
	if !ok {
		return ""
	}
	w := innerWidth(width)

	var lines []string
	lines = append(lines,
		theme.Title.Render(r.Topic+" · "+string(r.Grade)),
		theme.Subtitle.Render(i18n.Td("ResultsScore", map[string]any{
			"Score": r.Score, "Total": r.Total, "Percent": r.Percent(),
		})),
		"")

	for _, item := range exam.Review(r) {
		lines = append(lines, theme.Body.Bold(true).Width(w).Render(fmt.Sprintf("%d. %s", item.Number, item.Question.Text)))
		list := components.OptionList{Options: item.Question.Options, Pending: -1, Marks: item.OptionMarks, Width: w}
		lines = append(lines, strings.Split(strings.TrimRight(list.View(), "\n"), "\n")...)

		answer := i18n.T("NoAnswer")
		if item.Answer.Answered {
			answer = item.Answer.Choice
		}
		style := theme.Incorrect
		if item.Correct {
			style = theme.Correct
		}
		lines = append(lines, style.Render(i18n.Td("YourAnswer", map[string]any{"Answer": answer})))
		if item.Question.Explanation != "" {
			lines = append(lines, theme.Hint.Width(w).Render(i18n.T("Explanation")+": "+item.Question.Explanation))
		}
		lines = append(lines, "")
	}

	// Styled blocks may wrap, so split again before windowing.
	lines = strings.Split(strings.Join(lines, "\n"), "\n")
	maxScroll := max(len(lines)-height, 0)
	if s.scroll > maxScroll {
		s.scroll = maxScroll
	}
	end := min(s.scroll+height, len(lines))

	block := strings.Join(lines[s.scroll:end], "\n")
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(w).Render(block))
}

// window returns the visible slice [first, last) of n rows so that sel is
// on screen.
func window(sel, n, rows int) (int, int) {
	if rows < 1 {
		rows = 1
	}
	if n <= rows {
		return 0, n
	}
	first := sel - rows/2
	first = max(first, 0)
	first = min(first, n-rows)
	return first, first + rows
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
