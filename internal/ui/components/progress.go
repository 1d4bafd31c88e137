package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/ui/theme"
)

// TimerBar renders the per-question countdown as a shrinking bar with the
// seconds left on its right.
type TimerBar struct {
	Fraction float64
	Label    string
	Width    int
	Paused   bool
}

// View renders the bar.
func (t TimerBar) View() string {
	label := " " + t.Label
	barWidth := t.Width - lipgloss.Width(label)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * t.Fraction)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	fill := theme.TimerColor(t.Fraction)
	if t.Paused {
		fill = lipgloss.NewStyle().Background(theme.TextDim)
	}
	bar := fill.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	return bar + lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
}
