package layout

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/i18n"
	"github.com/abhisek/examiz/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	HeaderHeight = 3
	FooterHeight = 3

	CompactWidthThreshold  = 100
	CompactHeightThreshold = 30
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsCompact reports whether the content area is too small for the roomy
// layout.
func IsCompact(width, height int) bool {
	return width < CompactWidthThreshold || height < CompactHeightThreshold-HeaderHeight-FooterHeight
}

// Center renders s horizontally centered in width.
func Center(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(s)
}

// Rule renders a horizontal divider, inset by two cells on each side.
func Rule(width int) string {
	n := width - 4
	if n < 1 {
		n = 1
	}
	return theme.Rule.Render(strings.Repeat("─", n))
}

// IsTooSmall reports whether the terminal is below the minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage tells the user how far the terminal is below the
// minimum size.
func RenderMinSizeMessage(width, height int) string {
	text := i18n.Td("TerminalTooSmall", map[string]any{
		"MinWidth": MinWidth, "MinHeight": MinHeight, "Width": width, "Height": height,
	})
	return lipgloss.NewStyle().Align(lipgloss.Center).Foreground(theme.Text).
		Width(width).Height(height).Render(text)
}

// bar wraps one line of content in the rounded card used above and below
// the content area.
func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderHeader draws the app name on the left, the screen title centred
// and the learner's XP and level on the right.
func RenderHeader(title string, xp, level int, width int) string {
	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  " + i18n.T("AppName"))
	mid := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Foreground(theme.Accent).Render(i18n.Td("HeaderXP", map[string]any{"XP": xp})),
		"   ",
		lipgloss.NewStyle().Foreground(theme.Secondary).Render(i18n.Td("HeaderLevel", map[string]any{"Level": level})),
	)

	inner := max(width-4, 0)
	nw, mw, sw := lipgloss.Width(name), lipgloss.Width(mid), lipgloss.Width(stats)
	before := max((inner-mw)/2-nw, 1)
	after := max(inner-nw-before-mw-sw, 1)

	return bar(name+strings.Repeat(" ", before)+mid+strings.Repeat(" ", after)+stats, width)
}

// RenderFooter lists key hints left to right. Hints that would overflow
// the bar are dropped from the end.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString("  ")
	used := 2
	for i, h := range hints {
		part := keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description)
		if i > 0 {
			part = "   " + part
		}
		pw := lipgloss.Width(part)
		if width > 4 && used+pw > width-4 {
			break
		}
		b.WriteString(part)
		used += pw
	}
	return bar(b.String(), width)
}

// RenderFrame stacks header, content and footer, giving the content all
// the height the bars leave over.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(body).Render(content),
		footer,
	)
}
