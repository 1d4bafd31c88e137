package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/i18n"
	"github.com/abhisek/examiz/internal/progress"
	"github.com/abhisek/examiz/internal/ui/theme"
)

const titleFull = ` ███████╗██╗  ██╗ █████╗ ███╗   ███╗██╗███████╗
 ██╔════╝╚██╗██╔╝██╔══██╗████╗ ████║██║╚══███╔╝
 █████╗   ╚███╔╝ ███████║██╔████╔██║██║  ███╔╝
 ██╔══╝   ██╔██╗ ██╔══██║██║╚██╔╝██║██║ ███╔╝
 ███████╗██╔╝ ██╗██║  ██║██║ ╚═╝ ██║██║███████╗
 ╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝     ╚═╝╚═╝╚══════╝`

const titleCompact = "E · X · A · M · I · Z"

// recentLimit bounds the activity feed on the home screen.
const recentLimit = 3

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	// Leave room for the frame border (2) and inner padding (4).
	w := frameWidth - 6
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	art := titleFull
	if compact {
		art = titleCompact
	}
	title := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(style.Render(art))
	tagline := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
		Foreground(theme.TextDim).Italic(true).Render(i18n.T("HomeTagline"))
	return title + "\n" + tagline
}

// renderStatsBar renders XP and level in a double-bordered box.
func renderStatsBar(snap progress.Snapshot, cw int) string {
	xp := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Render("◆ " + i18n.Td("HeaderXP", map[string]any{"XP": snap.XP}))
	level := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render("★ " + i18n.Td("HeaderLevel", map[string]any{"Level": snap.Level()}))

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(xp + "   " + level)
}

// renderRecent lists the latest activities, newest first.
func renderRecent(activities []progress.Activity, cw int) string {
	heading := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(i18n.T("HomeRecent"))
	if len(activities) == 0 {
		return heading + "\n" + theme.Hint.Render(i18n.T("HomeNoActivity"))
	}

	lines := []string{heading}
	for _, a := range activities[:min(len(activities), recentLimit)] {
		xp := i18n.Td("ActivityXP", map[string]any{"XP": a.XP})
		label := a.Label
		room := cw - lipgloss.Width(xp) - 4
		if r := []rune(label); room > 1 && len(r) > room {
			label = string(r[:room-1]) + "…"
		}
		gap := max(cw-lipgloss.Width(label)-lipgloss.Width(xp)-2, 1)
		lines = append(lines, fmt.Sprintf("  %s%s%s",
			theme.Body.Render(label),
			strings.Repeat(" ", gap),
			lipgloss.NewStyle().Foreground(theme.Accent).Render(xp)))
	}
	return lipgloss.NewStyle().Width(cw).Render(strings.Join(lines, "\n"))
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderMenu renders each menu item as a fixed-width button.
func renderMenu(items []string, selected int, cw int) string {
	selectedBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Accent).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Padding(0, 1)

	normalBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	var buttons []string
	for i, label := range items {
		if i == selected {
			buttons = append(buttons, selectedBtn.Render("▸ "+label))
		} else {
			buttons = append(buttons, normalBtn.Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderMenuCompact renders menu items as plain lines for small terminals
// where bordered buttons would overflow.
func renderMenuCompact(items []string, selected int, cw int) string {
	var lines []string
	for i, label := range items {
		if i == selected {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Accent).
				Bold(true).
				Render(" ▸ "+label+" "))
		} else {
			lines = append(lines, theme.Body.Render("   "+label))
		}
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderProviderBanner warns that exams cannot start without a provider.
func renderProviderBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ " + i18n.T("ProviderMissingTitle"))
}

// renderFrame wraps content in a double-border frame, centered vertically
// and horizontally within the given dimensions.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
