package home

import (
	"context"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examiz/internal/i18n"
	"github.com/abhisek/examiz/internal/progress"
	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screen"
	examscreen "github.com/abhisek/examiz/internal/screens/exam"
	"github.com/abhisek/examiz/internal/screens/placeholder"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/ui/components"
	"github.com/abhisek/examiz/internal/ui/layout"
)

// Options wires the home screen.
type Options struct {
	Machine *session.Machine
	Ledger  *progress.Ledger

	// ProviderReady is false when no question provider is configured;
	// starting an exam then shows a setup notice instead.
	ProviderReady bool
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	ctx        context.Context
	opts       Options
	menu       components.Menu
	menuLabels []string
	snap       progress.Snapshot
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(ctx context.Context, opts Options) *HomeScreen {
	h := &HomeScreen{ctx: ctx, opts: opts}

	h.menuLabels = []string{i18n.T("MenuStartExam"), i18n.T("MenuHistory"), i18n.T("MenuQuit")}
	items := []components.MenuItem{
		{Label: h.menuLabels[0], Action: h.startExam},
		{Label: h.menuLabels[1], Action: func() tea.Cmd {
			return router.Open(examscreen.NewHistory(ctx, opts.Machine))
		}},
		{Label: h.menuLabels[2], Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	h.menu = components.NewMenu(items)
	h.reload()
	return h
}

func (h *HomeScreen) startExam() tea.Cmd {
	if !h.opts.ProviderReady {
		return router.Open(placeholder.New(i18n.T("ProviderMissingTitle"), i18n.T("ProviderMissing")))
	}
	return router.Open(examscreen.New(h.ctx, h.opts.Machine))
}

// reload refreshes the XP snapshot.
func (h *HomeScreen) reload() {
	if h.opts.Ledger == nil {
		return
	}
	snap, err := h.opts.Ledger.Load(h.ctx)
	if err != nil {
		slog.Warn("load progress", "error", err)
		return
	}
	h.snap = snap
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

// Resume reloads progress after an exam screen is closed.
func (h *HomeScreen) Resume() tea.Cmd {
	h.reload()
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(screen.ProgressChangedMsg); ok {
		h.reload()
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompact(width, height)
	cw := contentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !h.opts.ProviderReady {
		sections = append(sections, renderProviderBanner(cw))
	}
	sections = append(sections, renderStatsBar(h.snap, cw))
	if compact {
		sections = append(sections, renderMenuCompact(h.menuLabels, h.menu.Selected, cw))
	} else {
		sections = append(sections, renderMenu(h.menuLabels, h.menu.Selected, cw))
		sections = append(sections, renderRecent(h.snap.Activities, cw))
	}

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return i18n.T("HomeTitle")
}

// Snapshot returns the progress shown on the screen.
func (h *HomeScreen) Snapshot() progress.Snapshot {
	return h.snap
}
