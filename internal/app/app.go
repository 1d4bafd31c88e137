package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/clock"
	"github.com/abhisek/examiz/internal/history"
	"github.com/abhisek/examiz/internal/i18n"
	"github.com/abhisek/examiz/internal/progress"
	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screen"
	"github.com/abhisek/examiz/internal/screens/home"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/ui/layout"
)

// Options holds the dependencies of the TUI.
type Options struct {
	// Provider generates question sets. Nil means no LLM is configured.
	Provider session.QuestionProvider
	History  *history.Store
	Ledger   *progress.Ledger
	Settings session.Settings
	Logger   *slog.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	ctx    context.Context
	router *router.Router
	ledger *progress.Ledger
	snap   progress.Snapshot
	width  int
	height int
}

// newAppModel builds the machine and the home screen around it.
func newAppModel(ctx context.Context, opts Options, sched clock.Scheduler) AppModel {
	var onComplete func(int, string)
	if opts.Ledger != nil {
		onComplete = opts.Ledger.OnExamComplete(ctx)
	}
	m := session.New(session.Options{
		Provider:   opts.Provider,
		History:    opts.History,
		Scheduler:  sched,
		Settings:   opts.Settings,
		OnComplete: onComplete,
		Logger:     opts.Logger,
	})
	homeScreen := home.New(ctx, home.Options{
		Machine:       m,
		Ledger:        opts.Ledger,
		ProviderReady: opts.Provider != nil,
	})

	model := AppModel{
		ctx:    ctx,
		router: router.New(homeScreen),
		ledger: opts.Ledger,
	}
	model.snap = homeScreen.Snapshot()
	return model
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case screen.ProgressChangedMsg:
		m.refresh()
		return m, nil
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// refresh reloads the XP shown in the header.
func (m *AppModel) refresh() {
	if m.ledger == nil {
		return
	}
	if snap, err := m.ledger.Load(m.ctx); err == nil {
		m.snap = snap
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.snap.XP, m.snap.Level(), m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	quit := layout.KeyHint{Key: "Ctrl+C", Description: i18n.T("HintQuit")}
	if p, ok := active.(screen.KeyHintProvider); ok {
		if hints := p.KeyHints(); len(hints) > 0 {
			return append(hints, quit)
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: i18n.T("HintBack")},
			quit,
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: i18n.T("HintNavigate")},
		{Key: "Enter", Description: i18n.T("HintSelect")},
		quit,
	}
}

// Run starts the Bubble Tea program. Timer events are delivered to the
// program as messages.
func Run(ctx context.Context, opts Options) error {
	sched := clock.NewReal(nil)
	p := tea.NewProgram(newAppModel(ctx, opts, sched), tea.WithContext(ctx))
	sched.SetSink(func(ev any) { p.Send(ev) })

	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
