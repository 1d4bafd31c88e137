// Package exam is the exam screen. It owns no exam state of its own: every
// key press becomes a call on the session machine, and what gets drawn is
// chosen by the machine's state.
package exam

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examiz/internal/clock"
	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/i18n"
	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screen"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/ui/components"
	"github.com/abhisek/examiz/internal/ui/layout"
)

// Screen drives a session.Machine from keyboard input.
type Screen struct {
	m   *session.Machine
	ctx context.Context

	cancelFetch context.CancelFunc

	input       components.TextInput
	grade       int
	confirmQuit bool
	histSel     int
	scroll      int

	// historyOnly is set when the screen was opened on the history list;
	// leaving the list then leaves the screen.
	historyOnly bool
	loadErr     string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates an exam screen on the setup form.
func New(ctx context.Context, m *session.Machine) *Screen {
	cfg := m.Config()
	grade := exam.GradeIndex(cfg.Grade)
	if grade < 0 {
		grade = exam.GradeIndex(exam.DefaultGrade)
	}
	return &Screen{
		m:     m,
		ctx:   ctx,
		input: components.NewTextInput(i18n.T("SetupTopicPlaceholder"), cfg.Topic, components.TopicCharLimit),
		grade: grade,
	}
}

// NewHistory creates an exam screen that opens on the history list.
func NewHistory(ctx context.Context, m *session.Machine) *Screen {
	s := New(ctx, m)
	s.historyOnly = true
	return s
}

func (s *Screen) Init() tea.Cmd {
	s.reset()
	if s.historyOnly {
		s.openHistory()
	}
	return s.input.Init()
}

// reset brings a machine left over from an earlier visit back to setup.
func (s *Screen) reset() {
	switch s.m.State() {
	case session.StateCompleted:
		s.m.NewSession()
	case session.StateReviewing:
		s.m.BackToHistory()
		s.m.CloseHistory()
	case session.StateHistory:
		s.m.CloseHistory()
	case session.StateGenerating, session.StateActive, session.StateGrading:
		s.m.Abandon()
	}
}

func (s *Screen) Title() string {
	switch s.m.State() {
	case session.StateHistory:
		return i18n.T("HistoryTitle")
	case session.StateReviewing:
		return i18n.T("ReviewTitle")
	}
	return i18n.T("ExamTitle")
}

func (s *Screen) KeyHints() []layout.KeyHint {
	back := layout.KeyHint{Key: "Esc", Description: i18n.T("HintBack")}
	switch s.m.State() {
	case session.StateSetup:
		return []layout.KeyHint{
			{Key: "Enter", Description: i18n.T("HintStart")},
			{Key: "↑↓", Description: i18n.T("HintGrade")},
			{Key: "Tab", Description: i18n.T("HintHistory")},
			back,
		}
	case session.StateGenerating:
		return []layout.KeyHint{{Key: "Esc", Description: i18n.T("HintCancel")}}
	case session.StateActive, session.StateGrading:
		if s.confirmQuit {
			return []layout.KeyHint{
				{Key: "Y", Description: i18n.T("HintYes")},
				{Key: "N", Description: i18n.T("HintNo")},
			}
		}
		if s.m.Paused() {
			return []layout.KeyHint{
				{Key: "P", Description: i18n.T("HintResume")},
				{Key: "Esc", Description: i18n.T("HintAbandon")},
			}
		}
		return []layout.KeyHint{
			{Key: "1-4", Description: i18n.T("HintAnswer")},
			{Key: "Enter", Description: i18n.T("HintConfirm")},
			{Key: "P", Description: i18n.T("HintPause")},
			{Key: "Esc", Description: i18n.T("HintAbandon")},
		}
	case session.StateCompleted:
		return []layout.KeyHint{
			{Key: "N", Description: i18n.T("HintNewExam")},
			{Key: "H", Description: i18n.T("HintHistory")},
			back,
		}
	case session.StateHistory:
		return []layout.KeyHint{
			{Key: "↑↓", Description: i18n.T("HintNavigate")},
			{Key: "Enter", Description: i18n.T("HintReview")},
			back,
		}
	case session.StateReviewing:
		return []layout.KeyHint{
			{Key: "↑↓", Description: i18n.T("HintScroll")},
			back,
		}
	}
	return nil
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case session.QuestionsReady, clock.Tick, session.Advance:
		return s, s.handle(msg)
	case tea.KeyPressMsg:
		return s, s.handleKey(msg)
	}

	if s.m.State() == session.StateSetup {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// handle feeds an asynchronous event to the machine.
func (s *Screen) handle(ev any) tea.Cmd {
	before := s.m.State()
	if !s.m.Handle(s.ctx, ev) {
		return nil
	}
	after := s.m.State()
	switch {
	case before == session.StateGenerating && after == session.StateSetup:
		s.input.SetError(fetchError(s.m.Err()))
		s.releaseFetch()
	case before == session.StateGenerating:
		s.releaseFetch()
	case after == session.StateCompleted:
		s.confirmQuit = false
		return func() tea.Msg { return screen.ProgressChangedMsg{} }
	}
	return nil
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	switch s.m.State() {
	case session.StateSetup:
		return s.setupKey(msg, key)
	case session.StateGenerating:
		if key == "esc" {
			s.abandon()
		}
	case session.StateActive, session.StateGrading:
		s.examKey(key)
	case session.StateCompleted:
		return s.resultsKey(key)
	case session.StateHistory:
		return s.historyKey(key)
	case session.StateReviewing:
		s.reviewKey(key)
	}
	return nil
}

func (s *Screen) setupKey(msg tea.KeyPressMsg, key string) tea.Cmd {
	switch key {
	case "esc":
		return router.Back()
	case "enter":
		return s.start()
	case "tab":
		s.openHistory()
		return nil
	case "up":
		if s.grade > 0 {
			s.grade--
		}
		return nil
	case "down":
		if s.grade < len(exam.Grades())-1 {
			s.grade++
		}
		return nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

// start submits the setup form and runs the provider call off the event
// loop.
func (s *Screen) start() tea.Cmd {
	topic := s.input.Value()
	if topic == "" {
		s.input.SetError(i18n.T("ErrEmptyTopic"))
		return nil
	}
	fetch, err := s.m.Start(exam.Config{Topic: topic, Grade: exam.Grades()[s.grade]})
	if err != nil {
		s.input.SetError(err.Error())
		return nil
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelFetch = cancel
	return func() tea.Msg {
		return fetch(ctx)
	}
}

func (s *Screen) releaseFetch() {
	if s.cancelFetch != nil {
		s.cancelFetch()
		s.cancelFetch = nil
	}
}

func (s *Screen) abandon() {
	s.m.Abandon()
	s.releaseFetch()
	s.confirmQuit = false
}

func (s *Screen) examKey(key string) {
	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.abandon()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return
	}

	switch key {
	case "esc":
		s.confirmQuit = true
	case "p", "P":
		s.m.TogglePause()
	case "1", "2", "3", "4":
		s.m.Choose(int(key[0] - '1'))
	case "up", "k":
		if p := s.m.Pending(); p > 0 {
			s.m.Highlight(p - 1)
		}
	case "down", "j":
		s.m.Highlight(s.m.Pending() + 1)
	case "enter":
		s.m.Submit()
	}
}

func (s *Screen) resultsKey(key string) tea.Cmd {
	switch key {
	case "n", "N":
		s.m.NewSession()
		return s.input.Init()
	case "h", "H":
		s.m.NewSession()
		s.openHistory()
	case "esc", "enter":
		s.m.NewSession()
		return router.Back()
	}
	return nil
}

func (s *Screen) openHistory() {
	s.loadErr = ""
	s.histSel = 0
	if err := s.m.OpenHistory(s.ctx); err != nil {
		s.loadErr = err.Error()
	}
}

func (s *Screen) historyKey(key string) tea.Cmd {
	results := s.m.History()
	switch key {
	case "esc":
		s.m.CloseHistory()
		if s.historyOnly {
			return router.Back()
		}
		return s.input.Init()
	case "up", "k":
		if s.histSel > 0 {
			s.histSel--
		}
	case "down", "j":
		if s.histSel < len(results)-1 {
			s.histSel++
		}
	case "enter":
		if s.histSel < len(results) {
			if err := s.m.Review(results[s.histSel].ID); err == nil {
				s.scroll = 0
			}
		}
	}
	return nil
}

func (s *Screen) reviewKey(key string) {
	switch key {
	case "esc":
		s.m.BackToHistory()
	case "up", "k":
		if s.scroll > 0 {
			s.scroll--
		}
	case "down", "j":
		s.scroll++
	}
}

// fetchError turns a failed start request into the message shown under the
// topic field.
func fetchError(err error) string {
	var malformed *exam.MalformedError
	if errors.As(err, &malformed) {
		return i18n.T("ErrMalformed")
	}
	return i18n.Td("ErrFetchFailed", map[string]any{"Error": err})
}
