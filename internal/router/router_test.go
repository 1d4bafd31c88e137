package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examiz/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func TestPush(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPop(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active().Title() != "first" {
		t.Errorf("expected active 'first', got %q", r.Active().Title())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
}

func TestNavigationCommands(t *testing.T) {
	home := &stubScreen{title: "home"}
	r := New(home)

	exam := &stubScreen{title: "exam"}
	r.Update(Open(exam)())
	if r.Active() != exam || !exam.initRan {
		t.Fatalf("expected Open to push and init the exam screen")
	}

	r.Update(Back()())
	if r.Active() != home {
		t.Errorf("expected Back to return to home, got %q", r.Active().Title())
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	home := &stubScreen{title: "home"}
	r := New(home)
	top := &countingScreen{}
	r.Push(top)

	r.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	r.Update(tea.KeyPressMsg{Code: 'y', Text: "y"})

	if top.updates != 2 {
		t.Errorf("expected 2 updates on the active screen, got %d", top.updates)
	}
	if got := r.View(80, 24); got != "counting" {
		t.Errorf("expected active view, got %q", got)
	}
}

type countingScreen struct {
	stubScreen
	updates int
}

func (s *countingScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) {
	s.updates++
	return s, nil
}
func (s *countingScreen) View(int, int) string { return "counting" }

type resumingScreen struct {
	stubScreen
	resumed int
}

func (s *resumingScreen) Resume() tea.Cmd {
	s.resumed++
	return nil
}

func TestPopResumesScreenBelow(t *testing.T) {
	home := &resumingScreen{stubScreen: stubScreen{title: "home"}}
	r := New(home)
	r.Push(&stubScreen{title: "exam"})
	r.Update(PopScreenMsg{})

	if home.resumed != 1 {
		t.Errorf("expected Resume to run once, got %d", home.resumed)
	}
	r.Pop()
	if home.resumed != 1 {
		t.Errorf("pop at bottom must not resume, got %d", home.resumed)
	}
}
