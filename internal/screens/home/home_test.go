package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examiz/internal/clock"
	"github.com/abhisek/examiz/internal/progress"
	"github.com/abhisek/examiz/internal/router"
	examscreen "github.com/abhisek/examiz/internal/screens/exam"
	"github.com/abhisek/examiz/internal/screens/placeholder"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/store"
)

func testHome(t *testing.T, ready bool) (*HomeScreen, *progress.Ledger) {
	t.Helper()
	ledger := progress.NewLedger(store.NewMemoryKV(), nil)
	m := session.New(session.Options{Scheduler: clock.NewVirtual()})
	return New(context.Background(), Options{Machine: m, Ledger: ledger, ProviderReady: ready}), ledger
}

func pushed(t *testing.T, cmd tea.Cmd) any {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	return msg.Screen
}

func TestHome_StartExamPushesExamScreen(t *testing.T) {
	h, _ := testHome(t, true)
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := pushed(t, cmd).(*examscreen.Screen); !ok {
		t.Error("expected exam screen")
	}
}

func TestHome_StartWithoutProviderShowsNotice(t *testing.T) {
	h, _ := testHome(t, false)
	_, cmd := h.Update(tea.KeyPressMsg{Code: '1', Text: "1"})
	if _, ok := pushed(t, cmd).(*placeholder.PlaceholderScreen); !ok {
		t.Error("expected provider notice")
	}
}

func TestHome_HistoryItem(t *testing.T) {
	h, _ := testHome(t, false)
	_, cmd := h.Update(tea.KeyPressMsg{Code: '2', Text: "2"})
	if _, ok := pushed(t, cmd).(*examscreen.Screen); !ok {
		t.Error("expected history to open without a provider")
	}
}

func TestHome_ResumeReloadsProgress(t *testing.T) {
	h, ledger := testHome(t, true)
	if h.Snapshot().XP != 0 {
		t.Fatalf("xp = %d, want 0", h.Snapshot().XP)
	}

	if _, err := ledger.Award(context.Background(), 160, "Fractions Exam", progress.KindExam); err != nil {
		t.Fatal(err)
	}
	h.Resume()

	if h.Snapshot().XP != 160 {
		t.Errorf("xp = %d, want 160", h.Snapshot().XP)
	}
	if view := h.View(120, 40); !strings.Contains(view, "Fractions Exam") {
		t.Error("expected recent activity in view")
	}
}

func TestHome_Title(t *testing.T) {
	h, _ := testHome(t, true)
	if h.Title() != "Home" {
		t.Errorf("Title = %q, want Home", h.Title())
	}
}
