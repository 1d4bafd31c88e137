package app

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examiz/internal/clock"
	"github.com/abhisek/examiz/internal/history"
	"github.com/abhisek/examiz/internal/progress"
	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screen"
	"github.com/abhisek/examiz/internal/store"
)

func testModel(t *testing.T) (AppModel, *progress.Ledger) {
	t.Helper()
	kv := store.NewMemoryKV()
	ledger := progress.NewLedger(kv, nil)
	m := newAppModel(context.Background(), Options{
		History: history.New(kv),
		Ledger:  ledger,
	}, clock.NewVirtual())
	return m, ledger
}

func TestApp_CtrlCQuits(t *testing.T) {
	m, _ := testModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}

func TestApp_ProgressChangedRefreshesHeader(t *testing.T) {
	m, ledger := testModel(t)
	if _, err := ledger.Award(context.Background(), 1200, "Algebra Exam", progress.KindExam); err != nil {
		t.Fatal(err)
	}

	updated, _ := m.Update(screen.ProgressChangedMsg{})
	am := updated.(AppModel)
	if am.snap.XP != 1200 || am.snap.Level() != 2 {
		t.Errorf("snap = %+v, want 1200 XP at level 2", am.snap)
	}
}

func TestApp_FooterUsesScreenHints(t *testing.T) {
	m, _ := testModel(t)
	home := m.footerHints(m.router.Active())
	if len(home) != 3 {
		t.Fatalf("home hints = %d, want 3", len(home))
	}

	// The history item opens the exam screen, which supplies its own hints.
	updated, cmd := m.Update(tea.KeyPressMsg{Code: '2', Text: "2"})
	am := updated.(AppModel)
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	updated, _ = am.Update(push)
	am = updated.(AppModel)

	if am.router.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", am.router.Depth())
	}
	hints := am.footerHints(am.router.Active())
	if hints[len(hints)-1].Key != "Ctrl+C" {
		t.Error("expected Ctrl+C hint last")
	}
}

func TestApp_WindowSize(t *testing.T) {
	m, _ := testModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	am := updated.(AppModel)
	if am.width != 100 || am.height != 30 {
		t.Errorf("size = %dx%d", am.width, am.height)
	}
	_ = am.View()
}
