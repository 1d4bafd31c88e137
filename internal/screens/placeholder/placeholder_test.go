package placeholder

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examiz/internal/router"
)

func TestPlaceholder_ViewAndClose(t *testing.T) {
	p := New("Setup required", "No provider.")
	if !strings.Contains(p.View(80, 20), "No provider.") {
		t.Error("expected message in view")
	}

	_, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
