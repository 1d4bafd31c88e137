// Package router keeps the stack of screens the TUI navigates through.
package router

import (
	"github.com/abhisek/examiz/internal/screen"

	tea "charm.land/bubbletea/v2"
)

// PushScreenMsg asks the router to open Screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg asks the router to close the current screen.
type PopScreenMsg struct{}

// Open returns a command that pushes s.
func Open(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return PushScreenMsg{Screen: s} }
}

// Back returns a command that pops the current screen.
func Back() tea.Cmd {
	return func() tea.Msg { return PopScreenMsg{} }
}

// Router owns the screen stack. The bottom screen is never popped.
type Router struct {
	stack []screen.Screen
}

// New returns a router rooted at home.
func New(home screen.Screen) *Router {
	return &Router{stack: []screen.Screen{home}}
}

// Push opens s and returns its Init command.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes the top screen and resumes the one it uncovers.
func (r *Router) Pop() tea.Cmd {
	n := len(r.stack)
	if n <= 1 {
		return nil
	}
	r.stack[n-1] = nil
	r.stack = r.stack[:n-1]
	if res, ok := r.Active().(screen.Resumer); ok {
		return res.Resume()
	}
	return nil
}

// Active is the screen receiving input.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int { return len(r.stack) }

// Update applies navigation messages; anything else goes to the active
// screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	}

	top := r.Active()
	if top == nil {
		return nil
	}
	next, cmd := top.Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

// View renders the active screen into the given area.
func (r *Router) View(width, height int) string {
	top := r.Active()
	if top == nil {
		return ""
	}
	return top.View(width, height)
}
