// Package clock provides the per-question countdown and the scheduling
// capability it runs on. Time is injected so tests can drive it
// deterministically.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Scheduler delivers ev once after d. The returned func cancels a delivery
// that has not happened yet. A delivery already in flight may still arrive
// after cancel, so receivers must tolerate stale events.
type Scheduler interface {
	After(d time.Duration, ev any) (cancel func())
}

// Real schedules on wall-clock timers and hands due events to a sink,
// typically tea.Program.Send.
type Real struct {
	mu   sync.RWMutex
	sink func(any)
}

// NewReal creates a Real scheduler. The sink may be set later with SetSink
// when it only exists once the program has been built.
func NewReal(sink func(any)) *Real {
	return &Real{sink: sink}
}

// SetSink replaces the delivery function.
func (r *Real) SetSink(sink func(any)) {
	r.mu.Lock()
	r.sink = sink
	r.mu.Unlock()
}

func (r *Real) After(d time.Duration, ev any) func() {
	t := time.AfterFunc(d, func() {
		r.mu.RLock()
		sink := r.sink
		r.mu.RUnlock()
		if sink != nil {
			sink(ev)
		}
	})
	return func() { t.Stop() }
}

type pending struct {
	at       time.Duration
	seq      int
	ev       any
	canceled bool
}

// Virtual is a deterministic Scheduler. Nothing is delivered until the test
// advances time with Run.
type Virtual struct {
	now   time.Duration
	seq   int
	queue []*pending
}

// NewVirtual returns a Virtual scheduler at time zero.
func NewVirtual() *Virtual {
	return &Virtual{}
}

func (v *Virtual) After(d time.Duration, ev any) func() {
	v.seq++
	p := &pending{at: v.now + d, seq: v.seq, ev: ev}
	v.queue = append(v.queue, p)
	return func() { p.canceled = true }
}

// Now returns the virtual time elapsed since creation.
func (v *Virtual) Now() time.Duration { return v.now }

// Pending returns the number of live scheduled events.
func (v *Virtual) Pending() int {
	n := 0
	for _, p := range v.queue {
		if !p.canceled {
			n++
		}
	}
	return n
}

// Run advances virtual time by d, delivering every event that falls due in
// order. Events scheduled by deliver itself are honored if they fall inside
// the window.
func (v *Virtual) Run(d time.Duration, deliver func(any)) {
	end := v.now + d
	for {
		p := v.next(end)
		if p == nil {
			break
		}
		v.now = p.at
		deliver(p.ev)
	}
	v.now = end
}

func (v *Virtual) next(end time.Duration) *pending {
	live := v.queue[:0]
	for _, p := range v.queue {
		if !p.canceled {
			live = append(live, p)
		}
	}
	v.queue = live
	if len(v.queue) == 0 {
		return nil
	}
	sort.SliceStable(v.queue, func(i, j int) bool {
		if v.queue[i].at != v.queue[j].at {
			return v.queue[i].at < v.queue[j].at
		}
		return v.queue[i].seq < v.queue[j].seq
	})
	p := v.queue[0]
	if p.at > end {
		return nil
	}
	v.queue = v.queue[1:]
	return p
}
