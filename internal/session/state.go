// Package session implements the exam state machine: setup, question
// generation, the timed question loop, completion and the history/review
// side branches.
package session

import (
	"errors"
	"time"
)

// State is the machine's current view state.
type State int

const (
	StateSetup      State = iota // Choosing topic and grade
	StateGenerating              // Waiting for the question provider
	StateActive                  // Question on screen, clock running
	StateGrading                 // Answer logged, pacing delay running
	StateCompleted               // Result persisted, score on screen
	StateHistory                 // Browsing stored results
	StateReviewing               // Replaying one stored result
)

var stateNames = [...]string{
	StateSetup:      "setup",
	StateGenerating: "generating",
	StateActive:     "active",
	StateGrading:    "grading",
	StateCompleted:  "completed",
	StateHistory:    "history",
	StateReviewing:  "reviewing",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

var (
	// ErrBusy is returned when a start request arrives while a session is
	// being generated or is running.
	ErrBusy = errors.New("exam already in progress")

	// ErrInvalidState is returned by history and review requests made from
	// a state that does not allow them.
	ErrInvalidState = errors.New("not allowed in current state")
)

// Settings holds the tunable exam constants.
type Settings struct {
	// SecondsPerQuestion is the countdown length in ticks.
	SecondsPerQuestion int

	// Tick is the countdown interval.
	Tick time.Duration

	// Pacing is how long a graded answer stays on screen before the
	// next question.
	Pacing time.Duration

	// RewardPerCorrect is multiplied by the score for the completion
	// reward.
	RewardPerCorrect int
}

// DefaultSettings returns the standard exam constants.
func DefaultSettings() Settings {
	return Settings{
		SecondsPerQuestion: 60,
		Tick:               time.Second,
		Pacing:             1500 * time.Millisecond,
		RewardPerCorrect:   40,
	}
}

// WithDefaults replaces zero and negative values with the defaults.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.SecondsPerQuestion <= 0 {
		s.SecondsPerQuestion = d.SecondsPerQuestion
	}
	if s.Tick <= 0 {
		s.Tick = d.Tick
	}
	if s.Pacing <= 0 {
		s.Pacing = d.Pacing
	}
	if s.RewardPerCorrect <= 0 {
		s.RewardPerCorrect = d.RewardPerCorrect
	}
	return s
}
