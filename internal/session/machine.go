package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/examiz/internal/clock"
	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/history"
)

// QuestionProvider fetches the question set for one session.
type QuestionProvider interface {
	FetchQuestions(ctx context.Context, topic string, grade exam.Grade) ([]exam.Question, error)
}

// QuestionsReady carries a provider result back into the machine. Token
// identifies the start request it answers.
type QuestionsReady struct {
	Token     uint64
	Questions []exam.Question
	Err       error
}

// Advance ends the pacing delay after a graded answer.
type Advance struct {
	Gen uint64
}

// Fetch performs the provider call for a start request. It blocks, so the
// caller runs it off the event loop and feeds the result to Handle.
type Fetch func(ctx context.Context) QuestionsReady

// Options wires a Machine to its collaborators.
type Options struct {
	Provider  QuestionProvider
	History   *history.Store
	Scheduler clock.Scheduler
	Settings  Settings

	// OnComplete receives the reward and topic once per completed exam,
	// after the result is persisted.
	OnComplete func(reward int, topic string)

	Now    func() time.Time
	NewID  func() string
	Logger *slog.Logger
}

// run is the in-memory state of one exam.
type run struct {
	questions []exam.Question
	answers   []exam.Answer
	logged    []bool
	index     int
	score     int
	pending   int
	paused    bool
	countdown *clock.Countdown
}

// Machine is the exam state machine. Every mutation happens through its
// methods on a single goroutine; it does no locking.
type Machine struct {
	opts     Options
	settings Settings
	log      *slog.Logger

	state  State
	config exam.Config
	err    error

	token      uint64
	advanceGen uint64
	cancelAdv  func()

	run       *run
	result    *exam.Result
	history   []exam.Result
	reviewing *exam.Result
}

// New creates a Machine in StateSetup.
func New(opts Options) *Machine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Machine{
		opts:     opts,
		settings: opts.Settings.WithDefaults(),
		log:      log,
		config:   exam.Config{Topic: exam.DefaultTopic, Grade: exam.DefaultGrade},
	}
}

func (m *Machine) setState(s State) {
	if m.state != s {
		m.log.Debug("exam state", "from", m.state.String(), "to", s.String())
	}
	m.state = s
}

// Start validates cfg and moves to StateGenerating. The returned Fetch must
// be run and its result passed to Handle. An invalid config leaves the
// machine untouched.
func (m *Machine) Start(cfg exam.Config) (Fetch, error) {
	switch m.state {
	case StateSetup:
	case StateGenerating, StateActive, StateGrading:
		return nil, ErrBusy
	default:
		return nil, ErrInvalidState
	}
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}

	m.token++
	token := m.token
	m.config = cfg
	m.err = nil
	m.setState(StateGenerating)

	provider := m.opts.Provider
	return func(ctx context.Context) QuestionsReady {
		qs, err := provider.FetchQuestions(ctx, cfg.Topic, cfg.Grade)
		return QuestionsReady{Token: token, Questions: qs, Err: err}
	}, nil
}

// Handle applies an asynchronous event: QuestionsReady, clock.Tick or
// Advance. It reports whether the event was accepted; stale events are
// dropped and return false.
func (m *Machine) Handle(ctx context.Context, ev any) bool {
	switch ev := ev.(type) {
	case QuestionsReady:
		return m.questionsReady(ev)
	case clock.Tick:
		return m.tick(ev)
	case Advance:
		return m.advance(ctx, ev)
	}
	return false
}

func (m *Machine) questionsReady(ev QuestionsReady) bool {
	if m.state != StateGenerating || ev.Token != m.token {
		m.log.Debug("dropping stale question set", "token", ev.Token, "current", m.token)
		return false
	}

	if ev.Err != nil {
		if !exam.IsFetchFailure(ev.Err) {
			ev.Err = &exam.ProviderError{Err: ev.Err}
		}
		return m.fail(ev.Err)
	}
	if err := exam.ValidateQuestions(ev.Questions); err != nil {
		return m.fail(err)
	}

	n := len(ev.Questions)
	m.run = &run{
		questions: exam.CloneQuestions(ev.Questions),
		answers:   make([]exam.Answer, n),
		logged:    make([]bool, n),
		pending:   -1,
		countdown: clock.NewCountdown(m.opts.Scheduler, m.settings.SecondsPerQuestion, m.settings.Tick),
	}
	m.setState(StateActive)
	m.run.countdown.Start()
	return true
}

func (m *Machine) fail(err error) bool {
	m.log.Warn("question fetch failed", "topic", m.config.Topic, "grade", string(m.config.Grade), "error", err)
	m.err = err
	m.setState(StateSetup)
	return true
}

func (m *Machine) tick(t clock.Tick) bool {
	if m.run == nil || m.state != StateActive {
		return false
	}
	cd := m.run.countdown
	before := cd.Remaining()
	if cd.Handle(t) {
		return m.grade(exam.NoAnswer)
	}
	return cd.Remaining() != before
}

// Highlight sets the pending selection for the current question without
// logging it. It returns false when selection is not allowed.
func (m *Machine) Highlight(option int) bool {
	if !m.canSubmit() || option < 0 || option >= len(m.run.questions[m.run.index].Options) {
		return false
	}
	m.run.pending = option
	return true
}

// Submit grades the pending selection.
func (m *Machine) Submit() bool {
	if !m.canSubmit() || m.run.pending < 0 {
		return false
	}
	q := m.run.questions[m.run.index]
	return m.grade(exam.Chose(q.Options[m.run.pending]))
}

// Choose highlights option and submits it in one step.
func (m *Machine) Choose(option int) bool {
	return m.Highlight(option) && m.Submit()
}

func (m *Machine) canSubmit() bool {
	return m.state == StateActive && m.run != nil && !m.run.paused && !m.run.logged[m.run.index]
}

// grade logs a for the current question. Only the first call per index
// takes effect.
func (m *Machine) grade(a exam.Answer) bool {
	if !m.canSubmit() {
		return false
	}
	r := m.run
	r.countdown.Stop()
	r.answers[r.index] = a
	r.logged[r.index] = true
	if r.questions[r.index].IsCorrect(a) {
		r.score++
	}
	m.setState(StateGrading)

	m.advanceGen++
	m.cancelAdv = m.opts.Scheduler.After(m.settings.Pacing, Advance{Gen: m.advanceGen})
	return true
}

func (m *Machine) advance(ctx context.Context, ev Advance) bool {
	if m.state != StateGrading || ev.Gen != m.advanceGen {
		return false
	}
	m.cancelAdv = nil
	r := m.run
	if r.index+1 < len(r.questions) {
		r.index++
		r.pending = -1
		r.paused = false
		m.setState(StateActive)
		r.countdown.Start()
		return true
	}
	m.complete(ctx)
	return true
}

func (m *Machine) complete(ctx context.Context) {
	r := m.run
	answers := make([]exam.Answer, len(r.answers))
	copy(answers, r.answers)
	result := exam.Result{
		ID:        m.opts.NewID(),
		Topic:     m.config.Topic,
		Grade:     m.config.Grade,
		Score:     r.score,
		Total:     len(r.questions),
		Timestamp: m.opts.Now(),
		Questions: exam.CloneQuestions(r.questions),
		Answers:   answers,
	}
	m.result = &result
	m.setState(StateCompleted)

	if m.opts.History != nil {
		if list, err := m.opts.History.Append(ctx, result); err != nil {
			m.log.Warn("persist exam result", "id", result.ID, "error", err)
		} else {
			m.history = list
		}
	}
	m.log.Info("exam completed", "id", result.ID, "topic", result.Topic, "score", result.Score, "total", result.Total)

	if m.opts.OnComplete != nil {
		m.opts.OnComplete(result.Score*m.settings.RewardPerCorrect, result.Topic)
	}
}

// SetPaused freezes or resumes the current question. Only an unanswered
// active question can be paused.
func (m *Machine) SetPaused(paused bool) bool {
	if m.state != StateActive || m.run == nil || m.run.paused == paused {
		return false
	}
	if paused {
		if !m.run.countdown.Pause() {
			return false
		}
	} else if !m.run.countdown.Resume() {
		return false
	}
	m.run.paused = paused
	return true
}

// TogglePause flips the pause flag.
func (m *Machine) TogglePause() bool {
	return m.SetPaused(!m.Paused())
}

// Abandon drops the pending request or the running exam and returns to
// StateSetup. Nothing is persisted and no reward is emitted.
func (m *Machine) Abandon() bool {
	switch m.state {
	case StateGenerating, StateActive, StateGrading:
	default:
		return false
	}
	m.token++
	m.stopRun()
	m.setState(StateSetup)
	return true
}

func (m *Machine) stopRun() {
	if m.run != nil {
		m.run.countdown.Stop()
	}
	if m.cancelAdv != nil {
		m.cancelAdv()
		m.cancelAdv = nil
	}
	m.advanceGen++
	m.run = nil
}

// NewSession leaves StateCompleted and discards the finished exam.
func (m *Machine) NewSession() bool {
	if m.state != StateCompleted {
		return false
	}
	m.stopRun()
	m.result = nil
	m.err = nil
	m.setState(StateSetup)
	return true
}

// OpenHistory loads stored results and shows them.
func (m *Machine) OpenHistory(ctx context.Context) error {
	if m.state != StateSetup {
		return ErrInvalidState
	}
	if m.opts.History != nil {
		list, err := m.opts.History.Load(ctx)
		if err != nil {
			return err
		}
		m.history = list
	}
	m.setState(StateHistory)
	return nil
}

// CloseHistory returns to setup.
func (m *Machine) CloseHistory() bool {
	if m.state != StateHistory {
		return false
	}
	m.setState(StateSetup)
	return true
}

// Review opens the stored result with the given id.
func (m *Machine) Review(id string) error {
	if m.state != StateHistory {
		return ErrInvalidState
	}
	for _, r := range m.history {
		if r.ID == id {
			c := r.Clone()
			m.reviewing = &c
			m.setState(StateReviewing)
			return nil
		}
	}
	return history.ErrNotFound
}

// BackToHistory leaves a review.
func (m *Machine) BackToHistory() bool {
	if m.state != StateReviewing {
		return false
	}
	m.reviewing = nil
	m.setState(StateHistory)
	return true
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Config returns the configuration of the latest start request, or the
// defaults before any.
func (m *Machine) Config() exam.Config { return m.config }

// Err returns the failure of the latest start request.
func (m *Machine) Err() error { return m.err }

// Settings returns the effective exam constants.
func (m *Machine) Settings() Settings { return m.settings }

// Current returns the question on screen.
func (m *Machine) Current() (exam.Question, bool) {
	if m.run == nil {
		return exam.Question{}, false
	}
	return m.run.questions[m.run.index], true
}

// Index returns the zero-based index of the current question.
func (m *Machine) Index() int {
	if m.run == nil {
		return 0
	}
	return m.run.index
}

// Total returns the number of questions in the running exam.
func (m *Machine) Total() int {
	if m.run == nil {
		return 0
	}
	return len(m.run.questions)
}

// Score returns the running score.
func (m *Machine) Score() int {
	if m.run == nil {
		return 0
	}
	return m.run.score
}

// Remaining returns the ticks left on the current question.
func (m *Machine) Remaining() int {
	if m.run == nil {
		return 0
	}
	return m.run.countdown.Remaining()
}

// TimeFraction returns the remaining share of the current countdown.
func (m *Machine) TimeFraction() float64 {
	if m.run == nil {
		return 0
	}
	return m.run.countdown.Fraction()
}

// Pending returns the highlighted option, or -1.
func (m *Machine) Pending() int {
	if m.run == nil {
		return -1
	}
	return m.run.pending
}

// Paused reports whether the current question is paused.
func (m *Machine) Paused() bool {
	return m.run != nil && m.run.paused
}

// Answer returns the logged answer for question i and whether one exists.
func (m *Machine) Answer(i int) (exam.Answer, bool) {
	if m.run == nil || i < 0 || i >= len(m.run.answers) {
		return exam.NoAnswer, false
	}
	return m.run.answers[i], m.run.logged[i]
}

// Result returns the completed exam's result.
func (m *Machine) Result() (exam.Result, bool) {
	if m.result == nil {
		return exam.Result{}, false
	}
	return m.result.Clone(), true
}

// Reward returns the reward for the completed exam.
func (m *Machine) Reward() int {
	if m.result == nil {
		return 0
	}
	return m.result.Score * m.settings.RewardPerCorrect
}

// History returns the loaded results, newest first.
func (m *Machine) History() []exam.Result { return m.history }

// Reviewing returns the result being reviewed.
func (m *Machine) Reviewing() (exam.Result, bool) {
	if m.reviewing == nil {
		return exam.Result{}, false
	}
	return *m.reviewing, true
}
