package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/examiz/internal/clock"
	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/history"
	"github.com/abhisek/examiz/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns queued results in order, then repeats the last.
type fakeProvider struct {
	results []QuestionsReady
	calls   int
}

func (p *fakeProvider) FetchQuestions(_ context.Context, _ string, _ exam.Grade) ([]exam.Question, error) {
	i := p.calls
	if i >= len(p.results) {
		i = len(p.results) - 1
	}
	p.calls++
	return p.results[i].Questions, p.results[i].Err
}

func questions(n int) []exam.Question {
	qs := make([]exam.Question, n)
	for i := range qs {
		qs[i] = exam.Question{
			Text:        fmt.Sprintf("Q%d", i+1),
			Options:     []string{"right", "wrong1", "wrong2", "wrong3"},
			Correct:     "right",
			Explanation: "it is right",
		}
	}
	return qs
}

// recordingScheduler keeps every scheduled event so tests can replay
// deliveries that a real timer might still have in flight.
type recordingScheduler struct {
	*clock.Virtual
	events []any
}

func (r *recordingScheduler) After(d time.Duration, ev any) func() {
	r.events = append(r.events, ev)
	return r.Virtual.After(d, ev)
}

type reward struct {
	units int
	topic string
}

type harness struct {
	t       *testing.T
	m       *Machine
	sched   *recordingScheduler
	kv      history.KV
	hist    *history.Store
	rewards []reward
}

func newHarness(t *testing.T, p QuestionProvider) *harness {
	return newHarnessKV(t, p, store.NewMemoryKV())
}

func newHarnessKV(t *testing.T, p QuestionProvider, kv history.KV) *harness {
	h := &harness{t: t, sched: &recordingScheduler{Virtual: clock.NewVirtual()}, kv: kv}
	h.hist = history.New(kv)
	ids := 0
	h.m = New(Options{
		Provider:  p,
		History:   h.hist,
		Scheduler: h.sched,
		OnComplete: func(units int, topic string) {
			h.rewards = append(h.rewards, reward{units, topic})
		},
		Now: func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		NewID: func() string {
			ids++
			return fmt.Sprintf("exam-%d", ids)
		},
	})
	return h
}

func (h *harness) run(d time.Duration) {
	h.sched.Run(d, func(ev any) { h.m.Handle(context.Background(), ev) })
}

func (h *harness) start(topic string) {
	h.t.Helper()
	fetch, err := h.m.Start(exam.Config{Topic: topic, Grade: "Class 9"})
	require.NoError(h.t, err)
	require.Equal(h.t, StateGenerating, h.m.State())
	h.m.Handle(context.Background(), fetch(context.Background()))
}

func (h *harness) pace() { h.run(h.m.Settings().Pacing) }

func (h *harness) timeout() { h.run(time.Duration(h.m.Settings().SecondsPerQuestion) * h.m.Settings().Tick) }

func serving(qs []exam.Question) *fakeProvider {
	return &fakeProvider{results: []QuestionsReady{{Questions: qs}}}
}

func TestScenarioA_MixedAnswersAndTimeout(t *testing.T) {
	h := newHarness(t, serving(questions(5)))
	h.start("Algebra")
	require.Equal(t, StateActive, h.m.State())
	assert.Equal(t, 0, h.m.Index())
	assert.Equal(t, 60, h.m.Remaining())

	// correct, correct, wrong, correct, timeout
	for _, opt := range []int{0, 0, 1, 0} {
		require.True(t, h.m.Choose(opt))
		require.Equal(t, StateGrading, h.m.State())
		h.pace()
		require.Equal(t, StateActive, h.m.State())
	}
	h.timeout()
	require.Equal(t, StateGrading, h.m.State())
	a, logged := h.m.Answer(4)
	assert.True(t, logged)
	assert.Equal(t, exam.NoAnswer, a)
	h.pace()

	require.Equal(t, StateCompleted, h.m.State())
	res, ok := h.m.Result()
	require.True(t, ok)
	assert.Equal(t, 3, res.Score)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, "exam-1", res.ID)
	assert.Equal(t, exam.Grade("Class 9"), res.Grade)
	assert.Equal(t, []reward{{120, "Algebra"}}, h.rewards)
	assert.Equal(t, 120, h.m.Reward())

	stored, err := h.hist.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 5, stored[0].Total)
	assert.Equal(t, 3, stored[0].Score)
	assert.Equal(t, exam.NoAnswer, stored[0].Answers[4])
	assert.Equal(t, exam.Chose("wrong1"), stored[0].Answers[2])
	assert.Zero(t, h.sched.Pending())
}

func TestScenarioB_ProviderFailureThenRetry(t *testing.T) {
	p := &fakeProvider{results: []QuestionsReady{
		{Err: errors.New("service unavailable")},
		{Questions: questions(5)},
	}}
	h := newHarness(t, p)
	h.start("Algebra")

	assert.Equal(t, StateSetup, h.m.State())
	var pe *exam.ProviderError
	require.ErrorAs(t, h.m.Err(), &pe)
	stored, err := h.hist.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, h.rewards)

	h.start("Algebra")
	assert.Equal(t, StateActive, h.m.State())
	assert.NoError(t, h.m.Err())
	assert.Equal(t, 2, p.calls)
}

func TestScenarioC_ReviewUsesStoredSnapshot(t *testing.T) {
	p := serving(questions(5))
	h := newHarness(t, p)
	h.start("Geometry")
	for _, opt := range []int{0, 0, 0, 0, 2} {
		require.True(t, h.m.Choose(opt))
		h.pace()
	}
	require.Equal(t, StateCompleted, h.m.State())
	require.True(t, h.m.NewSession())

	// Later provider output must not leak into the review.
	p.results[0].Questions[0].Options[0] = "changed"

	require.NoError(t, h.m.OpenHistory(context.Background()))
	require.Len(t, h.m.History(), 1)
	require.NoError(t, h.m.Review("exam-1"))
	assert.Equal(t, StateReviewing, h.m.State())

	r, ok := h.m.Reviewing()
	require.True(t, ok)
	assert.Equal(t, 4, r.Score)
	items := exam.Review(r)
	require.Len(t, items, 5)
	assert.Equal(t, "right", items[0].Question.Options[0])
	assert.Equal(t, []exam.Mark{exam.MarkCorrect, exam.MarkNeutral, exam.MarkNeutral, exam.MarkNeutral}, items[0].OptionMarks)
	assert.Equal(t, []exam.Mark{exam.MarkCorrect, exam.MarkNeutral, exam.MarkWrongPick, exam.MarkNeutral}, items[4].OptionMarks)

	assert.True(t, h.m.BackToHistory())
	assert.True(t, h.m.CloseHistory())
	assert.Equal(t, StateSetup, h.m.State())
}

func TestScenarioD_ReselectThenTimeout(t *testing.T) {
	h := newHarness(t, serving(questions(2)))
	h.start("Algebra")

	require.True(t, h.m.Highlight(1))
	require.True(t, h.m.Highlight(0))
	assert.Equal(t, 0, h.m.Pending())
	_, logged := h.m.Answer(0)
	assert.False(t, logged, "highlighting must not log an answer")

	h.timeout()
	a, logged := h.m.Answer(0)
	require.True(t, logged)
	assert.Equal(t, exam.NoAnswer, a)
	assert.Equal(t, 0, h.m.Score())

	assert.False(t, h.m.Submit(), "confirm after timeout is ignored")
	a, _ = h.m.Answer(0)
	assert.Equal(t, exam.NoAnswer, a)
}

func TestWriteOnceAnswers(t *testing.T) {
	h := newHarness(t, serving(questions(2)))
	h.start("Algebra")

	require.True(t, h.m.Choose(1))
	assert.False(t, h.m.Choose(0))
	assert.False(t, h.m.Highlight(0))
	assert.False(t, h.m.Submit())

	a, _ := h.m.Answer(0)
	assert.Equal(t, exam.Chose("wrong1"), a)
	assert.Equal(t, 0, h.m.Score())
}

func TestClockExclusivity(t *testing.T) {
	h := newHarness(t, serving(questions(2)))
	h.start("Algebra")
	h.run(3 * time.Second)
	require.True(t, h.m.Choose(0))

	// Replay every tick ever scheduled, as if still in flight.
	for _, ev := range h.sched.events {
		if tick, isTick := ev.(clock.Tick); isTick {
			assert.False(t, h.m.Handle(context.Background(), tick))
		}
	}
	a, _ := h.m.Answer(0)
	assert.Equal(t, exam.Chose("right"), a)
	assert.Equal(t, 1, h.m.Score())
	assert.Equal(t, StateGrading, h.m.State())

	// The advance starts the next question on a full countdown.
	h.pace()
	require.Equal(t, StateActive, h.m.State())
	assert.Equal(t, 1, h.m.Index())
	assert.Equal(t, 60, h.m.Remaining())
}

func TestStaleAdvanceIgnored(t *testing.T) {
	h := newHarness(t, serving(questions(3)))
	h.start("Algebra")
	require.True(t, h.m.Choose(0))
	h.pace()
	require.Equal(t, 1, h.m.Index())

	for _, ev := range h.sched.events {
		if adv, isAdv := ev.(Advance); isAdv {
			assert.False(t, h.m.Handle(context.Background(), adv))
		}
	}
	assert.Equal(t, 1, h.m.Index())
	assert.Equal(t, StateActive, h.m.State())
}

func TestScoreInvariant_AllActionCombinations(t *testing.T) {
	const n = 4
	combos := 1
	for i := 0; i < n; i++ {
		combos *= 3
	}
	for c := 0; c < combos; c++ {
		h := newHarness(t, serving(questions(n)))
		h.start("Algebra")
		want := 0
		code := c
		for i := 0; i < n; i++ {
			switch code % 3 {
			case 0:
				require.True(t, h.m.Choose(0))
				want++
			case 1:
				require.True(t, h.m.Choose(3))
			case 2:
				h.timeout()
			}
			code /= 3
			h.pace()
		}
		require.Equal(t, StateCompleted, h.m.State(), "combo %d", c)
		res, _ := h.m.Result()
		assert.Equal(t, want, res.Score, "combo %d", c)
		assert.Equal(t, exam.CountCorrect(res.Questions, res.Answers), res.Score)
		assert.Len(t, res.Answers, n)
		assert.Equal(t, []reward{{want * 40, "Algebra"}}, h.rewards)
	}
}

func TestCountdownTicks(t *testing.T) {
	h := newHarness(t, serving(questions(1)))
	h.start("Algebra")
	h.run(10 * time.Second)
	assert.Equal(t, 50, h.m.Remaining())
	assert.InDelta(t, 50.0/60.0, h.m.TimeFraction(), 1e-9)
	assert.Equal(t, StateActive, h.m.State())
	h.run(49 * time.Second)
	assert.Equal(t, 1, h.m.Remaining())
	assert.Equal(t, StateActive, h.m.State())
	h.run(time.Second)
	assert.Equal(t, StateGrading, h.m.State())
}

func TestPauseFreezesClockAndSubmissions(t *testing.T) {
	h := newHarness(t, serving(questions(2)))
	h.start("Algebra")
	h.run(10 * time.Second)

	require.True(t, h.m.SetPaused(true))
	assert.True(t, h.m.Paused())
	h.run(5 * time.Minute)
	assert.Equal(t, 50, h.m.Remaining())
	assert.Equal(t, StateActive, h.m.State())
	assert.False(t, h.m.Choose(0))
	assert.False(t, h.m.Highlight(0))

	require.True(t, h.m.TogglePause())
	assert.False(t, h.m.Paused())
	h.run(20 * time.Second)
	assert.Equal(t, 30, h.m.Remaining())

	// Pause is cleared on advance.
	require.True(t, h.m.Choose(0))
	assert.False(t, h.m.SetPaused(true), "cannot pause while grading")
	h.pace()
	assert.False(t, h.m.Paused())
	assert.Equal(t, 60, h.m.Remaining())
}

func TestStartValidation(t *testing.T) {
	h := newHarness(t, serving(questions(5)))

	_, err := h.m.Start(exam.Config{Topic: "   ", Grade: "Class 9"})
	assert.ErrorIs(t, err, exam.ErrEmptyTopic)
	assert.Equal(t, StateSetup, h.m.State())

	_, err = h.m.Start(exam.Config{Topic: "Algebra", Grade: "Class 13"})
	assert.ErrorIs(t, err, exam.ErrUnknownGrade)
	assert.Equal(t, StateSetup, h.m.State())

	fetch, err := h.m.Start(exam.Config{Topic: "  Algebra ", Grade: exam.University})
	require.NoError(t, err)
	assert.Equal(t, "Algebra", h.m.Config().Topic)

	_, err = h.m.Start(exam.Config{Topic: "Other", Grade: "Class 9"})
	assert.ErrorIs(t, err, ErrBusy)

	h.m.Handle(context.Background(), fetch(context.Background()))
	_, err = h.m.Start(exam.Config{Topic: "Other", Grade: "Class 9"})
	assert.ErrorIs(t, err, ErrBusy)
}

func TestStaleProviderResponseDropped(t *testing.T) {
	h := newHarness(t, serving(questions(3)))

	first, err := h.m.Start(exam.Config{Topic: "Algebra", Grade: "Class 9"})
	require.NoError(t, err)
	require.True(t, h.m.Abandon())
	assert.Equal(t, StateSetup, h.m.State())

	// The abandoned request resolves while idle.
	assert.False(t, h.m.Handle(context.Background(), first(context.Background())))
	assert.Equal(t, StateSetup, h.m.State())

	second, err := h.m.Start(exam.Config{Topic: "Algebra", Grade: "Class 9"})
	require.NoError(t, err)
	late := first(context.Background())
	assert.False(t, h.m.Handle(context.Background(), late))
	assert.Equal(t, StateGenerating, h.m.State())

	assert.True(t, h.m.Handle(context.Background(), second(context.Background())))
	assert.Equal(t, StateActive, h.m.State())
}

func TestFewerQuestionsThanRequested(t *testing.T) {
	h := newHarness(t, serving(questions(3)))
	h.start("Algebra")
	assert.Equal(t, 3, h.m.Total())
	for i := 0; i < 3; i++ {
		require.True(t, h.m.Choose(0))
		h.pace()
	}
	res, ok := h.m.Result()
	require.True(t, ok)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Answers, 3)
}

func TestMalformedQuestionSet(t *testing.T) {
	bad := questions(2)
	bad[1].Correct = "not an option"
	tests := []struct {
		name string
		qs   []exam.Question
	}{
		{"correct missing from options", bad},
		{"empty set", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, serving(tt.qs))
			h.start("Algebra")
			assert.Equal(t, StateSetup, h.m.State())
			var me *exam.MalformedError
			assert.ErrorAs(t, h.m.Err(), &me)
			assert.Zero(t, h.sched.Pending())
		})
	}
}

func TestAbandonActiveExam(t *testing.T) {
	h := newHarness(t, serving(questions(2)))
	h.start("Algebra")
	require.True(t, h.m.Choose(0))
	require.True(t, h.m.Abandon())

	assert.Equal(t, StateSetup, h.m.State())
	assert.Zero(t, h.sched.Pending())
	h.run(time.Hour)
	assert.Equal(t, StateSetup, h.m.State())
	assert.Empty(t, h.rewards)
	stored, _ := h.hist.Load(context.Background())
	assert.Empty(t, stored)
	assert.False(t, h.m.Abandon())
}

type failingPutKV struct {
	*store.MemoryKV
}

func (failingPutKV) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestPersistenceFailureStillCompletes(t *testing.T) {
	h := newHarnessKV(t, serving(questions(1)), failingPutKV{store.NewMemoryKV()})
	h.start("Algebra")
	require.True(t, h.m.Choose(0))
	h.pace()

	assert.Equal(t, StateCompleted, h.m.State())
	assert.Equal(t, []reward{{40, "Algebra"}}, h.rewards)
}

func TestHistoryOnlyWithoutSession(t *testing.T) {
	h := newHarness(t, serving(questions(1)))
	h.start("Algebra")
	assert.ErrorIs(t, h.m.OpenHistory(context.Background()), ErrInvalidState)

	require.True(t, h.m.Choose(0))
	h.pace()
	require.Equal(t, StateCompleted, h.m.State())
	assert.ErrorIs(t, h.m.OpenHistory(context.Background()), ErrInvalidState)

	require.True(t, h.m.NewSession())
	require.NoError(t, h.m.OpenHistory(context.Background()))
	assert.ErrorIs(t, h.m.Review("missing"), history.ErrNotFound)
	assert.Equal(t, StateHistory, h.m.State())

	_, err := h.m.Start(exam.Config{Topic: "Algebra", Grade: "Class 9"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "grading", StateGrading.String())
	assert.Equal(t, "unknown", State(42).String())
}
