// Package progress keeps the learner's XP total and recent activity feed.
// It consumes the exam completion callback.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Key is the storage key holding the ledger.
const Key = "edu_user_progress"

// MaxActivities bounds the activity feed.
const MaxActivities = 10

// KindExam labels activities produced by completed exams.
const KindExam = "exam"

// KV is the persistence boundary, shared in shape with the history store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Activity is one entry in the feed.
type Activity struct {
	Label string    `json:"label"`
	XP    int       `json:"xp"`
	At    time.Time `json:"date"`
	Kind  string    `json:"type"`
}

// Snapshot is the ledger state.
type Snapshot struct {
	XP         int        `json:"xp"`
	Activities []Activity `json:"activities"`
}

// Level derives a display level from XP: one level per 1000 XP, starting
// at 1.
func (s Snapshot) Level() int {
	return s.XP/1000 + 1
}

// Ledger reads and updates the snapshot.
type Ledger struct {
	kv  KV
	now func() time.Time
	log *slog.Logger
}

// NewLedger creates a Ledger. A nil now uses time.Now.
func NewLedger(kv KV, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{kv: kv, now: now, log: slog.Default()}
}

// Load returns the current snapshot. Unreadable data yields an empty
// snapshot.
func (l *Ledger) Load(ctx context.Context) (Snapshot, error) {
	raw, err := l.kv.Get(ctx, Key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read progress: %w", err)
	}
	if len(raw) == 0 {
		return Snapshot{}, nil
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		l.log.Warn("progress unreadable, starting fresh", "error", err)
		return Snapshot{}, nil
	}
	return s, nil
}

// Award adds xp and prepends an activity labelled label.
func (l *Ledger) Award(ctx context.Context, xp int, label, kind string) (Snapshot, error) {
	s, err := l.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	s.XP += xp
	act := Activity{Label: label, XP: xp, At: l.now(), Kind: kind}
	s.Activities = append([]Activity{act}, s.Activities...)
	if len(s.Activities) > MaxActivities {
		s.Activities = s.Activities[:MaxActivities]
	}

	data, err := json.Marshal(s)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode progress: %w", err)
	}
	if err := l.kv.Put(ctx, Key, data); err != nil {
		return Snapshot{}, fmt.Errorf("write progress: %w", err)
	}
	return s, nil
}

// OnExamComplete returns a completion callback that awards the reward for
// a finished exam.
func (l *Ledger) OnExamComplete(ctx context.Context) func(reward int, topic string) {
	return func(reward int, topic string) {
		if _, err := l.Award(ctx, reward, topic+" Exam", KindExam); err != nil {
			l.log.Warn("award exam xp", "topic", topic, "error", err)
		}
	}
}
