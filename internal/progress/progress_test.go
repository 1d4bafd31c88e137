package progress

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/examiz/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

func TestAward_AccumulatesAndCaps(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(store.NewMemoryKV(), fixedNow)

	for i := 0; i < 12; i++ {
		_, err := l.Award(ctx, 40, fmt.Sprintf("Topic %d Exam", i), KindExam)
		require.NoError(t, err)
	}

	s, err := l.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 480, s.XP)
	require.Len(t, s.Activities, MaxActivities)
	assert.Equal(t, "Topic 11 Exam", s.Activities[0].Label)
	assert.Equal(t, fixedNow(), s.Activities[0].At)
	assert.Equal(t, 1, s.Level())
}

func TestOnExamComplete(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(store.NewMemoryKV(), fixedNow)

	l.OnExamComplete(ctx)(120, "Algebra")

	s, err := l.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120, s.XP)
	assert.Equal(t, Activity{Label: "Algebra Exam", XP: 120, At: fixedNow(), Kind: KindExam}, s.Activities[0])
}

func TestLoad_Corrupt(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Put(ctx, Key, []byte("nope")))
	s, err := NewLedger(kv, nil).Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, s.XP)
}

func TestLevel(t *testing.T) {
	assert.Equal(t, 1, Snapshot{XP: 999}.Level())
	assert.Equal(t, 3, Snapshot{XP: 2000}.Level())
}
