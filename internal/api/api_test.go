package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/history"
	"github.com/abhisek/examiz/internal/progress"
	"github.com/abhisek/examiz/internal/store"
)

func result(id string, score int, answered bool) exam.Result {
	qs := make([]exam.Question, 5)
	answers := make([]exam.Answer, 5)
	for i := range qs {
		qs[i] = exam.Question{
			Text:        fmt.Sprintf("Q%d", i+1),
			Options:     []string{"a", "b", "c", "d"},
			Correct:     "a",
			Explanation: "because",
		}
		switch {
		case i < score:
			answers[i] = exam.Chose("a")
		case answered:
			answers[i] = exam.Chose("b")
		default:
			answers[i] = exam.NoAnswer
		}
	}
	return exam.Result{
		ID:        id,
		Topic:     "Algebra",
		Grade:     exam.DefaultGrade,
		Score:     score,
		Total:     5,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Questions: qs,
		Answers:   answers,
	}
}

type fixture struct {
	srv    *httptest.Server
	hist   *history.Store
	ledger *progress.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := store.NewMemoryKV()
	f := &fixture{hist: history.New(kv), ledger: progress.NewLedger(kv, nil)}
	f.srv = httptest.NewServer(NewRouter(Options{
		History:        f.hist,
		Ledger:         f.ledger,
		AllowedOrigins: []string{"http://localhost:3000"},
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) get(t *testing.T, path string, header http.Header, out any) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.srv.URL+path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusOK, f.get(t, "/healthz", nil, nil))
}

func TestListHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.hist.Append(ctx, result("old", 2, true))
	require.NoError(t, err)
	_, err = f.hist.Append(ctx, result("new", 4, true))
	require.NoError(t, err)

	var list []Summary
	require.Equal(t, http.StatusOK, f.get(t, "/api/history", nil, &list))
	require.Len(t, list, 2)

	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, 80, list[0].Percent)
	assert.Equal(t, "excellent", list[0].Verdict)
	assert.Equal(t, "Excellent Performance", list[0].Label)
	assert.True(t, list[0].Highlighted)

	assert.Equal(t, "keep_practicing", list[1].Verdict)
	assert.False(t, list[1].Highlighted)

	var limited []Summary
	require.Equal(t, http.StatusOK, f.get(t, "/api/history?limit=1", nil, &limited))
	assert.Len(t, limited, 1)
}

func TestListHistory_Localized(t *testing.T) {
	f := newFixture(t)
	_, err := f.hist.Append(context.Background(), result("r1", 5, true))
	require.NoError(t, err)

	var list []Summary
	f.get(t, "/api/history", http.Header{"Accept-Language": {"es-MX,es;q=0.9"}}, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Excelente resultado", list[0].Label)

	f.get(t, "/api/history?lang=en", http.Header{"Accept-Language": {"es"}}, &list)
	assert.Equal(t, "Excellent Performance", list[0].Label)
}

func TestGetResultAndReview(t *testing.T) {
	f := newFixture(t)
	_, err := f.hist.Append(context.Background(), result("r1", 3, false))
	require.NoError(t, err)

	var res exam.Result
	require.Equal(t, http.StatusOK, f.get(t, "/api/history/r1", nil, &res))
	assert.Equal(t, 3, res.Score)
	assert.Len(t, res.Questions, 5)

	var items []ReviewItem
	require.Equal(t, http.StatusOK, f.get(t, "/api/history/r1/review", nil, &items))
	require.Len(t, items, 5)
	assert.True(t, items[0].Correct)
	assert.Equal(t, []string{"correct", "neutral", "neutral", "neutral"}, items[0].Marks)
	assert.False(t, items[4].Answered)
	assert.False(t, items[4].Correct)
}

func TestGetResult_NotFound(t *testing.T) {
	f := newFixture(t)
	var body errorBody
	assert.Equal(t, http.StatusNotFound, f.get(t, "/api/history/missing", nil, &body))
	assert.NotEmpty(t, body.Error)
}

func TestClearHistory(t *testing.T) {
	f := newFixture(t)
	_, err := f.hist.Append(context.Background(), result("r1", 3, true))
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodDelete, f.srv.URL+"/api/history", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	stored, err := f.hist.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestProgress(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Award(context.Background(), 200, "Algebra Exam", progress.KindExam)
	require.NoError(t, err)

	var pv ProgressView
	require.Equal(t, http.StatusOK, f.get(t, "/api/progress", nil, &pv))
	assert.Equal(t, 200, pv.XP)
	assert.Equal(t, 1, pv.Level)
	require.Len(t, pv.Activities, 1)
	assert.Equal(t, "Algebra Exam", pv.Activities[0].Label)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/api/history", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
