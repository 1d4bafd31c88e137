// Package api serves stored exam history and progress over HTTP as JSON.
// It is read-mostly: results are only created by finishing an exam in the
// terminal.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/history"
	"github.com/abhisek/examiz/internal/i18n"
	"github.com/abhisek/examiz/internal/progress"
)

// Options configures the HTTP handler.
type Options struct {
	History *history.Store
	Ledger  *progress.Ledger

	// AllowedOrigins lists origins allowed by CORS. Empty allows none.
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Summary is one row of the history list.
type Summary struct {
	ID          string     `json:"id"`
	Topic       string     `json:"topic"`
	Grade       exam.Grade `json:"difficulty"`
	Score       int        `json:"score"`
	Total       int        `json:"total"`
	Percent     int        `json:"percent"`
	Date        time.Time  `json:"date"`
	Verdict     string     `json:"verdict"`
	Label       string     `json:"label"`
	Highlighted bool       `json:"highlighted"`
}

// ReviewItem is one question of a review with per-option marks.
type ReviewItem struct {
	Number      int      `json:"number"`
	Text        string   `json:"text"`
	Options     []string `json:"options"`
	Marks       []string `json:"marks"`
	Answer      string   `json:"userAnswer"`
	Answered    bool     `json:"answered"`
	Correct     bool     `json:"correct"`
	Explanation string   `json:"explanation"`
}

// ProgressView is the XP ledger with the derived level.
type ProgressView struct {
	XP         int                 `json:"xp"`
	Level      int                 `json:"level"`
	Activities []progress.Activity `json:"activities"`
}

type errorBody struct {
	Error string `json:"error"`
}

// NewRouter returns the HTTP handler.
func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api", func(ar chi.Router) {
		ar.Route("/history", func(hr chi.Router) {
			hr.Get("/", ListHistoryHandler(opts.History))
			hr.Delete("/", ClearHistoryHandler(opts.History))
			hr.Get("/{id}", GetResultHandler(opts.History))
			hr.Get("/{id}/review", ReviewHandler(opts.History))
		})
		ar.Get("/progress", ProgressHandler(opts.Ledger))
	})
	return r
}

// ListHistoryHandler lists stored results, most recent first. The verdict
// label is localized from ?lang= or Accept-Language.
func ListHistoryHandler(store *history.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := store.Load(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		if limit := parseIntDefault(r.URL.Query().Get("limit"), 0); limit > 0 && limit < len(results) {
			results = results[:limit]
		}

		loc := localizer(r)
		list := make([]Summary, 0, len(results))
		for _, res := range results {
			list = append(list, summarize(res, loc))
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// GetResultHandler returns one stored result in full.
func GetResultHandler(store *history.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := findResult(w, r, store)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// ReviewHandler reconstructs per-option correctness for one result.
func ReviewHandler(store *history.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := findResult(w, r, store)
		if !ok {
			return
		}
		items := exam.Review(res)
		out := make([]ReviewItem, 0, len(items))
		for _, it := range items {
			marks := make([]string, len(it.OptionMarks))
			for i, m := range it.OptionMarks {
				marks[i] = markName(m)
			}
			out = append(out, ReviewItem{
				Number:      it.Number,
				Text:        it.Question.Text,
				Options:     it.Question.Options,
				Marks:       marks,
				Answer:      it.Answer.Choice,
				Answered:    it.Answer.Answered,
				Correct:     it.Correct,
				Explanation: it.Question.Explanation,
			})
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// ClearHistoryHandler drops every stored result.
func ClearHistoryHandler(store *history.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Clear(r.Context()); err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ProgressHandler returns the XP ledger.
func ProgressHandler(ledger *progress.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ledger == nil {
			respondJSON(w, http.StatusOK, ProgressView{Level: 1, Activities: []progress.Activity{}})
			return
		}
		snap, err := ledger.Load(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		acts := snap.Activities
		if acts == nil {
			acts = []progress.Activity{}
		}
		respondJSON(w, http.StatusOK, ProgressView{XP: snap.XP, Level: snap.Level(), Activities: acts})
	}
}

func findResult(w http.ResponseWriter, r *http.Request, store *history.Store) (exam.Result, bool) {
	id := chi.URLParam(r, "id")
	res, err := store.Find(r.Context(), id)
	switch {
	case errors.Is(err, history.ErrNotFound):
		respondError(w, http.StatusNotFound, err)
		return exam.Result{}, false
	case err != nil:
		respondError(w, http.StatusInternalServerError, err)
		return exam.Result{}, false
	}
	return res, true
}

func summarize(r exam.Result, loc *i18n.Localizer) Summary {
	verdict := exam.VerdictFor(r)
	label := loc.T("VerdictKeepPracticing")
	if verdict == exam.VerdictExcellent {
		label = loc.T("VerdictExcellent")
	}
	return Summary{
		ID:          r.ID,
		Topic:       r.Topic,
		Grade:       r.Grade,
		Score:       r.Score,
		Total:       r.Total,
		Percent:     r.Percent(),
		Date:        r.Timestamp,
		Verdict:     string(verdict),
		Label:       label,
		Highlighted: exam.Highlighted(r),
	}
}

func markName(m exam.Mark) string {
	switch m {
	case exam.MarkCorrect:
		return "correct"
	case exam.MarkWrongPick:
		return "wrong"
	default:
		return "neutral"
	}
}

// localizer picks the response language from ?lang= or Accept-Language.
func localizer(r *http.Request) *i18n.Localizer {
	header := r.URL.Query().Get("lang")
	if header == "" {
		header = r.Header.Get("Accept-Language")
	}
	loc, err := i18n.New(i18n.Match(header))
	if err != nil {
		return i18n.Default()
	}
	return loc
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorBody{Error: err.Error()})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}

// requestLogger logs one line per request.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}

// Serve runs the handler on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("serving history api", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
