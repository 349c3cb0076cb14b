package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/pollrelay/internal/domain"
	apimw "github.com/hamed0406/pollrelay/internal/httpapi/middleware"
	"github.com/hamed0406/pollrelay/internal/metrics"
	"github.com/hamed0406/pollrelay/internal/poll"
	"github.com/hamed0406/pollrelay/internal/repo"
)

// Caller-visible messages.
const (
	detailNoURL       = "No webhook URL provided."
	detailInvalidBody = "Invalid JSON body."
	detailTimeout     = "Timeout waiting for webhook result after multiple attempts."
	detailInternal    = "Internal server error."
	detailNotFound    = "Poll sequence not found."
)

const maxRequestBody = 64 << 10

// Poller runs one poll sequence; *poll.Executor implements it.
type Poller interface {
	Execute(ctx context.Context, target string) (domain.PollResult, error)
}

type Server struct {
	Logger  *zap.Logger
	Poller  Poller
	History repo.HistoryStore
}

func NewServer(l *zap.Logger, p Poller, h repo.HistoryStore) *Server {
	return &Server{Logger: l, Poller: p, History: h}
}

type RouterOptions struct {
	AllowedOrigins []string
	Keys           apimw.Keys
	RateLimitRPM   int
	RateLimitBurst int
	Metrics        bool
}

func (s *Server) Router(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(apimw.RequestID)
	if opts.Metrics {
		metrics.Init()
		r.Use(metrics.Middleware)
	}
	r.Use(cors.Handler(corsOptions(opts.AllowedOrigins)))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if opts.Metrics {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(opts.RateLimitRPM, opts.RateLimitBurst))
		r.Use(apimw.RequireKey(opts.Keys))

		r.Post("/poll-webhook/", s.handlePoll)
		r.Post("/poll-webhook", s.handlePoll)

		if s.History != nil {
			r.Get("/api/polls", s.handleListPolls)
			r.Get("/api/polls/{id}", s.handleGetPoll)
		}
	})

	return r
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodOptions, http.MethodHead,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	var p domain.PollRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&p)
	switch {
	case errors.Is(err, io.EOF):
		// empty body: same as a body without webhook_url
	case err != nil:
		writeDetail(w, http.StatusBadRequest, detailInvalidBody)
		return
	}

	s.Logger.Info("poll_request",
		zap.String("url", poll.RedactURL(p.WebhookURL)),
		zap.String("request_id", w.Header().Get("X-Request-ID")),
	)

	res, err := s.Poller.Execute(r.Context(), p.WebhookURL)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Payload)
	case errors.Is(err, poll.ErrInvalidInput):
		writeDetail(w, http.StatusBadRequest, detailNoURL)
	case errors.Is(err, poll.ErrTimeout):
		writeDetail(w, http.StatusRequestTimeout, detailTimeout)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// caller went away; nobody is left to read a response
		s.Logger.Info("poll_client_gone", zap.Error(err))
	default:
		s.Logger.Error("poll_error", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, detailInternal)
	}
}

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeDetail(w, http.StatusBadRequest, "limit must be a non-negative integer.")
			return
		}
		limit = n
	}
	recs, err := s.History.Recent(r.Context(), limit)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, detailInternal)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	id := domain.SequenceID(chi.URLParam(r, "id"))
	rec, err := s.History.Get(r.Context(), id)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, detailInternal)
		return
	}
	if rec == nil {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
