package stubserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	statusRefreshStarted = "Refresh started"
	detailStartingUp     = "Starting up..."
	shutdownTimeout      = 5 * time.Second
)

// Handler is the http api layer of the stub backend.
type Handler struct {
	facts     *Factsheet
	logger    *zap.Logger
	ready     atomic.Bool
	refreshes atomic.Int64
}

// NewHandler creates a ready handler over a factsheet.
func NewHandler(facts *Factsheet, logger *zap.Logger) *Handler {
	if facts == nil {
		facts = DefaultFactsheet()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{facts: facts, logger: logger}
	h.ready.Store(true)
	return h
}

// SetReady toggles the warm-up state. While not ready both endpoints answer 503.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Ready reports whether the handler is serving answers.
func (h *Handler) Ready() bool {
	return h.ready.Load()
}

// WarmUp holds the handler not-ready for d, the way the real backend answers
// 503 while its index loads. It returns immediately.
func (h *Handler) WarmUp(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	h.SetReady(false)
	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			h.SetReady(true)
			h.logger.Info("warm-up finished", zap.Duration("after", d))
		case <-ctx.Done():
		}
	}()
}

// Refreshes reports how many refreshes were accepted.
func (h *Handler) Refreshes() int64 {
	return h.refreshes.Load()
}

// RegisterRoutes attaches the backend endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/refresh", h.handleRefresh)
}

// --- DTOs ---

type chatRequest struct {
	Query *string `json:"query"`
}

type chatResponse struct {
	Answer      string  `json:"answer"`
	Source      *string `json:"source"`
	ContextUsed string  `json:"context_used,omitempty"`
}

type refreshResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

// --- Handlers ---

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		writeError(w, http.StatusServiceUnavailable, detailStartingUp)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	fact, ok := h.facts.Lookup(*req.Query)
	if !ok {
		h.logger.Debug("no factsheet match", zap.String("query", *req.Query))
		writeJSON(w, http.StatusOK, chatResponse{Answer: FallbackAnswer})
		return
	}

	h.logger.Debug("factsheet match", zap.String("keyword", fact.Keyword))
	source := fact.Source
	writeJSON(w, http.StatusOK, chatResponse{
		Answer:      fact.Answer,
		Source:      &source,
		ContextUsed: ContextDirectLookup,
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		writeError(w, http.StatusServiceUnavailable, detailStartingUp)
		return
	}

	job := uuid.NewString()
	n := h.refreshes.Add(1)
	h.logger.Info("refresh requested", zap.String("job_id", job), zap.Int64("count", n))

	writeJSON(w, http.StatusOK, refreshResponse{Status: statusRefreshStarted, JobID: job})
}

// writeJSON is a helper function for sending json responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError sends an error body in the {"detail": ...} shape the real backend uses.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}

// NewRouter wires middleware, the health check and the handler routes.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(zapRequestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("eacassist stub backend OK"))
	})

	h.RegisterRoutes(r)
	return r
}

// zapRequestLogger logs one line per request through zap instead of the std logger
func zapRequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// ListenAndServe runs the stub backend until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h *Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("stub backend listening", zap.String("addr", addr), zap.Strings("keywords", h.facts.Keywords()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		h.logger.Info("stub backend shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

// URLFor turns a listen address into a base URL the client accepts.
func URLFor(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
