// Package server exposes the scheduling engine over HTTP.
//
// Every request parses its own activity list and runs a fresh analysis; the
// server keeps no schedule state between requests.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/critpath/internal/activity"
	"github.com/joshharrison/critpath/internal/config"
	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/render"
	"github.com/joshharrison/critpath/internal/reporter"
)

const shutdownTimeout = 5 * time.Second

// Error kinds reported in the "kind" field of error responses.
const (
	KindInvalidRequest     = "invalid_request"
	KindValidation         = "validation"
	KindDuplicateActivity  = "duplicate_activity"
	KindUnknownPredecessor = "unknown_predecessor"
	KindCyclicDependency   = "cyclic_dependency"
	KindInternal           = "internal"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error       string                  `json:"error"`
	Kind        string                  `json:"kind"`
	Activity    string                  `json:"activity,omitempty"`
	Predecessor string                  `json:"predecessor,omitempty"`
	Cycle       []string                `json:"cycle,omitempty"`
	Problems    []activity.FieldProblem `json:"problems,omitempty"`
}

// Server serves critical path analysis.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a Server. A nil logger falls back to slog.Default.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, logger: logger}
}

// Handler returns the HTTP routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/critical-path", s.handleCriticalPath)
	mux.HandleFunc("/healthz", s.handleHealth)
	return s.logRequests(mux)
}

// ListenAndServe listens on the configured port until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String(), "env", s.cfg.Env)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	s.logger.Info("stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed", Kind: KindInvalidRequest})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCriticalPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed", Kind: KindInvalidRequest})
		return
	}
	log := loggerFrom(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Kind:  KindInvalidRequest,
			})
			return
		}
		writeError(w, r, http.StatusBadRequest, ErrorResponse{Error: "read body: " + err.Error(), Kind: KindInvalidRequest})
		return
	}

	if !gjson.ValidBytes(body) || !gjson.GetBytes(body, "activities").Exists() {
		writeError(w, r, http.StatusBadRequest, ErrorResponse{
			Error: `expected a JSON object with an "activities" array`,
			Kind:  KindInvalidRequest,
		})
		return
	}

	descs, err := activity.Parse(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, errorResponse(err))
		return
	}

	g, err := graph.Build(descs)
	if err != nil {
		log.Debug("graph rejected", "err", err)
		writeError(w, r, http.StatusBadRequest, errorResponse(err))
		return
	}
	result, err := cpm.AnalyzeGraph(g)
	if errors.Is(err, cpm.ErrDurationOverflow) {
		writeError(w, r, http.StatusBadRequest, errorResponse(err))
		return
	}
	if err != nil {
		log.Error("analysis failed", "err", err)
		writeError(w, r, http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Kind: KindInternal})
		return
	}

	var diagram bytes.Buffer
	if err := render.WriteDOT(&diagram, g, result); err != nil {
		log.Error("render diagram", "err", err)
		writeError(w, r, http.StatusInternalServerError, ErrorResponse{Error: "render diagram", Kind: KindInternal})
		return
	}

	payload := reporter.New(result).Payload()
	payload.Diagram = diagram.String()

	log.Debug("schedule computed",
		"activities", len(descs),
		"total_duration", result.TotalDuration,
		"critical", len(result.CriticalPath))
	writeJSON(w, r, http.StatusOK, payload)
}

// errorResponse maps parse, validation and graph errors to a structured body.
func errorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error(), Kind: KindInvalidRequest}

	var (
		verr *activity.ValidationError
		derr *graph.DuplicateActivityError
		uerr *graph.UnknownPredecessorError
		cerr *graph.CyclicDependencyError
	)
	switch {
	case errors.As(err, &verr):
		resp.Kind = KindValidation
		resp.Problems = verr.Problems
	case errors.Is(err, activity.ErrEmptyInput), errors.Is(err, cpm.ErrDurationOverflow):
		resp.Kind = KindValidation
	case errors.As(err, &derr):
		resp.Kind = KindDuplicateActivity
		resp.Activity = derr.Name
	case errors.As(err, &uerr):
		resp.Kind = KindUnknownPredecessor
		resp.Activity = uerr.Activity
		resp.Predecessor = uerr.Predecessor
	case errors.As(err, &cerr):
		resp.Kind = KindCyclicDependency
		resp.Cycle = cerr.Cycle
	}
	return resp
}

// writeJSON marshals v before writing the header. A value that cannot be
// encoded is answered with a 500.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		loggerFrom(r.Context()).Error("encode response", "err", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(ErrorResponse{Error: "encode response", Kind: KindInternal})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, resp ErrorResponse) {
	writeJSON(w, r, status, resp)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests attaches a request-scoped logger to the context and logs one
// line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := s.logger.With("method", r.Method, "path", r.URL.Path)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(withLogger(r.Context(), log)))

		log.Info("request",
			"status", rec.status,
			"duration", time.Since(start).Truncate(time.Microsecond))
	})
}
