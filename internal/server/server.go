// Package server exposes a vectorizer over HTTP: health and vocabulary
// inspection plus a vectorize endpoint that turns sentence text into
// index vectors and attention masks.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-nmt-prep/internal/vector"
	"github.com/example/go-nmt-prep/internal/vectorizer"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes int
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes: 4096,
		logger:       slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed sentence length in bytes for
// each field of POST /vectorize.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	vec  *vectorizer.Vectorizer
	opts options
	log  *slog.Logger
}

// NewHandler returns an http.Handler serving /health, /vocab, and POST
// /vectorize against the given vectorizer.
func NewHandler(vec *vectorizer.Vectorizer, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		vec:  vec,
		opts: opts,
		log:  opts.logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/vocab", h.handleVocab)
	mux.HandleFunc("/vectorize", h.handleVectorize)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type vocabSideSummary struct {
	Size     int              `json:"size"`
	Specials map[string]int64 `json:"specials"`
}

type vocabSummary struct {
	Source   vocabSideSummary `json:"source"`
	Target   vocabSideSummary `json:"target"`
	MaxWords int              `json:"max_words"`
}

func (h *handler) handleVocab(w http.ResponseWriter, _ *http.Request) {
	summary := vocabSummary{
		Source:   summarizeSide(h.vec.SourceVocab().Len(), h.vec.SourceVocab().Lookup),
		Target:   summarizeSide(h.vec.TargetVocab().Len(), h.vec.TargetVocab().Lookup),
		MaxWords: h.vec.MaxWords(),
	}

	writeJSON(w, http.StatusOK, summary)
}

func summarizeSide(size int, lookup func(string) (int64, bool)) vocabSideSummary {
	specials := make(map[string]int64)
	for _, token := range []string{vectorizer.UnknownToken, vectorizer.PadToken, vectorizer.StartToken, vectorizer.EndToken} {
		if idx, ok := lookup(token); ok {
			specials[token] = idx
		}
	}

	return vocabSideSummary{Size: size, Specials: specials}
}

type vectorizeRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type sourceOnlyResponse struct {
	SourceVector []int64      `json:"source_vector"`
	SourceMask   *vector.Mask `json:"source_mask"`
}

func (h *handler) handleVectorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return
	}

	var req vectorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Source == "" {
		writeError(w, http.StatusBadRequest, "source field is required")
		return
	}

	if len(req.Source) > h.opts.maxTextBytes || len(req.Target) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("sentence exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	start := time.Now()

	var (
		body any
		err  error
	)

	if req.Target == "" {
		var sourceVector []int64

		sourceVector, err = h.vec.VectorizeSource(req.Source)
		if err == nil {
			body = sourceOnlyResponse{
				SourceVector: sourceVector,
				SourceMask:   h.vec.SourceMask(sourceVector),
			}
		}
	} else {
		body, err = h.vec.Vectorize(req.Source, req.Target)
	}

	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		if errors.Is(err, vector.ErrSequenceTooLong) {
			h.log.WarnContext(r.Context(), "sentence too long",
				slog.Int("source_len", len(req.Source)),
				slog.Int("target_len", len(req.Target)),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		h.log.ErrorContext(r.Context(), "vectorization failed",
			slog.Int("source_len", len(req.Source)),
			slog.Int("target_len", len(req.Target)),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.InfoContext(r.Context(), "vectorization complete",
		slog.Int("source_len", len(req.Source)),
		slog.Int("target_len", len(req.Target)),
		slog.Int64("duration_ms", durationMS),
	)

	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	addr            string
	handler         http.Handler
	shutdownTimeout time.Duration
}

func New(addr string, h http.Handler) *Server {
	return &Server{
		addr:            addr,
		handler:         h,
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

// Start serves until ctx is cancelled, then drains in-flight requests
// for at most the shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

// ProbeHTTP checks the health endpoint at addr.
func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
