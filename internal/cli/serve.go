package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pydepgraph/pkg/buildinfo"
	"github.com/matzehuels/pydepgraph/pkg/dag"
	"github.com/matzehuels/pydepgraph/pkg/deps"
	pderrors "github.com/matzehuels/pydepgraph/pkg/errors"
	"github.com/matzehuels/pydepgraph/pkg/integrations"
	pdio "github.com/matzehuels/pydepgraph/pkg/io"
	"github.com/matzehuels/pydepgraph/pkg/render/nodelink"
)

const (
	requestIDHeader = "X-Request-ID"
	shutdownTimeout = 5 * time.Second
)

// graphBuilder builds a graph for one request. The CLI supplies one backed by
// the registry; tests supply fakes.
type graphBuilder func(ctx context.Context, pkg string, depth int, lenient bool) (*dag.DAG, error)

// server serves dependency graphs over HTTP.
type server struct {
	build  graphBuilder
	depth  int // default when the request has no n parameter
	logger *log.Logger
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency graphs over HTTP",
		Long: `Start an HTTP server exposing:

  GET /healthz
  GET /graph/{package}?n=<count>&format=json|dot&lenient=true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") && c.config.Server.Addr != "" {
				addr = c.config.Server.Addr
			}
			depth := deps.DefaultDepth
			if c.config.Number != nil {
				depth = *c.config.Number
			}
			s := &server{
				build: func(ctx context.Context, pkg string, n int, lenient bool) (*dag.DAG, error) {
					return c.newAssembler(lenient).Build(ctx, pkg, n)
				},
				depth:  depth,
				logger: c.Logger,
			}
			fprintInfo(cmd.OutOrStdout(), "Listening on %s", StyleValue.Render(addr))
			return s.listen(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	return cmd
}

// listen serves until ctx is cancelled, then shuts down gracefully.
func (s *server) listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph/{package}", s.handleGraph)
	return r
}

// =============================================================================
// Middleware
// =============================================================================

// requestID propagates X-Request-ID, generating one when the client sent
// none, and attaches a logger carrying it to the request context.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := withLogger(r.Context(), s.logger.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		loggerFromContext(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"remote", r.RemoteAddr,
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *server) handleGraph(w http.ResponseWriter, r *http.Request) {
	pkg := chi.URLParam(r, "package")
	q := r.URL.Query()

	depth := s.depth
	if v := q.Get("n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, pderrors.New(pderrors.ErrCodeInvalidInput, "n must be an integer, got %q", v))
			return
		}
		depth = n
	}

	format := q.Get("format")
	if format == "" {
		format = formatJSON
	}
	if format != formatJSON && format != formatDOT {
		s.writeError(w, r, pderrors.New(pderrors.ErrCodeInvalidFormat, "unknown format %q (use json or dot)", format))
		return
	}

	var lenient bool
	if v := q.Get("lenient"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, pderrors.New(pderrors.ErrCodeInvalidInput, "lenient must be a boolean, got %q", v))
			return
		}
		lenient = b
	}

	g, err := s.build(r.Context(), pkg, depth, lenient)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format == formatDOT {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(nodelink.ToDOT(g, nodelink.Options{Detailed: true})))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := pdio.WriteJSON(g, w); err != nil {
		loggerFromContext(r.Context()).Error("write graph", "error", err)
	}
}

// =============================================================================
// Errors
// =============================================================================

type errorBody struct {
	Code    pderrors.Code `json:"code"`
	Message string        `json:"message"`
}

// statusFor maps an error to the HTTP status the API answers with.
func statusFor(err error) int {
	switch {
	case pderrors.IsInput(err):
		return http.StatusBadRequest
	case errors.Is(err, integrations.ErrNotFound):
		return http.StatusNotFound
	case pderrors.Is(err, pderrors.ErrCodeRegistryUnavailable),
		pderrors.Is(err, pderrors.ErrCodeMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := pderrors.GetCode(err)
	if code == "" {
		code = pderrors.ErrCodeInternal
	}
	logger := loggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("graph request failed", "status", status, "error", err)
	} else {
		logger.Debug("graph request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: pderrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
