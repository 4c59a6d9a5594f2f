package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Built graph for pandas (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports registry traffic and graph builds at debug level.
// It implements observability.HTTPHooks and observability.GraphHooks.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("registry request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("registry response", "method", method, "host", host, "path", path,
		"status", status, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("registry error", "method", method, "host", host, "path", path, "error", err)
}

func (h *logHooks) OnBuildStart(_ context.Context, pkg string, depth int) {
	h.logger.Debug("build started", "package", pkg, "depth", depth)
}

func (h *logHooks) OnBuildComplete(_ context.Context, pkg string, nodes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("build failed", "package", pkg, "duration", d.Round(time.Millisecond), "error", err)
		return
	}
	h.logger.Debug("build complete", "package", pkg, "nodes", nodes, "duration", d.Round(time.Millisecond))
}
