package htmlrender

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger creates a logger with timestamp formatting that writes to w and
// filters messages below level.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const loggerKey ctxKey = 0

var discardLogger = log.New(io.Discard)

// WithLogger returns a copy of ctx carrying l. Render stages log through it.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// LoggerFrom returns the logger attached to ctx, or a logger that discards
// everything.
func LoggerFrom(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok && l != nil {
		return l
	}
	return discardLogger
}

// stageTimer logs the elapsed time of one render stage at debug level.
type stageTimer struct {
	logger *log.Logger
	start  time.Time
}

func startStage(l *log.Logger) stageTimer {
	return stageTimer{logger: l, start: time.Now()}
}

func (s stageTimer) done(stage string, keyvals ...any) {
	kv := append([]any{"stage", stage, "elapsed", time.Since(s.start).Round(time.Millisecond)}, keyvals...)
	s.logger.Debug("stage complete", kv...)
}
