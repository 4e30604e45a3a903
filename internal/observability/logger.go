package observability

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
)

// basic global logger, JSON to stdout until Setup is called.
var logger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stdout).With().Timestamp().Logger()
	logger.Store(&l)
}

// Setup replaces the global logger. format is "json" or "console";
// an unknown level falls back to info.
func Setup(w io.Writer, level, format string) {
	if w == nil {
		w = os.Stdout
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	logger.Store(&l)
}

// Logger returns the global logger. Callers must not modify it.
func Logger() *zerolog.Logger {
	return logger.Load()
}

// WithFields returns a logger with additional fields given as key/value pairs.
func WithFields(kv ...any) *zerolog.Logger {
	l := Logger().With().Fields(kv).Logger()
	return &l
}

// WithRequestID stores a request_id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestID returns the request_id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(ctxKeyRequestID).(string)
	return reqID
}

// LoggerFromContext adds request_id if present.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	reqID := RequestID(ctx)
	if reqID == "" {
		return Logger()
	}
	l := Logger().With().Str("request_id", reqID).Logger()
	return &l
}
