package logutil

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	key byte
)

var (
	loggerKey = key(1)
)

func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func GetOrDefault(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return log.Logger
	}
	v := ctx.Value(loggerKey)
	if v == nil {
		return log.Logger
	}
	return v.(zerolog.Logger)
}

// New returns a logger that writes JSON lines to out with PII masked.
// A nil out means stderr.
func New(out io.Writer, level zerolog.Level) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	return zerolog.New(NewRedactingWriter(out)).Level(level).With().Timestamp().Logger()
}

// Middleware stores log in the context of every request served by next.
func Middleware(log zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("Request")
		next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), log)))
	})
}
