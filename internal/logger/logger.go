package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	appCtx "github.com/baechuer/real-time-ressys/services/account-service/internal/pkg/context"
)

var Logger zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter reads LOG_LEVEL (default info) and LOG_FORMAT (json or
// console, default console) and replaces both the package and global logger.
func InitWithWriter(w io.Writer) {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = w
	if os.Getenv("LOG_FORMAT") != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(out).With().
		Timestamp().
		Str("service", "account-service").
		Logger().
		Level(level)

	zlog.Logger = Logger
}

// WithCtx returns the package logger enriched with the request id and client
// ip found on ctx.
func WithCtx(ctx context.Context) *zerolog.Logger {
	l := Logger.With().Logger()
	if rid := appCtx.GetRequestID(ctx); rid != "" {
		l = l.With().Str("request_id", rid).Logger()
	}
	if ip := appCtx.GetClientIP(ctx); ip != "" {
		l = l.With().Str("ip", ip).Logger()
	}
	return &l
}
