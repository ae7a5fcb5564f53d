// api/cmd/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/bootstrap"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

const drainTimeout = 15 * time.Second

// server is satisfied by *http.Server.
type server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
}

type app struct {
	srv     server
	addr    string
	cleanup func()
}

type buildFunc func() (app, error)

// Run serves until ctx is cancelled or the server stops by itself and
// returns the process exit code.
func Run(ctx context.Context, build buildFunc, lg zerolog.Logger) int {
	a, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		return 1
	}
	if a.cleanup != nil {
		defer a.cleanup()
	}

	served := make(chan error, 1)
	go func() { served <- a.srv.ListenAndServe() }()
	lg.Info().Str("addr", a.addr).Msg("account service listening")

	select {
	case err := <-served:
		return exitCode(err, lg)
	case <-ctx.Done():
		lg.Info().Msg("stopping: draining connections")
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()

	if err := a.srv.Shutdown(drainCtx); err != nil {
		lg.Error().Err(err).Msg("drain failed, closing connections")
		_ = a.srv.Close()
	}

	select {
	case <-served:
	case <-drainCtx.Done():
	}
	lg.Info().Msg("stopped")
	return 0
}

// exitCode maps a ListenAndServe result that arrived before any stop
// request. Non-zero lets the supervisor restart the process.
func exitCode(err error, lg zerolog.Logger) int {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return 0
	}
	lg.Error().Err(err).Msg("server stopped unexpectedly")
	return 1
}

func buildFromBootstrap() (app, error) {
	srv, cleanup, err := bootstrap.NewServer()
	if err != nil {
		return app{}, err
	}
	return app{srv: srv, addr: srv.Addr, cleanup: cleanup}, nil
}

func main() {
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, buildFromBootstrap, zlog.Logger)
	stop()
	os.Exit(code)
}
