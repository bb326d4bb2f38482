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

const (
	exitOK   = 0
	exitFail = 1

	drainTimeout = 15 * time.Second
)

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
	Addr() string
}

type stdServer struct{ srv *http.Server }

func (s stdServer) ListenAndServe() error              { return s.srv.ListenAndServe() }
func (s stdServer) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
func (s stdServer) Close() error                       { return s.srv.Close() }
func (s stdServer) Addr() string                       { return s.srv.Addr }

type serverBuilder func() (httpServer, func(), error)

// Run builds the account server, serves until a signal arrives or the
// listener dies, then drains in-flight requests. It returns the exit code.
func Run(build serverBuilder, sigCh <-chan os.Signal, lg zerolog.Logger) int {
	srv, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("account service bootstrap failed")
		return exitFail
	}
	defer cleanup()

	serveErr := make(chan error, 1)
	go serve(srv, serveErr, lg)

	select {
	case err := <-serveErr:
		lg.Error().Err(err).Msg("listener stopped unexpectedly")
		return exitFail
	case sig := <-sigCh:
		lg.Info().Str("signal", sig.String()).Msg("draining")
	}

	drain(srv, lg)
	return exitOK
}

func serve(srv httpServer, out chan<- error, lg zerolog.Logger) {
	lg.Info().Str("addr", srv.Addr()).Msg("account service listening")
	err := srv.ListenAndServe()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}
	out <- err
}

func drain(srv httpServer, lg zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Warn().Err(err).Msg("drain timed out, forcing close")
		_ = srv.Close()
		return
	}
	lg.Info().Msg("account service stopped")
}

func main() {
	logger.Init()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	build := func() (httpServer, func(), error) {
		srv, cleanup, err := bootstrap.NewServer()
		if err != nil {
			return nil, nil, err
		}
		return stdServer{srv: srv}, cleanup, nil
	}

	os.Exit(Run(build, sigCh, zlog.Logger))
}
