package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// stubServer blocks in ListenAndServe until Shutdown or Close, like
// *http.Server, unless listenErr is set.
type stubServer struct {
	listenErr   error
	shutdownErr error

	mu       sync.Mutex
	once     sync.Once
	stopped  chan struct{}
	listened bool
	drained  bool
	closed   bool
}

func newStubServer() *stubServer {
	return &stubServer{stopped: make(chan struct{})}
}

func (s *stubServer) ListenAndServe() error {
	s.mu.Lock()
	s.listened = true
	s.mu.Unlock()

	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.stopped
	return http.ErrServerClosed
}

func (s *stubServer) Shutdown(context.Context) error {
	s.mu.Lock()
	s.drained = true
	s.mu.Unlock()
	if s.shutdownErr != nil {
		return s.shutdownErr
	}
	s.once.Do(func() { close(s.stopped) })
	return nil
}

func (s *stubServer) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.once.Do(func() { close(s.stopped) })
	return nil
}

func (s *stubServer) state() (listened, drained, closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listened, s.drained, s.closed
}

func stopped() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func buildWith(srv server, cleaned *bool) buildFunc {
	return func() (app, error) {
		return app{srv: srv, addr: ":0", cleanup: func() { *cleaned = true }}, nil
	}
}

func TestRun_BuildError(t *testing.T) {
	build := func() (app, error) { return app{}, errors.New("boom") }
	assert.Equal(t, 1, Run(context.Background(), build, zerolog.Nop()))
}

func TestRun_ContextCancelled_DrainsAndExitsZero(t *testing.T) {
	srv := newStubServer()
	var cleaned bool

	assert.Equal(t, 0, Run(stopped(), buildWith(srv, &cleaned), zerolog.Nop()))

	listened, drained, closed := srv.state()
	assert.True(t, listened)
	assert.True(t, drained)
	assert.False(t, closed)
	assert.True(t, cleaned)
}

func TestRun_ListenError_ExitsOne(t *testing.T) {
	srv := newStubServer()
	srv.listenErr = errors.New("bind: address already in use")
	var cleaned bool

	assert.Equal(t, 1, Run(context.Background(), buildWith(srv, &cleaned), zerolog.Nop()))

	_, drained, _ := srv.state()
	assert.False(t, drained)
	assert.True(t, cleaned)
}

func TestRun_DrainError_ClosesConnections(t *testing.T) {
	srv := newStubServer()
	srv.shutdownErr = errors.New("context deadline exceeded")
	var cleaned bool

	assert.Equal(t, 0, Run(stopped(), buildWith(srv, &cleaned), zerolog.Nop()))

	_, drained, closed := srv.state()
	assert.True(t, drained)
	assert.True(t, closed)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(http.ErrServerClosed, zerolog.Nop()))
	assert.Equal(t, 0, exitCode(nil, zerolog.Nop()))
	assert.Equal(t, 1, exitCode(errors.New("x"), zerolog.Nop()))
}
