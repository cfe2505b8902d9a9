// Package callback receives the OAuth redirect on a loopback HTTP listener.
package callback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultAddr binds an ephemeral loopback port
const DefaultAddr = "127.0.0.1:0"

// Path is the callback path registered with the backend
const Path = "/login/callback"

// ErrDenied is returned when the provider redirects with an error
var ErrDenied = errors.New("login denied")

// Result is the query of the first callback request
type Result struct {
	Params url.Values
	Code   string
	State  string
}

// Tokens reports whether the redirect carries the token pair directly
func (r Result) Tokens() bool {
	return r.Params.Get("success") == "1" && r.Params.Get("access_token") != ""
}

// Listener is a one-shot loopback OAuth callback server
type Listener struct {
	server   *http.Server
	listener net.Listener
	logger   *zap.Logger
	done     chan struct{}
	once     sync.Once
	result   Result
	err      error
}

// Listen starts a callback listener on addr
func Listen(addr string, logger *zap.Logger) (*Listener, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	l := &Listener{
		listener: ln,
		logger:   logger,
		done:     make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+Path, l.handle)
	mux.HandleFunc("GET /callback", l.handle)

	handler := recovery(logger)(logging(logger)(mux))
	l.server = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("callback server failed", zap.Error(err))
		}
	}()

	logger.Debug("callback listener started", zap.String("addr", ln.Addr().String()))
	return l, nil
}

// URL returns the callback URL of the listener
func (l *Listener) URL() string {
	return "http://" + l.listener.Addr().String() + Path
}

func (l *Listener) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		res Result
		err error
	)
	switch {
	case q.Get("error") != "":
		err = fmt.Errorf("%w: %s", ErrDenied, q.Get("error"))
	case q.Get("code") == "" && q.Get("access_token") == "":
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	default:
		res = Result{Code: q.Get("code"), State: q.Get("state"), Params: q}
	}

	delivered := false
	l.once.Do(func() {
		l.result, l.err = res, err
		delivered = true
		close(l.done)
	})
	if !delivered {
		http.Error(w, "login already completed", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err != nil {
		w.WriteHeader(http.StatusForbidden)
		_, _ = fmt.Fprintln(w, "Login failed. You can close this window.")
		return
	}
	_, _ = fmt.Fprintln(w, "Login complete. You can close this window.")
}

// Wait blocks until the callback arrives or ctx is done
func (l *Listener) Wait(ctx context.Context) (Result, error) {
	select {
	case <-l.done:
		return l.result, l.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Close stops the listener
func (l *Listener) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return l.server.Shutdown(ctx)
}
