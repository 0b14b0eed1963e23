package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/msx/internal/shared"
	"github.com/desertthunder/msx/internal/web"
)

// Deps are the collaborators [New] wires into the router.
type Deps struct {
	Files       FileStore
	Submissions SubmissionStore
	Metrics     *Metrics
	Logger      *log.Logger
}

// New builds the submission server router.
func New(cfg *shared.Config, deps Deps) (*BasicRouter, error) {
	pages, err := web.New()
	if err != nil {
		return nil, err
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(io.Discard)
	}

	router := NewBasicRouter()
	router.Use(RequestID, AccessLog(deps.Logger), Recover(deps.Logger), deps.Metrics.Middleware)

	router.Handler(NewUploadHandler(cfg.Upload, deps.Files, deps.Submissions, deps.Metrics, deps.Logger))
	router.Handler(NewPageHandler(pages, cfg, deps.Logger))
	router.HandleFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle(http.MethodGet, "/metrics", deps.Metrics.Handler())

	return router, nil
}

// Serve runs handler on addr until ctx is cancelled, then shuts down gracefully.
//
// ready, if non-nil, receives the bound address once the listener is open.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger, ready chan<- string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	logger.Info("server listening", "addr", ln.Addr().String())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errs:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
