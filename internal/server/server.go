// Package server runs the HTTP front end with graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/charles1614/deepwiki-sub003/internal/logging"
	"github.com/charles1614/deepwiki-sub003/internal/server/routes"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

const shutdownGrace = 10 * time.Second

// Server hosts the wiki API.
type Server struct {
	addr   string
	logger deepwiki.Logger
	engine *gin.Engine
}

// New builds the router. Release mode keeps gin quiet; request logging is
// the caller's logger's job.
func New(addr string, deps routes.Deps, logger deepwiki.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	routes.SetupRoutes(engine, deps)

	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Server{addr: addr, logger: logger, engine: engine}
}

// Handler exposes the router for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains
// in-flight requests for up to shutdownGrace.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
