// Package server runs the DevCamper HTTP API until the process is signalled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/yigit/devcamper/internal/bootstrap"
	"github.com/yigit/devcamper/internal/config"
	"github.com/yigit/devcamper/internal/pkg/filestorage"
)

const (
	// photo uploads are the slowest request bodies the API accepts
	readTimeout       = time.Minute
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

// Server owns the HTTP listener and the database pool behind it
type Server struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	http   *http.Server
	logger zerolog.Logger
}

// NewServer loads configuration, prepares the database and builds the router
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	pool, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, pool, lgr)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	router, err := bootstrap.SetupRouter(cfg, deps, lgr)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}
	servePhotos(router, deps.FileStorage, lgr)

	return &Server{
		cfg:    cfg,
		pool:   pool,
		http:   newHTTPServer(cfg.Server.Port, router),
		logger: lgr,
	}, nil
}

func newHTTPServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    1 << 20,
	}
}

// servePhotos exposes stored bootcamp photos under the storage's URL prefix
func servePhotos(router *gin.Engine, storage *filestorage.LocalStorage, lgr zerolog.Logger) {
	router.Static(storage.BaseURL(), storage.BasePath())
	lgr.Info().Str("url", storage.BaseURL()).Str("dir", storage.BasePath()).Msg("Serving bootcamp photos")
}

// Run serves requests until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", s.http.Addr).
			Str("mode", s.cfg.Server.Mode).
			Msg("DevCamper API listening")
		serveErr <- s.http.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			s.closePool()
			return fmt.Errorf("error starting server: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown requested")
	}

	return s.Shutdown(context.Background())
}

// Shutdown drains in-flight requests, then closes the database pool
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var err error
	if s.http != nil {
		if shutdownErr := s.http.Shutdown(ctx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("HTTP server shutdown error")
			err = fmt.Errorf("http shutdown: %w", shutdownErr)
		}
	}
	s.closePool()

	s.logger.Info().Msg("Server stopped")
	return err
}

func (s *Server) closePool() {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
}
