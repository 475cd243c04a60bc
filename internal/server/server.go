package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pin-go/internal/files"
	"pin-go/internal/model"
	"pin-go/internal/monitoring"
	"pin-go/internal/safety"
)

//go:embed web/index.html
var webFiles embed.FS

const shutdownTimeout = 5 * time.Second

// FileService is what the HTTP surface needs from the file service.
type FileService interface {
	List(dir string) (*files.Listing, error)
	Open(path string) (*files.File, error)
	Delete(ctx context.Context, path string) (*files.Outcome, error)
	Rename(ctx context.Context, oldPath, newName string) (*files.Outcome, error)
	History(limit int) ([]*model.Operation, error)
}

var _ FileService = (*files.Service)(nil)

// Server wraps the gin router and its dependencies.
type Server struct {
	router  *gin.Engine
	files   FileService
	metrics *monitoring.Metrics
	logger  safety.Logger
}

// New creates a server with all routes registered. metrics may be nil.
func New(svc FileService, metrics *monitoring.Metrics, logger safety.Logger) *Server {
	router := gin.New()
	// Keep %2F inside the /image/ wildcard.
	router.UseRawPath = true

	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(AccessLog(logger))
	if metrics != nil {
		router.Use(monitoring.Middleware(metrics))
	}

	s := &Server{
		router:  router,
		files:   svc,
		metrics: metrics,
		logger:  logger,
	}

	router.GET("/", s.index)
	router.GET("/healthz", s.health)
	router.GET("/image/*path", s.serveImage)

	api := router.Group("/api")
	api.GET("/list", s.list)
	api.POST("/delete", s.delete)
	api.POST("/rename", s.rename)
	api.GET("/history", s.history)

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr and serves until ctx is cancelled, then shuts down
// gracefully. onListen, if set, is called with the base URL once the
// listener is bound.
func (s *Server) Run(ctx context.Context, addr string, onListen func(url string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := "http://" + ln.Addr().String()
	s.logger.Info("server listening", "url", url)
	if onListen != nil {
		onListen(url)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
