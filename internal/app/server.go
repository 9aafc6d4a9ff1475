package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/quizsmith/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/quizsmith/internal/api/middlewares"
	"github.com/markdave123-py/quizsmith/internal/config"
)

// Routes groups the handlers mounted by NewServer.
type Routes struct {
	Documents *handlers.DocumentHandler
	Chat      *handlers.ChatHandler
	Questions *handlers.QuestionHandler
	Env       *handlers.EnvHandler
}

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, logger *slog.Logger, h Routes) *Server {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(appMiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(appMiddleware.Deadline(timeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Drive-Token"},
		AllowCredentials: false,
	}))

	r.Get("/healthz", h.Env.Health)
	r.Get("/env", h.Env.Env)
	r.Get("/catalog", h.Env.Catalog)
	r.Post("/question", h.Questions.GenerateQuestions)
	r.Post("/chat-with-file", h.Chat.ChatWithFile)

	r.Group(func(drive chi.Router) {
		drive.Use(appMiddleware.DriveTokenMiddleware)
		drive.Post("/chat-with-files", h.Documents.ChatWithFiles)
	})

	// Serve the browser client from the static directory
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      timeout + 10*time.Second,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start runs the HTTP server until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
