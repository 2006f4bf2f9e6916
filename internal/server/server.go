// Package server wires the application together: stores, services, handlers
// and the chi route tree, plus start and graceful shutdown. It is the
// composition root — dependencies are assembled here and nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sebcun/ysws-tracker/internal/auth"
	"github.com/sebcun/ysws-tracker/internal/config"
	"github.com/sebcun/ysws-tracker/internal/hackatime"
	"github.com/sebcun/ysws-tracker/internal/handler"
	"github.com/sebcun/ysws-tracker/internal/middleware"
	sqliteRepo "github.com/sebcun/ysws-tracker/internal/repository/sqlite"
	"github.com/sebcun/ysws-tracker/internal/service"
	"github.com/sebcun/ysws-tracker/internal/slack"
)

// Server owns the router and both database handles. The databases are closed
// during graceful shutdown, after in-flight requests have drained.
type Server struct {
	router     *chi.Mux
	cfg        *config.Config
	logger     *slog.Logger
	identityDB *sqliteRepo.IdentityDB
	catalogDB  *sqliteRepo.CatalogDB
}

// New opens both stores and assembles the full dependency chain. Each layer
// receives only what it needs: services get repository interfaces, handlers
// get services.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	identityDB, err := sqliteRepo.NewIdentity(cfg.IdentityDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening identity database: %w", err)
	}

	catalogDB, err := sqliteRepo.NewCatalog(cfg.CatalogDBPath)
	if err != nil {
		identityDB.Close()
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	s := &Server{
		router:     chi.NewRouter(),
		cfg:        cfg,
		logger:     logger,
		identityDB: identityDB,
		catalogDB:  catalogDB,
	}

	if err := s.setupRoutes(); err != nil {
		identityDB.Close()
		catalogDB.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	provider := auth.NewProvider(
		s.cfg.OAuthClientID,
		s.cfg.OAuthClientSecret,
		s.cfg.OAuthAuthURL,
		s.cfg.OAuthTokenURL,
		s.cfg.OAuthUserinfoURL,
		s.cfg.OAuthCallbackURL,
	)

	hours := hackatime.New(s.cfg.HackatimeBaseURL, s.cfg.HackatimeStartDate)

	var notifier service.Notifier
	if s.cfg.SlackBotToken != "" {
		notifier = slack.NewNotifier(slack.New(s.cfg.SlackAPIURL, s.cfg.SlackBotToken), s.cfg.SlackShipChannel)
	} else {
		s.logger.Warn("SLACK_BOT_TOKEN not set — ship/reject notifications disabled")
	}

	sessions := service.NewSessionService(s.identityDB.Users(), s.cfg.AdminAllowList, s.cfg.ReviewerAllowList, s.logger)
	users := service.NewUserService(s.identityDB.Users(), s.logger)
	projects := service.NewProjectService(s.identityDB.Projects(), s.identityDB.Users(), hours, notifier, s.logger)
	orders := service.NewOrderService(s.identityDB.Orders(), s.catalogDB, s.logger)
	catalog := service.NewCatalogService(s.catalogDB, s.catalogDB, s.logger)

	authHandler := handler.NewAuthHandler(provider, tokens, users, s.logger)
	userHandler := handler.NewUserHandler(sessions, users)
	projectHandler := handler.NewProjectHandler(sessions, projects)
	orderHandler := handler.NewOrderHandler(sessions, orders)
	catalogHandler := handler.NewCatalogHandler(sessions, catalog)

	s.router.Get("/login", authHandler.HandleLogin)
	s.router.Get("/auth/callback", authHandler.HandleCallback)
	s.router.Post("/auth/logout", authHandler.HandleLogout)
	s.router.Get("/unauthorized", authHandler.HandleUnauthorized)

	s.router.Route("/api", func(r chi.Router) {
		// Every API route reads the session cookie if present; the
		// per-endpoint role checks live in the services.
		r.Use(auth.OptionalAuth(tokens))

		r.Get("/me", userHandler.HandleMe)
		r.Put("/me", userHandler.HandleUpdateMe)

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", projectHandler.HandleCreate)
			r.Get("/", projectHandler.HandleListMine)
			r.Get("/public", projectHandler.HandleListPublic)
			r.Get("/{id}", projectHandler.HandleGet)
			r.Put("/{id}", projectHandler.HandleUpdate)
			r.Delete("/{id}", projectHandler.HandleDelete)
			r.Post("/{id}/submit", projectHandler.HandleSubmit)
			r.Patch("/{id}/status", projectHandler.HandleSetStatus)
			r.Post("/{id}/approve", projectHandler.HandleApprove)
			r.Post("/{id}/reject", projectHandler.HandleReject)
		})

		r.Get("/faqs", catalogHandler.HandleListFAQs)
		r.Get("/rewards", catalogHandler.HandleListRewards)

		r.Post("/orders", orderHandler.HandleCreate)
		r.Get("/orders", orderHandler.HandleListMine)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/faqs", catalogHandler.HandleCreateFAQ)
			r.Delete("/faqs/{id}", catalogHandler.HandleDeleteFAQ)
			r.Post("/rewards", catalogHandler.HandleCreateReward)
			r.Delete("/rewards/{id}", catalogHandler.HandleDeleteReward)
			r.Get("/orders", orderHandler.HandleListAll)
			r.Patch("/orders/{id}", orderHandler.HandleAdminUpdate)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests and closes both databases.
func (s *Server) Start() error {
	defer s.identityDB.Close()
	defer s.catalogDB.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("identity_db", s.cfg.IdentityDBPath),
			slog.String("catalog_db", s.cfg.CatalogDBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
