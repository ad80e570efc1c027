package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/recordspro/api/internal/config"
	authapi "github.com/recordspro/api/internal/domain/auth"
	"github.com/recordspro/api/internal/domain/patient"
	"github.com/recordspro/api/internal/domain/reports"
	"github.com/recordspro/api/internal/domain/user"
	"github.com/recordspro/api/internal/platform/auth"
	"github.com/recordspro/api/internal/platform/middleware"
	"github.com/recordspro/api/internal/platform/ws"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "records-server",
		Short: "Hospital records API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedUsersCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the records API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func seedUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-users",
		Short: "Create the demo staff accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedDemoUsers()
		},
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Stores
	patientRepo := patient.NewFileRepository(filepath.Join(cfg.DataDir, "patients.json"), logger)
	userRepo := user.NewFileRepository(filepath.Join(cfg.DataDir, "users.json"), logger)
	tokens := auth.NewTokenManager(cfg.JWTSecret)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Bearer auth on everything except health, login and register. The
	// websocket endpoint authenticates itself from the query string.
	e.Use(auth.Middleware(tokens, auth.PathSkipper(
		"/health",
		"/ws",
		"/api/auth/login",
		"/api/auth/register",
	)))

	api := e.Group("/api")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	// Change notifier
	hub := ws.NewHub(logger)
	wsHandler := ws.NewHandler(hub, tokens)
	wsHandler.RegisterRoutes(e)

	// Domain handlers
	patientSvc := patient.NewService(patientRepo, hub)
	patient.NewHandler(patientSvc).RegisterRoutes(api)

	userSvc := user.NewService(userRepo, hub)
	user.NewHandler(userSvc).RegisterRoutes(api)

	authSvc := authapi.NewService(userRepo, tokens)
	authapi.NewHandler(authSvc).RegisterRoutes(api)

	reportsSvc := reports.NewService(patientRepo, userRepo)
	reports.NewHandler(reportsSvc).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// seedDemoUsers creates a known account per role so a fresh install can
// be explored without registering first. Existing accounts are left
// alone.
func seedDemoUsers() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	repo := user.NewFileRepository(filepath.Join(cfg.DataDir, "users.json"), logger)
	svc := user.NewService(repo, nil)

	demo := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"Admin User", "admin@hospital.com", "admin123", user.RoleAdmin},
		{"Dr. Smith", "doctor@hospital.com", "doctor123", user.RoleDoctor},
		{"Nurse Johnson", "nurse@hospital.com", "nurse123", user.RoleNurse},
		{"Front Desk", "clerk@hospital.com", "clerk123", user.RoleClerk},
	}

	for _, d := range demo {
		if _, err := repo.FindByEmail(d.email); err == nil {
			fmt.Printf("User %s already exists, skipping\n", d.email)
			continue
		}
		if _, err := svc.Create(d.name, d.email, d.password, d.role); err != nil {
			return fmt.Errorf("creating %s: %w", d.email, err)
		}
		fmt.Printf("Created user: %s (%s)\n", d.email, d.role)
	}

	fmt.Println("\nDemo accounts:")
	for _, d := range demo {
		fmt.Printf("  %s: %s / %s\n", d.role, d.email, d.password)
	}
	return nil
}
