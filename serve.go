package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/config"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/handler"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/middleware"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/pkg/logger"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/service"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/session"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var configPath string
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger.Init(&logger.Config{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
			})
			slog.Info("configuration loaded successfully", "path", configPath)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	return cmd
}

// openKV opens the client storage backend selected by configuration
func openKV(cfg *config.StorageConfig) (session.KV, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return session.NewMemoryKV(), nil
	case config.DriverSQLite:
		return session.NewSQLiteKV(cfg.Path)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func newRegistry(cfg *config.Config, kv session.KV) *session.Registry {
	return session.NewRegistry(kv, session.Options{
		Password:    cfg.Auth.Password,
		EmailDomain: cfg.Auth.EmailDomain,
		LoginDelay:  cfg.Auth.LoginDelay(),
		Secret:      []byte(cfg.Auth.JWTSecret),
		TokenTTL:    cfg.Auth.TokenTTL(),
	}, cfg.Session.MaxClients)
}

// newRouter wires middleware and routes
func newRouter(cfg *config.Config, kv session.KV, registry *session.Registry, store *service.ContractStore) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.ClientIdentity([]byte(cfg.Auth.JWTSecret)))
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.NoCache())
	router.Use(middleware.RateLimit(cfg.Server.RateLimit, time.Minute))

	authHandler := handler.NewAuthHandler(registry)
	contractHandler := handler.NewContractHandler(store, cfg.Contracts.PageSize)

	router.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		storage := gin.H{"driver": cfg.Storage.Driver, "ok": true}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := kv.Ping(ctx); err != nil {
			logger.Error(ctx, "session storage unavailable", "error", err)
			status, code = "degraded", http.StatusServiceUnavailable
			storage["ok"] = false
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"storage":   storage,
			"contracts": gin.H{
				"source":       store.SourceName(),
				"loaded":       store.Loaded(),
				"count":        store.Count(),
				"fetch_failed": store.LastError() != nil,
			},
			"sessions": registry.Len(),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/auth/login", middleware.LoginRateLimit(cfg.Server.LoginRateLimit, time.Minute), authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/status", authHandler.Status)
	}

	protected := api.Group("/")
	protected.Use(middleware.RequireSession(registry, cfg.Session.RestoreWait()))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/stats", contractHandler.Stats)
		protected.GET("/contracts/:id", contractHandler.Get)
		protected.GET("/pages/:name", handler.GetPage)
	}

	return router
}

func serve(ctx context.Context, cfg *config.Config) error {
	kv, err := openKV(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("open session storage: %w", err)
	}
	defer kv.Close()

	source, err := service.NewSource(&cfg.Contracts)
	if err != nil {
		return fmt.Errorf("create contract source: %w", err)
	}

	registry := newRegistry(cfg, kv)
	store := service.NewContractStore(source)

	gin.SetMode(gin.ReleaseMode)
	router := newRouter(cfg, kv, registry, store)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "contracts", source.Name(), "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited gracefully")
	return nil
}
