package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/noahjmorrison/onnaflips/internal/cache"
	"github.com/noahjmorrison/onnaflips/internal/config"
	"github.com/noahjmorrison/onnaflips/internal/handler"
	"github.com/noahjmorrison/onnaflips/internal/mailer"
	"github.com/noahjmorrison/onnaflips/internal/middleware"
	"github.com/noahjmorrison/onnaflips/internal/repository"
	"github.com/noahjmorrison/onnaflips/internal/scheduler"
	"github.com/noahjmorrison/onnaflips/internal/service"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	if cfg.DBDriver == "sqlite" {
		ensureDir(cfg.DBConn, logger)
	}
	db, err := sql.Open(cfg.DBDriver, cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db, cfg.DBDriver)
	if err := repo.Migrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	var statsCache cache.Cache = cache.NewNoopCache()
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr)
		defer redisCache.Close()
		statsCache = redisCache
	}

	svc, err := service.NewService(repo, statsCache, logger, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize service: %v", err)
	}
	h := handler.NewHandler(svc)

	// Setup router
	r := mux.NewRouter()
	// Read routes
	r.HandleFunc("/api/items", h.ListItems).Methods("GET")
	r.HandleFunc("/api/items/{id:[0-9]+}", h.GetItem).Methods("GET")
	r.HandleFunc("/api/stats", h.GetStats).Methods("GET")
	r.HandleFunc("/api/tax-export", h.TaxExport).Methods("GET")
	// Mutating routes, token-protected when auth is enabled
	mutating := r.PathPrefix("/api").Subrouter()
	if cfg.AuthEnabled() {
		r.HandleFunc("/api/login", h.Login).Methods("POST")
		mutating.Use(middleware.AuthMiddleware(cfg))
	}
	mutating.HandleFunc("/items", h.CreateItem).Methods("POST")
	mutating.HandleFunc("/items/{id:[0-9]+}", h.UpdateItem).Methods("PUT")
	mutating.HandleFunc("/items/{id:[0-9]+}", h.DeleteItem).Methods("DELETE")

	// Background jobs
	sched := scheduler.New(svc, mailer.NewSender(cfg, logger), cfg, logger)
	if err := sched.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Fatalf("Server failed: %v", err)
	case <-quit:
		logger.Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}
	logger.Info("Server exited")
}

// ensureDir creates the directory holding a sqlite database file, mirroring
// how the app bootstraps its instance folder on first run.
func ensureDir(conn string, logger *logrus.Logger) {
	path := strings.TrimPrefix(conn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Fatalf("Failed to create database directory %s: %v", dir, err)
	}
}
