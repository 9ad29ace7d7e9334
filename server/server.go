package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CupBack/cache"
	"CupBack/config"
	"CupBack/core/auth"
	"CupBack/core/identity"
	"CupBack/core/ledger"
	"CupBack/db"
	"CupBack/logger"
	"CupBack/repository"
	"CupBack/storage"

	"github.com/gorilla/mux"
)

// Start initializes dependencies and runs the HTTP server until SIGINT or
// SIGTERM.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogOutput,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	auth.InitJWT(cfg.JWTSecret, cfg.JWTExpiry)

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database with GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.MigrateSchema(); err != nil {
		logger.Fatal("Failed to migrate schema", logger.ErrorField(err))
	}
	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()
	cache.Client = db.RedisClient
	logger.Info("Successfully connected to Redis")

	userRepo := repository.NewMySQLUserRepository(db.DB)
	scanRepo := repository.NewMySQLScanRepository(db.DB)
	postRepo := repository.NewMySQLPostRepository(db.DB)

	resolver := identity.NewResolver(userRepo)
	cupLedger := ledger.New(scanRepo, userRepo, cfg.CO2GramsPerCup)

	codes := ledger.NewCodeValidator(cfg.ValidCodes)
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	if cfg.ValidCodesFile != "" {
		if err := codes.Watch(cfg.ValidCodesFile, stopWatch); err != nil {
			logger.Fatal("Failed to load QR allow-list file", logger.ErrorField(err))
		}
		logger.Info("QR allow-list loaded from file",
			logger.String("path", cfg.ValidCodesFile))
	}

	hubCtx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()
	hub := NewEventHub()
	go hub.Run(hubCtx)

	apiHandler := NewAPIHandler(userRepo, scanRepo, postRepo, resolver, cupLedger, codes, hub, cfg)

	router := mux.NewRouter()

	// CORS middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Auth endpoints
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)

	// Scan ledger and stats
	router.HandleFunc("/api/scan", apiHandler.AuthMiddleware(apiHandler.ScanHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/stats", apiHandler.StatsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/stats/me", apiHandler.AuthMiddleware(apiHandler.UserStatsHandler)).Methods(http.MethodGet)

	// Leaderboards
	router.HandleFunc("/api/rankings", apiHandler.RankingsHandler).Methods(http.MethodGet)

	// Board
	router.HandleFunc("/api/posts", apiHandler.ListPostsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/posts", apiHandler.AuthMiddleware(apiHandler.CreatePostHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/posts/{id}/like", apiHandler.AuthMiddleware(apiHandler.ToggleLikeHandler)).Methods(http.MethodPost)

	// Live change notifications
	router.HandleFunc("/api/events", apiHandler.EventsHandler).Methods(http.MethodGet)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}
