package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitlink-backend/internal/config"
	"habitlink-backend/internal/handlers"
	"habitlink-backend/internal/middleware"
	"habitlink-backend/internal/repository"
	"habitlink-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	habitRepo := repository.NewHabitRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	postRepo := repository.NewPostRepository(db)

	// Initialize services
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	userService := services.NewUserService(userRepo, cfg.JWT.Secret)
	friendService := services.NewFriendService(userRepo)
	habitService := services.NewHabitService(habitRepo, userRepo, rng)
	communityService := services.NewCommunityService(communityRepo, userRepo, habitService)
	postService := services.NewPostService(postRepo, habitRepo, userRepo)
	uploadService, err := services.NewUploadService(
		context.Background(),
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create upload service")
	}
	wsHub := services.NewWSHub()

	// Push is optional; the friend handler tolerates a nil notifier.
	var notifier *services.PushNotifier
	if cfg.APNs.CertFile != "" {
		notifier, err = services.NewPushNotifier(
			cfg.APNs.CertFile,
			cfg.APNs.CertPassword,
			cfg.APNs.Topic,
			cfg.APNs.Production,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create push notifier")
		}
	}

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	friendHandler := handlers.NewFriendHandler(friendService, userService, wsHub, notifier)
	habitHandler := handlers.NewHabitHandler(habitService)
	communityHandler := handlers.NewCommunityHandler(communityService)
	postHandler := handlers.NewPostHandler(postService, userService, uploadService, wsHub)
	wsHandler := handlers.NewWebSocketHandler(wsHub, userService, friendService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", userHandler.Register)
		r.Post("/auth/login", userHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Get("/users", userHandler.SearchUsers)
			r.Get("/users/{user_id}", userHandler.GetUser)
			r.Put("/users/{user_id}", userHandler.UpdateUser)
			r.Put("/users/me/push-token", userHandler.UpdatePushToken)

			r.Get("/friends", friendHandler.ListFriends)
			r.Get("/friends/requests", friendHandler.ListRequests)
			r.Post("/friends/request", friendHandler.SendRequest)
			r.Post("/friends/accept", friendHandler.AcceptRequest)
			r.Post("/friends/reject", friendHandler.RejectRequest)
			r.Delete("/friends/{friend_id}", friendHandler.RemoveFriend)

			r.Post("/habits", habitHandler.CreateHabit)
			r.Get("/habits", habitHandler.ListHabits)
			r.Put("/habits/{habit_id}/complete", habitHandler.CompleteHabit)
			r.Delete("/habits/{habit_id}", habitHandler.DeleteHabit)

			r.Post("/communities", communityHandler.CreateCommunity)
			r.Get("/communities", communityHandler.ListCommunities)
			r.Post("/communities/{community_id}/join", communityHandler.JoinCommunity)
			r.Post("/communities/{community_id}/leave", communityHandler.LeaveCommunity)
			r.Delete("/communities/{community_id}", communityHandler.DeleteCommunity)

			r.Post("/posts", postHandler.CreatePost)
			r.Get("/posts", postHandler.Feed)
			r.Post("/posts/upload", postHandler.UploadImage)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
