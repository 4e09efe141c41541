package router

import (
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/quillspace/backend/internal/handlers"
	"github.com/quillspace/backend/internal/middleware"
	"github.com/quillspace/backend/internal/models"
	"github.com/quillspace/backend/internal/repositories"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	logrus.Info("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client, rdb *redis.Client, blobStore handlers.BlobStore) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.PostLike{},
		&models.CommentLike{},
		&models.Follow{},
		&models.Notification{},
		&models.Message{},
	)
	if err != nil {
		logrus.Fatalf("Failed to auto migrate models: %v", err)
	}
	logrus.Info("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgClient.Database("quillspace"))
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	postLikeRepo := repositories.NewPostgresPostLikeRepository(pgdb)
	commentLikeRepo := repositories.NewPostgresCommentLikeRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	messageRepo := repositories.NewPostgresMessageRepository(pgdb)

	notifier := handlers.NewNotifier(notificationRepo)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authGroup.Use(middleware.RateLimit(rdb, 20, time.Minute))
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	logrus.Info("Auth routes configured.")

	// --- Protected routes (require a verified Firebase ID token) ---
	api := e.Group("/api/v1")
	api.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient))
	api.Use(middleware.RateLimit(rdb, 120, time.Minute))
	logrus.Info("Firebase authentication middleware applied to /api/v1 group.")

	// User profile and discovery routes
	userHandler := handlers.NewUserHandler(userRepo, followRepo, commentRepo, postRepo, messageRepo)
	userHandler.RegisterUserRoutes(api)
	logrus.Info("User routes configured.")

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, userRepo, commentRepo, postLikeRepo, followRepo, blobStore, notifier)
	postHandler.RegisterPostRoutes(api)
	logrus.Info("Post routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, commentLikeRepo, notifier)
	commentHandler.RegisterCommentRoutes(api)
	logrus.Info("Comment routes configured.")

	// Like routes
	likeHandler := handlers.NewLikeHandler(postLikeRepo, postRepo, userRepo, notifier)
	likeHandler.RegisterLikeRoutes(api)
	logrus.Info("Like routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notifier)
	followHandler.RegisterFollowRoutes(api)
	logrus.Info("Follow routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	logrus.Info("Notification routes configured.")

	// Direct message routes
	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo)
	messageHandler.RegisterMessageRoutes(api)
	logrus.Info("Message routes configured.")

	logrus.Info("All routes configured.")
}
