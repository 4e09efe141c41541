package main

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/quillspace/backend/internal/router"
	"github.com/quillspace/backend/pkg/config"
	"github.com/quillspace/backend/pkg/firebase"
	"github.com/quillspace/backend/pkg/storage"
	"github.com/quillspace/backend/validators"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		logrus.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Initialize blob storage for post images
	blobStore, err := storage.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		logrus.Fatalf("Failed to initialize blob storage: %v", err)
	}

	// Redis backs rate limiting; the limiter fails open, so a missing redis
	// degrades to unlimited rather than refusing to start.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logrus.Warnf("Redis unreachable at %s, rate limiting disabled: %v", cfg.RedisAddr, err)
			rdb = nil
		}
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo, firebaseApp.AuthClient, rdb, blobStore)

	// Start server
	logrus.Infof("Starting server on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
