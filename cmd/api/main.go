package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/lib/pq"

	"github.com/inkwell-sh/inkwell/internal/blog"
	"github.com/inkwell-sh/inkwell/internal/config"
	"github.com/inkwell-sh/inkwell/internal/events"
	"github.com/inkwell-sh/inkwell/internal/handlers"
	"github.com/inkwell-sh/inkwell/internal/middleware"
	"github.com/inkwell-sh/inkwell/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("open database failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	cancel()

	var store storage.Storage
	if cfg.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("load aws config failed", "error", err)
			os.Exit(1)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.S3Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.S3Endpoint)
				o.UsePathStyle = true
			}
		})
		store = storage.NewS3Storage(client, cfg.S3Bucket)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		rmq, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("connect rabbitmq failed", "error", err)
			os.Exit(1)
		}
		defer rmq.Close()
		publisher = rmq
	}

	svc := blog.NewService(blog.NewPostgresRepository(db), store, publisher,
		cfg.S3Bucket, cfg.AWSRegion, cfg.S3PublicURL, logger)
	postsHandler := handlers.NewPostsHandler(svc, logger)
	categoriesHandler := handlers.NewCategoriesHandler(svc, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.Health(&handlers.HealthDeps{
		DB:          db,
		Storage:     store,
		RabbitMQURL: cfg.RabbitMQURL,
	}))
	mux.HandleFunc("GET /categories", categoriesHandler.List())
	mux.HandleFunc("GET /posts", postsHandler.List())
	mux.HandleFunc("POST /posts", postsHandler.Create())
	mux.HandleFunc("GET /posts/{slug}", postsHandler.GetBySlug())
	mux.HandleFunc("PATCH /posts/{id}", postsHandler.Update())
	mux.HandleFunc("DELETE /posts/{id}", postsHandler.Delete())
	mux.HandleFunc("GET /authors/{author_id}/posts", postsHandler.ListByAuthor())
	if store != nil {
		uploadsHandler := handlers.NewUploadsHandler(store, cfg.S3Bucket, cfg.AWSRegion, cfg.S3PublicURL, logger)
		mux.HandleFunc("POST /uploads", uploadsHandler.Create())
	}

	var handler http.Handler = mux
	handler = middleware.APIKey(cfg.APIKey)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("inkwell api started", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
