package main

import (
	"context"
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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slopeoasis/postmarket/internal/config"
	"github.com/slopeoasis/postmarket/internal/db"
	"github.com/slopeoasis/postmarket/internal/events"
	"github.com/slopeoasis/postmarket/internal/handlers"
	"github.com/slopeoasis/postmarket/internal/middleware"
	"github.com/slopeoasis/postmarket/internal/posts"
	"github.com/slopeoasis/postmarket/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.S3Bucket == "" {
		logger.Error("S3_BUCKET is required")
		os.Exit(1)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	if err := db.Migrate(conn); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Error("aws config failed", "error", err)
		os.Exit(1)
	}
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	store := storage.NewS3Storage(s3Client, cfg.S3Bucket)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		rmq, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("rabbitmq connection failed", "error", err)
			os.Exit(1)
		}
		defer rmq.Close()
		publisher = rmq
	} else {
		logger.Warn("RABBITMQ_URL not set, entitlement events disabled")
	}

	repo := posts.NewPostgresRepository(conn)
	svc := posts.NewService(repo, store, publisher, posts.LinkConfig{
		DefaultMinutes: cfg.LinkDefaultMinutes,
		MinMinutes:     cfg.LinkMinMinutes,
		MaxMinutes:     cfg.LinkMaxMinutes,
	}, logger)
	h := handlers.NewPostsHandler(svc, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.Health(&handlers.HealthDeps{
		DB:          conn,
		Storage:     store,
		RabbitMQURL: cfg.RabbitMQURL,
	}))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /assets", h.UploadAsset())
	mux.HandleFunc("POST /posts", h.Create())
	mux.HandleFunc("GET /posts/{id}", h.Get())
	mux.HandleFunc("PUT /posts/{id}", h.Edit())
	mux.HandleFunc("PUT /posts/{id}/status", h.ChangeStatus())
	mux.HandleFunc("PUT /posts/{id}/file", h.ReplaceFile())
	mux.HandleFunc("GET /posts/{id}/availability", h.Availability())
	mux.HandleFunc("GET /posts/{id}/entitlement", h.Entitlement())
	mux.HandleFunc("GET /posts/{id}/link", h.Link())
	mux.HandleFunc("GET /posts/{id}/public-link", h.PublicLink())
	mux.HandleFunc("GET /posts/{id}/asset-metadata", h.AssetMetadata())
	mux.HandleFunc("POST /posts/{id}/ratings", h.SubmitRating())
	mux.HandleFunc("GET /posts/{id}/ratings", h.Ratings())
	mux.HandleFunc("GET /posts/{id}/ratings/summary", h.RatingSummary())
	mux.HandleFunc("GET /posts/seller/{sellerID}", h.BySeller())
	mux.HandleFunc("GET /posts/buyer/{buyerID}", h.ByBuyer())
	mux.HandleFunc("GET /posts/tag/{tag}", h.ByTag())
	mux.HandleFunc("GET /posts/search/title", h.SearchTitle())
	mux.HandleFunc("GET /posts/search/asset", h.SearchAsset())

	internal := http.NewServeMux()
	internal.HandleFunc("POST /internal/posts/{id}/grant", h.Grant())
	mux.Handle("POST /internal/", middleware.InternalAPIKey(cfg.InternalAPIKey)(internal))

	handler := middleware.RequestID(
		middleware.Metrics(
			middleware.Logging(logger)(
				middleware.Identity(mux))))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
