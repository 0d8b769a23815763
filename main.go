package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kevinaaaquil/readingbud/backend/auth"
	"github.com/kevinaaaquil/readingbud/backend/config"
	"github.com/kevinaaaquil/readingbud/backend/handlers"
	"github.com/kevinaaaquil/readingbud/backend/jobs"
	"github.com/kevinaaaquil/readingbud/backend/logger"
	"github.com/kevinaaaquil/readingbud/backend/middleware"
	"github.com/kevinaaaquil/readingbud/backend/service"
	"github.com/kevinaaaquil/readingbud/backend/store"
	"github.com/kevinaaaquil/readingbud/backend/store/memory"
	"github.com/kevinaaaquil/readingbud/backend/validation"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{
		Format:      cfg.LogFormat,
		Environment: cfg.Env,
		Level:       logger.ParseLevel(cfg.LogLevel),
	})
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	var st service.Store
	switch cfg.StorageDriver {
	case config.DriverMemory:
		log.Warn("using in-memory storage; data is lost on restart")
		st = memory.New()
	default:
		db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName, log)
		if err != nil {
			return fmt.Errorf("mongodb: %w", err)
		}
		defer func() {
			if err := db.Disconnect(context.Background()); err != nil {
				log.Warn("mongodb disconnect", "error", err)
			}
		}()
		if err := db.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongodb indexes: %w", err)
		}
		st = db
	}

	var images service.ImageStore
	if cfg.S3Bucket != "" {
		s3, err := service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			return fmt.Errorf("s3: %w", err)
		}
		images = s3
	} else {
		disk, err := service.NewDiskImageStore(cfg.UploadDir)
		if err != nil {
			return fmt.Errorf("upload dir: %w", err)
		}
		log.Info("AWS_S3_BUCKET not set; storing images on disk", "dir", cfg.UploadDir)
		images = disk
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("tokens: %w", err)
	}
	validator := validation.New()
	svc := service.New(service.Deps{
		Store:     st,
		Images:    images,
		Hasher:    auth.NewBcryptHasher(0),
		Tokens:    tokens,
		Validator: validator,
		Logger:    log,
	})

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := svc.Identity.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("admin bootstrap: %w", err)
		}
	}

	if cfg.ReconcileInterval > 0 {
		job := jobs.NewReconcileJob(svc.Reconciler, cfg.ReconcileInterval, log.With("component", "jobs"))
		job.Start()
		defer job.Stop()
	}

	authLimiter := middleware.NewKeyedLimiter(cfg.AuthRatePerMinute)
	defer authLimiter.Stop()

	router := handlers.NewRouter(handlers.RouterDeps{
		Services:       svc,
		Tokens:         tokens,
		Validator:      validator,
		Logger:         log,
		AuthLimiter:    authLimiter,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", server.Addr, "env", cfg.Env, "storage", cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
