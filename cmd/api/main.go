package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/healthinsure-ai/internal/application"
	"github.com/bryanwahyu/healthinsure-ai/internal/application/assistant"
	"github.com/bryanwahyu/healthinsure-ai/internal/config"
	"github.com/bryanwahyu/healthinsure-ai/internal/domain/audit"
	infraai "github.com/bryanwahyu/healthinsure-ai/internal/infra/ai"
	"github.com/bryanwahyu/healthinsure-ai/internal/infra/ai/prompt"
	mysqlp "github.com/bryanwahyu/healthinsure-ai/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/healthinsure-ai/internal/infra/db/postgres"
	"github.com/bryanwahyu/healthinsure-ai/internal/infra/httpserver"
	"github.com/bryanwahyu/healthinsure-ai/internal/infra/logger"
	"github.com/bryanwahyu/healthinsure-ai/internal/infra/memory"
	"github.com/bryanwahyu/healthinsure-ai/internal/infra/pdf"
	minioStore "github.com/bryanwahyu/healthinsure-ai/internal/infra/storage"
	"github.com/bryanwahyu/healthinsure-ai/internal/middleware"
)

type auditStore interface {
	audit.Repository
	EnsureSchema(ctx context.Context) error
}

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewZapLogger(cfg.Log.FilePath, cfg.Log.Production)
	defer log.Sync()

	ctx := context.Background()

	generator, err := infraai.NewGenerator(cfg.AI)
	if err != nil {
		fatal(log, "ai provider init error", err)
	}

	svc := &assistant.Service{
		Generator: generator,
		Documents: memory.NewDocumentStore(cfg.Documents.TTL),
		Extractor: pdf.NewExtractor(),
		Prompts:   prompt.Builder{MaxDocumentChars: cfg.Prompt.MaxDocumentChars},
		Clock:     application.SystemClock{},
		Log:       log,
	}
	checkers := map[string]middleware.HealthChecker{}

	// audit database is optional
	if cfg.Database.Driver != "" {
		db, repo, err := openAudit(ctx, cfg)
		if err != nil {
			fatal(log, cfg.Database.Driver+" connect error", err)
		}
		defer db.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			fatal(log, "audit schema error", err)
		}
		svc.Audit = repo
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// init minio
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			fatal(log, "minio init error", err)
		}
		svc.Archive = store
		checkers["archive"] = store
	}

	handler := httpserver.NewRouter(svc, httpserver.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		HealthCheckers: checkers,
		Log:            log,
		Provider:       cfg.AI.Provider,
		Model:          cfg.AI.Model,
		DocumentTTL:    cfg.Documents.TTL,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Info("SERVER", "listening", map[string]interface{}{
			"addr":     addr,
			"provider": cfg.AI.Provider,
			"model":    cfg.AI.Model,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal(log, "server error", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("SERVER", "shutting down", nil)

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error("SERVER", "shutdown error", map[string]interface{}{"error": err.Error()})
	}
}

func openAudit(ctx context.Context, cfg *config.Config) (*sql.DB, auditStore, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, postgresp.NewInteractionRepository(db), nil
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, mysqlp.NewInteractionRepository(db), nil
	}
}

func fatal(log logger.Logger, message string, err error) {
	log.Error("SERVER", message, map[string]interface{}{"error": err.Error()})
	_ = log.Sync()
	os.Exit(1)
}
