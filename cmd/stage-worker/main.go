package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bni27/ogp-db-api/internal/assetclass"
	"github.com/bni27/ogp-db-api/internal/db"
	"github.com/bni27/ogp-db-api/internal/prod"
	"github.com/bni27/ogp-db-api/internal/rawdata"
	"github.com/bni27/ogp-db-api/internal/reference"
	"github.com/bni27/ogp-db-api/internal/staging"
	"github.com/bni27/ogp-db-api/internal/storage"
	"github.com/bni27/ogp-db-api/internal/worker"
)

func main() {
	mode := flag.String("mode", "once", "run mode: once or scheduled")
	refreshReference := flag.Bool("refresh-reference", false, "refresh reference tables before staging")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, using environment variables")
	}

	required := []string{
		"DATABASE_URL",
		"R2_ACCESS_KEY",
		"R2_SECRET_KEY",
		"R2_BUCKET_NAME",
		"R2_ENDPOINT",
		"R2_PUBLIC_BASE_URL",
	}

	for _, k := range required {
		if os.Getenv(k) == "" {
			log.Fatalf("❌ Missing env var: %s", k)
		}
	}

	log.Println("🚀 Stage worker starting...")

	pgDB := db.ConnectPostgres()
	defer pgDB.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("⚠️ received %s, shutting down", sig)
		cancel()
	}()

	store, err := storage.NewR2Client(ctx)
	if err != nil {
		log.Fatal("❌ R2 init failed:", err)
	}

	tableRepo := rawdata.NewPostgresRepository(pgDB)
	classRepo := assetclass.NewPostgresRepository(pgDB)
	stageRepo := staging.NewPostgresRepository(pgDB)

	rawService := rawdata.NewService(tableRepo, store)
	refService := reference.NewService(reference.NewPostgresRepository(pgDB), reference.NewWorldBankClient())
	stageService := staging.NewService(tableRepo, stageRepo, refService, store)
	prodService := prod.NewService(tableRepo, stageRepo)

	runner := worker.NewRunner(
		classRepo,
		rawService,
		stageService,
		prodService,
		refService,
		worker.NewPostgresRunLogRepository(pgDB),
	)

	switch *mode {
	case "once":
		run, err := runner.RunOnce(ctx, *refreshReference)
		if err != nil {
			log.Fatalf("❌ Pipeline run failed to start: %v", err)
		}
		if run.Status != worker.StatusSuccess {
			os.Exit(1)
		}

	case "scheduled":
		cronExpr := os.Getenv("STAGE_CRON")
		if cronExpr == "" {
			cronExpr = worker.DefaultCron
		}
		if err := runner.RunScheduled(ctx, cronExpr, *refreshReference); err != nil {
			log.Fatalf("❌ Scheduler failed: %v", err)
		}

	default:
		log.Fatalf("❌ Unknown mode: %s (use once or scheduled)", *mode)
	}
}
