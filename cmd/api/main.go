package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/bni27/ogp-db-api/internal/assetclass"
	"github.com/bni27/ogp-db-api/internal/auth"
	"github.com/bni27/ogp-db-api/internal/db"
	"github.com/bni27/ogp-db-api/internal/prod"
	"github.com/bni27/ogp-db-api/internal/rawdata"
	"github.com/bni27/ogp-db-api/internal/rcf"
	"github.com/bni27/ogp-db-api/internal/reference"
	"github.com/bni27/ogp-db-api/internal/router"
	"github.com/bni27/ogp-db-api/internal/staging"
	"github.com/bni27/ogp-db-api/internal/storage"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	if os.Getenv("ENV") != "production" {
		_ = godotenv.Load()
	}

	required := []string{
		"JWT_SECRET",
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

	// ───────────────────────── DB ─────────────────────────
	pgDB := db.ConnectPostgres()
	defer pgDB.Close()

	// ───────────────────────── STORAGE ─────────────────────────
	store, err := storage.NewR2Client(context.Background())
	if err != nil {
		log.Fatal("❌ R2 init failed:", err)
	}

	// ───────────────────────── REPOSITORIES ─────────────────────────
	userRepo := auth.NewPostgresUserRepository(pgDB)
	tableRepo := rawdata.NewPostgresRepository(pgDB)
	classRepo := assetclass.NewPostgresRepository(pgDB)
	refRepo := reference.NewPostgresRepository(pgDB)
	stageRepo := staging.NewPostgresRepository(pgDB)
	rcfRepo := rcf.NewPostgresRepository(pgDB)

	// ───────────────────────── SERVICES (ORDER MATTERS) ─────────────────────────
	authService := auth.NewService(userRepo)
	rawService := rawdata.NewService(tableRepo, store)
	classService := assetclass.NewService(classRepo, tableRepo, store)
	refService := reference.NewService(refRepo, reference.NewWorldBankClient())
	stageService := staging.NewService(tableRepo, stageRepo, refService, store)
	prodService := prod.NewService(tableRepo, stageRepo)
	rcfService := rcf.NewService(rcfRepo)

	// ───────────────────────── HANDLERS ─────────────────────────
	handlers := router.Handlers{
		Auth:       auth.NewHandler(authService),
		AssetClass: assetclass.NewHandler(classService),
		RawData:    rawdata.NewHandler(rawService),
		Staging:    staging.NewHandler(stageService),
		Reference:  reference.NewHandler(refService),
		Prod:       prod.NewHandler(prodService),
		RCF:        rcf.NewHandler(rcfService),
	}

	// ───────────────────────── ROUTER ─────────────────────────
	r := router.NewRouter(handlers, pgDB, store)

	// ───────────────────────── START ─────────────────────────
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("🚀 API running at http://localhost:%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("❌ Server failed:", err)
	}
}
