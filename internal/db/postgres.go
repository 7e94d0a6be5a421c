package db

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schemas the pipeline writes to. Raw and stage come in a verified and an
// unverified flavor; prod only ever holds verified data.
var Schemas = []string{
	"raw_verified",
	"raw_unverified",
	"stage_verified",
	"stage_unverified",
	"reference",
	"prod",
	"meta",
}

func verifiedName(verified bool) string {
	if verified {
		return "verified"
	}
	return "unverified"
}

// RawSchema names the schema raw dataset tables load into.
func RawSchema(verified bool) string {
	return "raw_" + verifiedName(verified)
}

// StageSchema names the schema staged tables are built in.
func StageSchema(verified bool) string {
	return "stage_" + verifiedName(verified)
}

func ConnectPostgres() *pgxpool.Pool {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatal(err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal("Postgres connection failed:", err)
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize schema
	if err := initSchema(db); err != nil {
		log.Fatal("Failed to initialize schema:", err)
	}

	return db
}

// initSchema creates or updates the database schema
func initSchema(db *pgxpool.Pool) error {
	ctx := context.Background()

	for _, schema := range Schemas {
		if _, err := db.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
			return err
		}
	}

	// -------------------------------
	// USERS
	// -------------------------------
	userTableSQL := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'VIEWER',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(ctx, userTableSQL); err != nil {
		return err
	}

	// -------------------------------
	// ASSET CLASS REGISTRY
	// -------------------------------
	assetClassSQL := `
		CREATE TABLE IF NOT EXISTS meta.asset_classes (
			name VARCHAR(255) PRIMARY KEY,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(ctx, assetClassSQL); err != nil {
		return err
	}

	// -------------------------------
	// STAGE RUN LOG
	// -------------------------------
	stageRunsSQL := `
		CREATE TABLE IF NOT EXISTS meta.stage_runs (
			id UUID PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'in_progress',
			asset_classes_total INTEGER NOT NULL DEFAULT 0,
			asset_classes_failed INTEGER NOT NULL DEFAULT 0,
			rows_staged INTEGER NOT NULL DEFAULT 0,
			rows_prod INTEGER NOT NULL DEFAULT 0,
			error_message TEXT NULL,
			execution_time_seconds DOUBLE PRECISION NULL
		)
	`
	if _, err := db.Exec(ctx, stageRunsSQL); err != nil {
		return err
	}

	// -------------------------------
	// REFERENCE TABLES
	// -------------------------------
	referenceSQL := `
		CREATE TABLE IF NOT EXISTS reference.countries (
			country_code VARCHAR(3) PRIMARY KEY,
			country_name VARCHAR(255) NOT NULL,
			subregion VARCHAR(255) NULL
		);

		CREATE TABLE IF NOT EXISTS reference.exchange_rates (
			country_code VARCHAR(3) NOT NULL,
			year INTEGER NOT NULL,
			exchange_rate DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (country_code, year)
		);

		CREATE TABLE IF NOT EXISTS reference.ppp (
			country_code VARCHAR(3) NOT NULL,
			year INTEGER NOT NULL,
			exchange_rate DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (country_code, year)
		);

		CREATE TABLE IF NOT EXISTS reference.gdp_deflators (
			country_code VARCHAR(3) NOT NULL,
			year INTEGER NOT NULL,
			deflation_factor DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (country_code, year)
		);
	`
	if _, err := db.Exec(ctx, referenceSQL); err != nil {
		return err
	}

	log.Println("✅ Schema initialized successfully")
	return nil
}

// --------------------------------------------------
// Advisory locks for table rebuilds
// --------------------------------------------------

// LockKey hashes a schema-qualified table name into an advisory lock key.
func LockKey(schema, table string) int64 {
	h := fnv.New64a()
	h.Write([]byte(schema + "." + table))
	return int64(h.Sum64())
}

// AcquireRebuildLock blocks until the rebuild lock for schema.table is held
// by the given transaction. The lock is released on commit or rollback.
func AcquireRebuildLock(ctx context.Context, tx pgx.Tx, schema, table string) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", LockKey(schema, table))
	return err
}
