package assetclass

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// Register a new asset class
// --------------------------------------------------
func (r *PostgresRepository) Save(ctx context.Context, class *AssetClass) error {
	query := `
		INSERT INTO meta.asset_classes (name)
		VALUES ($1)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query, class.Name).Scan(&class.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrClassExists
	}
	return err
}

// --------------------------------------------------
// List registered asset classes
// --------------------------------------------------
func (r *PostgresRepository) List(ctx context.Context) ([]*AssetClass, error) {
	query := `
		SELECT name, created_at
		FROM meta.asset_classes
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []*AssetClass

	for rows.Next() {
		var class AssetClass
		if err := rows.Scan(&class.Name, &class.CreatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, &class)
	}

	return classes, rows.Err()
}

// --------------------------------------------------
// Existence check
// --------------------------------------------------
func (r *PostgresRepository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM meta.asset_classes
			WHERE name = $1
		)
	`, name).Scan(&exists)

	return exists, err
}

// --------------------------------------------------
// Deregister an asset class
// --------------------------------------------------
func (r *PostgresRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM meta.asset_classes WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClassNotFound
	}
	return nil
}
