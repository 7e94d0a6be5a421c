package worker

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRunLogRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRunLogRepository(db *pgxpool.Pool) *PostgresRunLogRepository {
	return &PostgresRunLogRepository{db: db}
}

func (r *PostgresRunLogRepository) Start(ctx context.Context, run *RunLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO meta.stage_runs (id, started_at, status)
		VALUES ($1, $2, $3)
	`,
		run.ID,
		run.StartedAt,
		run.Status,
	)
	return err
}

func (r *PostgresRunLogRepository) Finish(ctx context.Context, run *RunLog) error {
	_, err := r.db.Exec(ctx, `
		UPDATE meta.stage_runs
		SET finished_at = $2,
			status = $3,
			asset_classes_total = $4,
			asset_classes_failed = $5,
			rows_staged = $6,
			rows_prod = $7,
			error_message = $8,
			execution_time_seconds = $9
		WHERE id = $1
	`,
		run.ID,
		run.FinishedAt,
		run.Status,
		run.AssetClassesTotal,
		run.AssetClassesFailed,
		run.RowsStaged,
		run.RowsProd,
		run.ErrorMessage,
		run.ExecutionTimeSeconds,
	)
	return err
}
