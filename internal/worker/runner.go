package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bni27/ogp-db-api/internal/assetclass"
	"github.com/bni27/ogp-db-api/internal/prod"
	"github.com/bni27/ogp-db-api/internal/staging"
)

// Narrow views of the pipeline services, so runs can be exercised
// without a database.
type (
	ClassLister interface {
		List(ctx context.Context) ([]*assetclass.AssetClass, error)
	}
	RawLoader interface {
		LoadAssetClass(ctx context.Context, assetClass string, verified bool) ([]string, map[string]string, error)
	}
	Stager interface {
		Stage(ctx context.Context, assetClass string, verified bool) (*staging.Result, error)
	}
	ProdUpdater interface {
		Update(ctx context.Context) (*prod.Result, error)
	}
	ReferenceUpdater interface {
		UpdateAll(ctx context.Context) error
	}
)

// --------------------------------------------------
// PIPELINE RUNNER
// --------------------------------------------------

// Runner executes the full pipeline: optionally refresh the reference
// tables, then load and stage every registered asset class in both
// areas, then rebuild the production table. Every run is recorded in
// meta.stage_runs.
type Runner struct {
	classes ClassLister
	raws    RawLoader
	stage   Stager
	prods   ProdUpdater
	refs    ReferenceUpdater
	runs    RunLogRepository
}

func NewRunner(
	classes ClassLister,
	raws RawLoader,
	stage Stager,
	prods ProdUpdater,
	refs ReferenceUpdater,
	runs RunLogRepository,
) *Runner {
	return &Runner{
		classes: classes,
		raws:    raws,
		stage:   stage,
		prods:   prods,
		refs:    refs,
		runs:    runs,
	}
}

// RunOnce executes one pipeline run. A failing asset class is counted
// and logged but does not stop the remaining classes; the run as a
// whole is failed if anything failed.
func (r *Runner) RunOnce(ctx context.Context, refreshReference bool) (*RunLog, error) {
	run := &RunLog{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
		Status:    StatusInProgress,
	}
	if err := r.runs.Start(ctx, run); err != nil {
		return nil, fmt.Errorf("recording run start: %w", err)
	}

	log.Printf("[WORKER] 🚀 pipeline run started id=%s", run.ID)

	var runErrs []string

	if refreshReference {
		if err := r.refs.UpdateAll(ctx); err != nil {
			log.Printf("[WORKER] ❌ reference refresh failed: %v", err)
			return r.finish(ctx, run, append(runErrs, err.Error()))
		}
	}

	classes, err := r.classes.List(ctx)
	if err != nil {
		log.Printf("[WORKER] ❌ listing asset classes failed: %v", err)
		return r.finish(ctx, run, append(runErrs, err.Error()))
	}
	run.AssetClassesTotal = len(classes)

	for _, class := range classes {
		if err := r.runClass(ctx, run, class.Name); err != nil {
			run.AssetClassesFailed++
			runErrs = append(runErrs, fmt.Sprintf("%s: %v", class.Name, err))
			log.Printf("[WORKER] ❌ asset class failed name=%s err=%v", class.Name, err)
		}
	}

	result, err := r.prods.Update(ctx)
	switch {
	case errors.Is(err, prod.ErrNoStageTables):
		log.Printf("[WORKER] ⚠️ nothing staged, skipping production rebuild")
	case err != nil:
		runErrs = append(runErrs, fmt.Sprintf("prod: %v", err))
		log.Printf("[WORKER] ❌ production rebuild failed: %v", err)
	default:
		run.RowsProd = result.RowsPublished
	}

	return r.finish(ctx, run, runErrs)
}

// runClass loads and stages one asset class in both areas. An area with
// no raw tables is skipped, not failed; a class with no stageable data
// anywhere is left alone entirely.
func (r *Runner) runClass(ctx context.Context, run *RunLog, name string) error {
	for _, verified := range []bool{true, false} {
		loaded, failedFiles, err := r.raws.LoadAssetClass(ctx, name, verified)
		if err != nil {
			return fmt.Errorf("loading raw tables: %w", err)
		}
		for file, reason := range failedFiles {
			log.Printf("[WORKER] ⚠️ file skipped class=%s file=%s reason=%s", name, file, reason)
		}
		if len(loaded) == 0 && len(failedFiles) == 0 {
			continue
		}

		result, err := r.stage.Stage(ctx, name, verified)
		if errors.Is(err, staging.ErrNoRawTables) {
			continue
		}
		if err != nil {
			return fmt.Errorf("staging: %w", err)
		}
		run.RowsStaged += result.RowsStaged
	}
	return nil
}

func (r *Runner) finish(ctx context.Context, run *RunLog, runErrs []string) (*RunLog, error) {
	finished := time.Now().UTC()
	elapsed := finished.Sub(run.StartedAt).Seconds()

	run.FinishedAt = &finished
	run.ExecutionTimeSeconds = &elapsed
	run.Status = StatusSuccess
	if len(runErrs) > 0 {
		run.Status = StatusFailed
		msg := strings.Join(runErrs, "; ")
		run.ErrorMessage = &msg
	}

	if err := r.runs.Finish(ctx, run); err != nil {
		log.Printf("[WORKER] ⚠️ failed to record run result: %v", err)
	}

	log.Printf("[WORKER] run finished id=%s status=%s staged=%d prod=%d failed_classes=%d elapsed=%.1fs",
		run.ID, run.Status, run.RowsStaged, run.RowsProd, run.AssetClassesFailed, elapsed)

	return run, nil
}
