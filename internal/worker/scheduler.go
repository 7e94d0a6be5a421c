package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultCron runs the pipeline nightly at 02:00 UTC.
const DefaultCron = "0 2 * * *"

// RunScheduled runs the pipeline on a cron schedule until ctx is
// cancelled. SingletonMode keeps a slow run from overlapping the next
// scheduled one.
func (r *Runner) RunScheduled(ctx context.Context, cronExpr string, refreshReference bool) error {
	scheduler := gocron.NewScheduler(time.UTC)

	_, err := scheduler.Cron(cronExpr).SingletonMode().Do(func() {
		run, err := r.RunOnce(ctx, refreshReference)
		if err != nil {
			log.Printf("[WORKER] ❌ scheduled run failed to start: %v", err)
			return
		}
		if run.Status != StatusSuccess {
			log.Printf("[WORKER] ⚠️ scheduled run finished with status=%s", run.Status)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling pipeline with cron %q: %w", cronExpr, err)
	}

	log.Printf("[WORKER] 🚀 scheduler started cron=%q", cronExpr)
	scheduler.StartAsync()

	<-ctx.Done()

	scheduler.Stop()
	log.Println("[WORKER] scheduler stopped")
	return nil
}
