// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"sync"

	"contenthub/pkg/log"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/robfig/cron"
)

// CronJob is a unit of periodic work.
type CronJob interface {
	Name() string
	Schedule() string
	Run(ctx context.Context)
}

// Runner schedules CronJobs and never runs two instances of the same job
// at once.
type Runner struct {
	cron    *cron.Cron
	jobs    []CronJob
	running mapset.Set[string]
	mu      sync.Mutex
	ctx     context.Context
}

// NewRunner creates a runner whose jobs receive ctx.
func NewRunner(ctx context.Context, jobs ...CronJob) *Runner {
	return &Runner{
		cron:    cron.New(),
		jobs:    jobs,
		running: mapset.NewThreadUnsafeSet[string](),
		ctx:     ctx,
	}
}

// Start registers every job and starts the scheduler goroutine.
func (r *Runner) Start() error {
	for _, job := range r.jobs {
		job := job
		if err := r.cron.AddFunc(job.Schedule(), func() { r.runOnce(job) }); err != nil {
			return fmt.Errorf("schedule job %s: %w", job.Name(), err)
		}
		log.Infow("job scheduled", "job", job.Name(), "schedule", job.Schedule())
	}
	r.cron.Start()
	return nil
}

func (r *Runner) runOnce(job CronJob) {
	r.mu.Lock()
	if !r.running.Add(job.Name()) {
		r.mu.Unlock()
		log.Warnw("job is still running, skipping this tick", "job", job.Name())
		return
	}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running.Remove(job.Name())
		r.mu.Unlock()
	}()
	job.Run(r.ctx)
}

func (r *Runner) Stop() {
	log.Info("stopping scheduled jobs")
	r.cron.Stop()
}
