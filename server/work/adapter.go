package work

import (
	"errors"
	"fmt"

	"github.com/Daskott/addressbook/server/cron"
	"github.com/Daskott/addressbook/server/models"
	"github.com/go-co-op/gocron"
)

const MAX_CONCURRENCY = 2

var (
	defaultSleepBackoffsInSeconds = []int64{0, 10, 100, 120}
	testSleepBackoffsInSeconds    = []int64{0, 1}
)

type WorkerPoolAdapter struct {
	cronScheduler *gocron.Scheduler
	pool          *WorkerPool
}

// NewWorkerAdapter returns a worker pool whose periodic jobs run in 'timeZone'.
// 'testMode' shortens the idle polling backoff.
func NewWorkerAdapter(timeZone string, testMode bool) *WorkerPoolAdapter {
	backoffs := defaultSleepBackoffsInSeconds
	if testMode {
		backoffs = testSleepBackoffsInSeconds
	}

	return &WorkerPoolAdapter{
		cronScheduler: cron.NewCronScheduler(timeZone),
		pool:          newWorkerPool(MAX_CONCURRENCY, backoffs),
	}
}

// Start starts the cron scheduler & worker pool
func (adapter *WorkerPoolAdapter) Start() {
	logg.Info("Starting cron scheduler & worker pool")
	adapter.cronScheduler.StartAsync()
	adapter.pool.start()
}

// Stop stops the cron scheduler & worker pool
func (adapter *WorkerPoolAdapter) Stop() {
	logg.Info("Stopping cron scheduler & worker pool")
	adapter.cronScheduler.Stop()
	adapter.pool.stop()
}

// Register binds a name to a handler.
func (adapter *WorkerPoolAdapter) Register(name string, handler Handler) error {
	return adapter.pool.registerHandler(name, handler)
}

// Perform sends a new job to the queue, now - to be executed as soon as a worker is available
func (adapter *WorkerPoolAdapter) Perform(job JobParams) error {
	logg.Infof("Enqueuing job: %v", job.Name)

	err := adapter.pool.enqueue(job)
	if errors.Is(err, models.ErrDuplicateJob) {
		logg.Warnf("Duplicate job already in queue for: %v", job.Name)
		return nil
	}

	if err != nil {
		return fmt.Errorf("error enqueuing job: %v, %v", job.Name, err)
	}

	return nil
}

// PeriodicallyPerform adds a job to the queue (to be executed)
// periodically, based on the 'cronExpression' expression provided.
// An existing periodic job with the same name is replaced.
func (adapter *WorkerPoolAdapter) PeriodicallyPerform(cronExpression string, job JobParams) error {
	adapter.RemovePeriodicJob(job.Name)

	_, err := adapter.cronScheduler.Cron(cronExpression).Tag(job.Name).
		Do(
			func(job JobParams) {
				err := adapter.Perform(job)
				if err != nil {
					logg.Error(err)
				}
			},
			job,
		)
	if err != nil {
		return fmt.Errorf("error scheduling job: %v, %v", job.Name, err)
	}

	return nil
}

func (adapter *WorkerPoolAdapter) RemovePeriodicJob(jobName string) {
	// gocron returns an error when no job has the tag, which is fine here
	_ = adapter.cronScheduler.RemoveByTag(jobName)
}
