package work

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/Daskott/addressbook/server/models"
	"github.com/pkg/errors"
)

type WorkerPool struct {
	handlers    map[string]Handler
	workers     []*worker
	requeuer    *requeuer
	concurrency int
	started     bool
	mu          sync.Mutex
}

func newWorkerPool(concurrency int, sleepBackoffsInSeconds []int64) *WorkerPool {
	wp := WorkerPool{
		handlers:    make(map[string]Handler),
		concurrency: concurrency,
		requeuer:    newRequeuer(STUCK_JOB_MINUTES),
	}

	for i := 0; i < concurrency; i++ {
		wp.workers = append(wp.workers, newWorker(sleepBackoffsInSeconds))
	}

	return &wp
}

// registerHandler binds a name to a job handler for all workers in pool
func (wp *WorkerPool) registerHandler(name string, handler Handler) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if _, ok := wp.handlers[name]; ok {
		return ErrDuplicateHandler
	}

	if wp.started {
		return fmt.Errorf("can't register handler %v after the pool has started", name)
	}

	wp.handlers[name] = handler
	for _, worker := range wp.workers {
		err := worker.registerHandler(name, handler)

		// Only fail if we get an error that is unexpected i.e !ErrDuplicateHandler
		if err != nil && !errors.Is(err, ErrDuplicateHandler) {
			return err
		}
	}

	return nil
}

// enqueue adds a job to the queue(to be executed) by creating a DB record based on 'JobParams' provided
func (wp *WorkerPool) enqueue(job JobParams) error {
	if strings.TrimSpace(job.Name) == "" || strings.TrimSpace(job.Handler) == "" {
		return fmt.Errorf("both a name & handler is required for a job")
	}

	argsAsJson, err := json.Marshal(job.Args)
	if err != nil {
		return errors.Wrap(err, "marshal job args")
	}

	// This ensures that all jobs currently in the queue or in-progress are unique
	return models.CreateUniqueJobByName(job.Name, job.Handler, string(argsAsJson))
}

// start starts all workers in pool i.e the workers can start processing jobs
func (wp *WorkerPool) start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.started {
		return
	}
	wp.started = true

	for _, worker := range wp.workers {
		worker.start()
	}
	wp.requeuer.start()
}

// stop stops all workers in pool i.e jobs will stop being processed
func (wp *WorkerPool) stop() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.started {
		return
	}

	wg := sync.WaitGroup{}
	for _, w := range wp.workers {
		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			w.stop()
		}(w)
	}
	wg.Wait()

	wp.requeuer.stop()
	wp.started = false
}
