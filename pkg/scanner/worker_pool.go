package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnana997/rjt/pkg/util"
)

// FileJob is a file to be processed by the worker pool.
type FileJob struct {
	FilePath string
	JobID    int
}

// FileResult is the outcome of one job. Err is set when the handler failed.
type FileResult[T any] struct {
	FilePath string
	JobID    int
	Value    T
	Err      error
}

// Handler processes one file.
type Handler[T any] func(ctx context.Context, filePath string) (T, error)

// WorkerPool runs a handler over files on a fixed set of goroutines.
//
// Usage:
//
//	pool := NewWorkerPool(0, handler, logger)
//	pool.Start()
//	go func() {
//	    for i, f := range files {
//	        pool.Submit(FileJob{FilePath: f, JobID: i})
//	    }
//	    pool.FinishSubmitting()
//	}()
//	for result := range pool.Results() {
//	    ...
//	}
//
// Results is closed once every submitted job has been processed.
type WorkerPool[T any] struct {
	numWorkers int
	jobs       chan FileJob
	results    chan FileResult[T]
	handler    Handler[T]
	logger     *slog.Logger
	wg         sync.WaitGroup

	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	jobsClosed atomic.Bool

	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// NewWorkerPool creates a pool. numWorkers 0 uses util.GetOptimalPoolSize,
// which is also the parser pool size, so workers never wait for a parser.
func NewWorkerPool[T any](numWorkers int, handler Handler[T], logger *slog.Logger) *WorkerPool[T] {
	numWorkers = util.GetOptimalPoolSizeWithOverride(numWorkers)
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool[T]{
		numWorkers: numWorkers,
		jobs:       make(chan FileJob, numWorkers*2),
		results:    make(chan FileResult[T], numWorkers),
		handler:    handler,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start spawns the workers. It must be called before submitting jobs.
func (wp *WorkerPool[T]) Start() {
	if !wp.started.CompareAndSwap(false, true) {
		wp.logger.Warn("WorkerPool already started")
		return
	}

	wp.logger.Debug("Starting worker pool", "workers", wp.numWorkers)
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}

	go func() {
		wp.wg.Wait()
		close(wp.results)
	}()
}

func (wp *WorkerPool[T]) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.process(id, job)
		}
	}
}

func (wp *WorkerPool[T]) process(workerID int, job FileJob) {
	value, err := wp.handler(wp.ctx, job.FilePath)
	if err != nil {
		wp.jobsFailed.Add(1)
		wp.logger.Debug("Job failed", "worker_id", workerID, "file", job.FilePath, "error", err)
	} else {
		wp.jobsProcessed.Add(1)
	}

	select {
	case wp.results <- FileResult[T]{FilePath: job.FilePath, JobID: job.JobID, Value: value, Err: err}:
	case <-wp.ctx.Done():
	}
}

// Submit enqueues a job. It blocks while the queue is full.
func (wp *WorkerPool[T]) Submit(job FileJob) error {
	if wp.jobsClosed.Load() {
		return fmt.Errorf("worker pool is not accepting jobs")
	}

	select {
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool cancelled")
	case wp.jobs <- job:
		wp.jobsSubmitted.Add(1)
		return nil
	}
}

// FinishSubmitting signals that no more jobs will be submitted. Safe to call
// more than once.
func (wp *WorkerPool[T]) FinishSubmitting() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}
}

// Results returns the results channel.
func (wp *WorkerPool[T]) Results() <-chan FileResult[T] {
	return wp.results
}

// Stop cancels pending work and waits for the workers to exit.
func (wp *WorkerPool[T]) Stop() {
	wp.FinishSubmitting()
	wp.cancel()
	wp.wg.Wait()

	wp.logger.Debug("Worker pool stopped",
		"jobs_submitted", wp.jobsSubmitted.Load(),
		"jobs_processed", wp.jobsProcessed.Load(),
		"jobs_failed", wp.jobsFailed.Load())
}

// GetStats returns current worker pool statistics.
func (wp *WorkerPool[T]) GetStats() WorkerPoolStats {
	return WorkerPoolStats{
		NumWorkers:    wp.numWorkers,
		JobsSubmitted: wp.jobsSubmitted.Load(),
		JobsProcessed: wp.jobsProcessed.Load(),
		JobsFailed:    wp.jobsFailed.Load(),
		QueueLength:   len(wp.jobs),
	}
}

// WorkerPoolStats contains statistics about the worker pool.
type WorkerPoolStats struct {
	NumWorkers    int
	JobsSubmitted int64
	JobsProcessed int64
	JobsFailed    int64
	QueueLength   int
}

// ProcessFiles runs handler over files on a pool and returns the results in
// the order of files.
func ProcessFiles[T any](ctx context.Context, files []string, numWorkers int, handler Handler[T], logger *slog.Logger) []FileResult[T] {
	pool := NewWorkerPool(numWorkers, handler, logger)
	pool.Start()
	defer pool.Stop()

	go func() {
		defer pool.FinishSubmitting()
		for i, f := range files {
			if ctx.Err() != nil {
				return
			}
			if err := pool.Submit(FileJob{FilePath: f, JobID: i}); err != nil {
				return
			}
		}
	}()

	results := make([]FileResult[T], len(files))
	for i, f := range files {
		results[i] = FileResult[T]{FilePath: f, JobID: i, Err: context.Canceled}
	}
	for result := range pool.Results() {
		results[result.JobID] = result
	}
	return results
}
