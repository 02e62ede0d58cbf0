// Package worker provides a parallel worker pool for filling image row bands
// or other contiguous runs of indexed work, such as tile batches.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Band is the half-open row range [Y0, Y1) of an image, or of any indexed
// work list.
type Band struct {
	Index int
	Y0    int
	Y1    int
}

// String returns the band as "band3[48,64)".
func (b Band) String() string {
	return fmt.Sprintf("band%d[%d,%d)", b.Index, b.Y0, b.Y1)
}

// Rows returns the number of rows covered by the band.
func (b Band) Rows() int { return b.Y1 - b.Y0 }

// Split divides height rows into at most n contiguous bands of near-equal
// size. It returns nil when height or n is not positive.
func Split(height, n int) []Band {
	if height <= 0 || n <= 0 {
		return nil
	}
	if n > height {
		n = height
	}

	bands := make([]Band, n)
	base, extra := height/n, height%n
	y := 0
	for i := range bands {
		rows := base
		if i < extra {
			rows++
		}
		bands[i] = Band{Index: i, Y0: y, Y1: y + rows}
		y += rows
	}
	return bands
}

// Filler computes the work of one band.
type Filler interface {
	Fill(ctx context.Context, band Band) error
}

// FillerFunc adapts a function to the Filler interface.
type FillerFunc func(ctx context.Context, band Band) error

// Fill calls f(ctx, band).
func (f FillerFunc) Fill(ctx context.Context, band Band) error { return f(ctx, band) }

// Task represents a single band to fill.
type Task struct {
	Band Band
}

// Result represents the outcome of a task.
type Result struct {
	Task    Task
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(completed, total, failed int)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Filler     Filler
	OnProgress ProgressFunc
}

// Pool fills bands in parallel.
type Pool struct {
	workers    int
	filler     Filler
	onProgress ProgressFunc
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		filler:     cfg.Filler,
		onProgress: cfg.OnProgress,
	}
}

// Run executes all tasks and returns one result per task, in completion
// order. It blocks until all tasks complete; once ctx is cancelled the
// remaining tasks are reported with ctx.Err() without being filled.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	// Every task is queued so each one yields a result, filled or cancelled.
	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)

	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		var completed, failed int
		for result := range resultCh {
			results = append(results, result)

			completed++
			if result.Err != nil {
				failed++
			}
			if p.onProgress != nil {
				p.onProgress(completed, len(tasks), failed)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	return results
}

func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		select {
		case <-ctx.Done():
			results <- Result{
				Task: task,
				Err:  ctx.Err(),
			}
			continue
		default:
		}

		start := time.Now()
		err := p.filler.Fill(ctx, task.Band)
		results <- Result{
			Task:    task,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}

// FirstError returns the error of the failed band with the lowest index,
// wrapped with the band, or nil when every task succeeded.
func FirstError(results []Result) error {
	var first *Result
	for i := range results {
		r := &results[i]
		if r.Err != nil && (first == nil || r.Task.Band.Index < first.Task.Band.Index) {
			first = r
		}
	}
	if first == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", first.Task.Band, first.Err)
}
