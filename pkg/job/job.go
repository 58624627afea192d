// Package job runs a fixed set of independent, indexed jobs either in order or on a pool of
// workers that claim the next index from a shared counter.
package job

import (
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// MaxThreads caps the worker pool.
const MaxThreads = 128

// Jobs is a countable set of jobs. Run must be safe to call concurrently for distinct indices.
type Jobs interface {
	Count() int
	Run(index int)
}

// Func adapts a single function to Jobs: called with -1 it returns the job count, otherwise it
// runs job index and its result is ignored.
type Func func(index int) int

func (f Func) Count() int    { return f(-1) }
func (f Func) Run(index int) { f(index) }

// DefaultThreads is the number of logical CPUs, capped at MaxThreads.
func DefaultThreads() int {
	return clampThreads(runtime.NumCPU())
}

func clampThreads(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxThreads {
		return MaxThreads
	}
	return n
}

// RunSequential runs every job in index order on the calling goroutine.
func RunSequential(jobs Jobs) {
	count := jobs.Count()
	for i := 0; i < count; i++ {
		jobs.Run(i)
	}
}

// RunParallel runs every job exactly once on threads workers and returns when all of them have
// finished. threads <= 0 selects DefaultThreads. Jobs are claimed in index order but may finish
// in any order.
func RunParallel(jobs Jobs, threads int) {
	if threads <= 0 {
		threads = DefaultThreads()
	}
	threads = clampThreads(threads)

	count := jobs.Count()
	if count <= 0 {
		return
	}
	if threads > count {
		threads = count
	}
	slog.Debug("running jobs", "threads", threads, "count", count)

	var next atomic.Int64
	var g errgroup.Group
	for w := 0; w < threads; w++ {
		g.Go(func() error {
			for {
				i := int(next.Add(1) - 1)
				if i >= count {
					return nil
				}
				jobs.Run(i)
			}
		})
	}
	_ = g.Wait()
}

// Run dispatches to RunParallel or RunSequential.
func Run(jobs Jobs, parallel bool, threads int) {
	if parallel {
		RunParallel(jobs, threads)
		return
	}
	RunSequential(jobs)
}
