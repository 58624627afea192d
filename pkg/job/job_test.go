package job

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingJobs struct {
	n    int
	runs []atomic.Int32
}

func newCountingJobs(n int) *countingJobs {
	return &countingJobs{n: n, runs: make([]atomic.Int32, n)}
}

func (c *countingJobs) Count() int    { return c.n }
func (c *countingJobs) Run(index int) { c.runs[index].Add(1) }

func TestRunEveryJobOnce(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		parallel bool
		threads  int
	}{
		{"sequential", 100, false, 0},
		{"parallel default threads", 1000, true, 0},
		{"parallel one thread", 50, true, 1},
		{"more threads than jobs", 3, true, 64},
		{"thread cap", 500, true, 10000},
		{"no jobs", 0, true, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := newCountingJobs(tt.count)
			Run(jobs, tt.parallel, tt.threads)
			for i := range jobs.runs {
				assert.Equal(t, int32(1), jobs.runs[i].Load(), "job %d", i)
			}
		})
	}
}

func TestFuncCountConvention(t *testing.T) {
	var mu sync.Mutex
	var order []int
	f := Func(func(i int) int {
		if i < 0 {
			return 5
		}
		mu.Lock()
		order = append(order, i)
		mu.Unlock()
		return 0
	})

	assert.Equal(t, 5, f.Count())
	RunSequential(f)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)

	order = nil
	RunParallel(f, 3)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, order)
}

func TestDefaultThreads(t *testing.T) {
	n := DefaultThreads()
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, MaxThreads)
}
