package concurrent

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPoolProcessesEveryJob(t *testing.T) {
	const jobs = 100
	pool := NewWorkerPool[int, int](8, jobs)

	for i := 0; i < jobs; i++ {
		pool.AddJob(i)
	}
	pool.Close()
	pool.Start(func(job int) int { return job * 2 })
	pool.Wait()

	results := make([]int, 0, jobs)
	for r := range pool.CollectResults() {
		results = append(results, r)
	}
	sort.Ints(results)

	assert.Len(t, results, jobs)
	for i := 0; i < jobs; i++ {
		assert.Equal(t, i*2, results[i])
	}
}

func TestWorkerPoolSingleWorkerFloor(t *testing.T) {
	pool := NewWorkerPool[int, int](0, 1)
	pool.AddJob(41)
	pool.Close()
	pool.Start(func(job int) int { return job + 1 })
	pool.Wait()

	assert.Equal(t, 42, <-pool.CollectResults())
}
