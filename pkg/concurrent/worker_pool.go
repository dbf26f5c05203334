package concurrent

import "sync"

// WorkerPool fans jobs out over numWorkers goroutines. Usage: AddJob every
// item, Close, Start, Wait, then drain CollectResults. The job channel must
// be sized for every job up front, Start is called after Close.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobs       chan T
	results    chan G
	wg         sync.WaitGroup
}

func NewWorkerPool[T any, G any](numWorkers, capacity int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobs:       make(chan T, capacity),
		results:    make(chan G, capacity),
	}
}

func (p *WorkerPool[T, G]) AddJob(job T) {
	p.jobs <- job
}

func (p *WorkerPool[T, G]) Close() {
	close(p.jobs)
}

func (p *WorkerPool[T, G]) Start(f JobFunc[T, G]) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.results <- f(job)
			}
		}()
	}
}

// Wait blocks until every started worker drained the job channel, then
// closes the result channel so CollectResults can be ranged.
func (p *WorkerPool[T, G]) Wait() {
	p.wg.Wait()
	close(p.results)
}

func (p *WorkerPool[T, G]) CollectResults() <-chan G {
	return p.results
}
