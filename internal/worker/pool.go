// worker/pool.go
package worker

import (
	"hash/fnv"
	"sync"
)

type Job[T any] func() T

type Result[T any] struct {
	JobID  string
	Key    string
	Output T
}

// Pool runs jobs on a fixed set of workers. Jobs sharing a key always land on
// the same worker, so they run one after another in submission order.
type Pool[T any] struct {
	lanes   []chan jobWrapper[T]
	results chan Result[T]
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type jobWrapper[T any] struct {
	id  string
	key string
	fn  Job[T]
}

func NewPool[T any](workerCount int, bufferSize int) *Pool[T] {
	if workerCount < 1 {
		workerCount = 1
	}

	p := &Pool[T]{
		lanes:   make([]chan jobWrapper[T], workerCount),
		results: make(chan Result[T], bufferSize),
	}

	for i := range p.lanes {
		p.lanes[i] = make(chan jobWrapper[T], bufferSize)
		p.wg.Add(1)
		go p.worker(p.lanes[i])
	}

	return p
}

func (p *Pool[T]) worker(jobs <-chan jobWrapper[T]) {
	defer p.wg.Done()
	for job := range jobs {
		output := job.fn()
		p.results <- Result[T]{
			JobID:  job.id,
			Key:    job.key,
			Output: output,
		}
	}
}

// Submit queues fn under key. It returns false once the pool is closed.
func (p *Pool[T]) Submit(key string, id string, fn Job[T]) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	p.lanes[p.lane(key)] <- jobWrapper[T]{id: id, key: key, fn: fn}
	return true
}

func (p *Pool[T]) Results() <-chan Result[T] {
	return p.results
}

// Close stops accepting jobs, lets queued jobs finish and then closes
// Results. The results channel must keep being drained until it is closed.
func (p *Pool[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, lane := range p.lanes {
		close(lane)
	}
	p.mu.Unlock()

	p.wg.Wait()
	close(p.results)
}

func (p *Pool[T]) lane(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(p.lanes)))
}
