package application

import (
	"sync"

	"github.com/bnema/ff1c/internal/domain"
)

type reportJob struct {
	snapshot domain.Snapshot
	// reset forgets the previous snapshot so the next one is always diffed.
	reset bool
}

// reportQueue is an unbounded FIFO with a single consumer. push never
// blocks, so the sync loop keeps its pace while jobs are handled strictly
// in arrival order.
type reportQueue struct {
	mu     sync.Mutex
	jobs   []reportJob
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func newReportQueue() *reportQueue {
	return &reportQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (q *reportQueue) push(job reportJob) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()

	q.signal()
	return true
}

// close stops accepting jobs. The consumer drains what is queued, then exits.
func (q *reportQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.signal()
}

func (q *reportQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// run consumes jobs until the queue is closed and empty.
func (q *reportQueue) run(handle func(reportJob)) {
	defer close(q.done)

	for {
		q.mu.Lock()
		pending := q.jobs
		q.jobs = nil
		closed := q.closed
		q.mu.Unlock()

		for _, job := range pending {
			handle(job)
		}

		if len(pending) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}

func (q *reportQueue) wait() {
	<-q.done
}
