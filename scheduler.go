package swrcache

import (
	"sync"
)

// Scheduler defers work to the end of an execution queue. Environment
// listeners never broadcast inline: the broadcast is scheduled so it runs
// after whatever state changes the caller is still applying.
type Scheduler interface {
	Schedule(task func())
}

// SchedulerFunc adapts a plain func to Scheduler.
type SchedulerFunc func(task func())

func (f SchedulerFunc) Schedule(task func()) { f(task) }

// Queue is a FIFO execution queue drained by a single worker goroutine.
// Tasks run one at a time in submission order; a panicking task is logged and
// does not stop the worker. Schedule never blocks.
type Queue struct {
	log Logger

	mu     sync.Mutex
	tasks  []func()
	wake   chan struct{}
	closed bool

	done chan struct{}
	once sync.Once
}

var _ Scheduler = (*Queue)(nil)

// NewQueue starts a queue worker. log may be nil.
func NewQueue(log Logger) *Queue {
	q := &Queue{
		log:  coalesce[Logger](log, NopLogger{}),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) Schedule(task func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.log.Debug("task dropped: queue closed", nil)
		return
	}
	q.tasks = append(q.tasks, task)
	select {
	case q.wake <- struct{}{}:
	default: // worker already signalled
	}
	q.mu.Unlock()
}

// Close stops accepting tasks, runs the ones already queued and waits for the worker.
func (q *Queue) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.wake)
		q.mu.Unlock()
		<-q.done
	})
}

func (q *Queue) run() {
	defer close(q.done)
	for range q.wake {
		q.drain()
	}
	q.drain()
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		q.exec(task)
	}
}

func (q *Queue) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("scheduled task panicked", Fields{"panic": r})
		}
	}()
	task()
}

var (
	sharedQueueOnce sync.Once
	sharedQueue     *Queue
)

// defaultScheduler is the process-wide queue used when Options.Scheduler is nil.
func defaultScheduler() Scheduler {
	sharedQueueOnce.Do(func() { sharedQueue = NewQueue(nil) })
	return sharedQueue
}

// ManualScheduler queues tasks until Flush is called. Useful in tests and in
// hosts that own their own event loop.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

var _ Scheduler = (*ManualScheduler)(nil)

func (m *ManualScheduler) Schedule(task func()) {
	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()
}

// Flush runs queued tasks in order, including tasks scheduled while flushing,
// and returns how many ran.
func (m *ManualScheduler) Flush() int {
	n := 0
	for {
		m.mu.Lock()
		if len(m.tasks) == 0 {
			m.mu.Unlock()
			return n
		}
		task := m.tasks[0]
		m.tasks = m.tasks[1:]
		m.mu.Unlock()

		task()
		n++
	}
}

// Pending reports queued tasks that have not run yet.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
