package notification

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrQueueFull        = errors.New("notification queue is full")
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
)

// Task is one best-effort side effect, e.g. an email or an outbound event.
// Tasks sharing a non-empty Key run one at a time in submission order.
type Task struct {
	Name string
	Key  string
	Run  func(ctx context.Context) error
}

type job struct {
	task Task
	done chan error
}

// Dispatcher runs tasks on a fixed set of workers, each draining its own
// queue. Keyed tasks always land on the same worker; the rest are spread
// round-robin. Submitting never blocks: when the chosen queue is full the task
// is dropped and reported as ErrQueueFull.
type Dispatcher struct {
	lanes   []chan job
	next    atomic.Uint32
	timeout time.Duration
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts workers goroutines with queueSize pending tasks each.
func NewDispatcher(workers, queueSize int, timeout time.Duration) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	d := &Dispatcher{
		lanes:   make([]chan job, workers),
		timeout: timeout,
	}
	d.wg.Add(workers)
	for i := range d.lanes {
		d.lanes[i] = make(chan job, queueSize)
		go d.worker(d.lanes[i])
	}
	return d
}

func (d *Dispatcher) lane(key string) chan job {
	if key == "" {
		return d.lanes[(d.next.Add(1)-1)%uint32(len(d.lanes))]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return d.lanes[h.Sum32()%uint32(len(d.lanes))]
}

// Submit queues task. The returned channel receives exactly one value: the
// task's result, or the reason it was never run.
func (d *Dispatcher) Submit(task Task) <-chan error {
	done := make(chan error, 1)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		done <- ErrDispatcherClosed
		return done
	}

	select {
	case d.lane(task.Key) <- job{task: task, done: done}:
	default:
		log.Printf("[Dispatcher] Queue full, dropping %s", task.Name)
		done <- ErrQueueFull
	}
	return done
}

// Close stops accepting tasks and waits until every queued task has run.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, lane := range d.lanes {
		close(lane)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker(jobs <-chan job) {
	defer d.wg.Done()
	for j := range jobs {
		j.done <- d.run(j.task)
	}
}

func (d *Dispatcher) run(task Task) (err error) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.Name, r)
		}
		if err != nil {
			log.Printf("[Dispatcher] %s failed: %v", task.Name, err)
		}
	}()

	return task.Run(ctx)
}
