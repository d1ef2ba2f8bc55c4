// file: internal/operations/queue.go
// version: 2.0.0
// guid: 7d6e5f4a-3c2b-1a09-8f7e-6d5c4b3a2190

package operations

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jdfalk/newsdeck/internal/metrics"
	"github.com/jdfalk/newsdeck/internal/upstream"
	"github.com/oklog/ulid/v2"
)

// TaskFunc is the body of a supervised task. gen is the generation that was
// current when the task was issued.
type TaskFunc func(ctx context.Context, gen Generation) error

// StatusListener receives task lifecycle transitions.
type StatusListener func(status TaskStatus)

type task struct {
	id      string
	slot    string
	gen     Generation
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started time.Time
}

// Supervisor runs at most one active task per logical slot. Starting a task
// in a slot cancels the previous one and mints a new generation, so results
// of superseded tasks can be recognized and dropped.
type Supervisor struct {
	mu          sync.Mutex
	tasks       map[string]*task
	generations map[string]Generation
	listeners   []StatusListener
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	closed      bool
}

// NewSupervisor creates an empty supervisor.
func NewSupervisor() *Supervisor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{
		tasks:       make(map[string]*task),
		generations: make(map[string]Generation),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// AddListener registers a lifecycle listener.
func (s *Supervisor) AddListener(l StatusListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Next supersedes whatever runs in slot and returns the new generation
// without starting a task. Callers that run work inline use it to stamp results.
func (s *Supervisor) Next(slot string) Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.supersedeLocked(slot)
}

func (s *Supervisor) supersedeLocked(slot string) Generation {
	if prev, ok := s.tasks[slot]; ok {
		prev.cancel()
		delete(s.tasks, slot)
	}
	gen := s.generations[slot] + 1
	s.generations[slot] = gen
	return gen
}

// Start cancels the slot's current task and runs fn in a new goroutine.
func (s *Supervisor) Start(slot string, fn TaskFunc) Generation {
	s.mu.Lock()
	gen := s.supersedeLocked(slot)
	if s.closed {
		s.mu.Unlock()
		log.Printf("[WARN] supervisor closed, not starting %s task", slot)
		return gen
	}
	ctx, cancel := context.WithCancel(s.ctx)
	t := &task{
		id:      ulid.Make().String(),
		slot:    slot,
		gen:     gen,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		started: time.Now(),
	}
	s.tasks[slot] = t
	active := len(s.tasks)
	s.wg.Add(1)
	s.mu.Unlock()

	metrics.SetActiveTasks(active)
	metrics.IncTaskStarted(slot)
	s.notify(TaskStatus{ID: t.id, Slot: slot, Generation: gen, State: StateRunning})

	go s.run(t, fn)
	return gen
}

// StartPolling runs fn immediately and then every interval until the task is
// superseded or canceled. Errors from individual rounds do not stop polling.
func (s *Supervisor) StartPolling(slot string, interval time.Duration, fn TaskFunc) Generation {
	return s.Start(slot, func(ctx context.Context, gen Generation) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := fn(ctx, gen); err != nil && !upstream.IsCanceled(err) && ctx.Err() == nil {
				log.Printf("[WARN] %s poll round failed: %v", slot, err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})
}

func (s *Supervisor) run(t *task, fn TaskFunc) {
	defer s.wg.Done()
	defer close(t.done)
	defer t.cancel()

	err := fn(t.ctx, t.gen)

	state := StateCompleted
	switch {
	case t.ctx.Err() != nil || upstream.IsCanceled(err):
		state = StateCanceled
		metrics.IncTaskCanceled(t.slot)
	case err != nil:
		state = StateFailed
		metrics.IncTaskFailed(t.slot)
		log.Printf("[WARN] task %s (%s) failed: %v", t.id, t.slot, err)
	default:
		metrics.IncTaskCompleted(t.slot)
	}
	metrics.ObserveTaskDuration(t.slot, time.Since(t.started))

	s.mu.Lock()
	if cur, ok := s.tasks[t.slot]; ok && cur == t {
		delete(s.tasks, t.slot)
	}
	active := len(s.tasks)
	s.mu.Unlock()
	metrics.SetActiveTasks(active)

	status := TaskStatus{ID: t.id, Slot: t.slot, Generation: t.gen, State: state}
	if err != nil && state == StateFailed {
		status.Error = err.Error()
	}
	s.notify(status)
}

// Cancel stops the slot's task and invalidates its generation.
func (s *Supervisor) Cancel(slot string) {
	s.mu.Lock()
	_, running := s.tasks[slot]
	s.supersedeLocked(slot)
	active := len(s.tasks)
	s.mu.Unlock()
	if running {
		metrics.SetActiveTasks(active)
		log.Printf("[DEBUG] canceled %s task", slot)
	}
}

// IsCurrent reports whether gen is still the latest generation for slot.
func (s *Supervisor) IsCurrent(slot string, gen Generation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[slot] == gen
}

// Current returns the latest generation minted for slot.
func (s *Supervisor) Current(slot string) Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[slot]
}

// Generations returns a snapshot of every slot's latest generation.
func (s *Supervisor) Generations() map[string]Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Generation, len(s.generations))
	for k, v := range s.generations {
		out[k] = v
	}
	return out
}

// Done returns a channel closed when the slot's current task finishes.
// It returns a closed channel when nothing runs in the slot.
func (s *Supervisor) Done(slot string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[slot]; ok {
		return t.done
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Active returns a snapshot of running tasks sorted by slot.
func (s *Supervisor) Active() []ActiveTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ActiveTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, ActiveTask{ID: t.id, Slot: t.slot, Generation: t.gen, StartedAt: t.started})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}

// Shutdown cancels every task and waits for them to return.
func (s *Supervisor) Shutdown(timeout time.Duration) error {
	log.Println("[INFO] Shutting down task supervisor...")
	s.mu.Lock()
	s.closed = true
	for slot := range s.tasks {
		s.supersedeLocked(slot)
	}
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[INFO] Task supervisor shut down gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}

func (s *Supervisor) notify(status TaskStatus) {
	s.mu.Lock()
	listeners := append([]StatusListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l(status)
	}
}
