package chore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// WritePolicy decides what happens to local state when a write-back fails.
type WritePolicy int

const (
	// KeepLocal keeps the optimistic state and queues the command for Retry.
	KeepLocal WritePolicy = iota
	// Rollback restores the task unless a newer command already replaced it.
	Rollback
)

// ParseWritePolicy accepts "keep" or "rollback".
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch s {
	case "", "keep":
		return KeepLocal, nil
	case "rollback":
		return Rollback, nil
	default:
		return 0, fmt.Errorf("unknown write policy %q", s)
	}
}

// DragOutcome is the result of ResolveDragEnd.
type DragOutcome int

const (
	Unchanged DragOutcome = iota
	Moved
	ReturnedToPool
)

func (o DragOutcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case ReturnedToPool:
		return "returned to pool"
	default:
		return "unchanged"
	}
}

// Snapshot is a copy of the engine state handed to subscribers.
type Snapshot struct {
	Tasks []Task
	Today Day
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithWritePolicy(p WritePolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithSyncWrites makes every mutation wait for its write and report its error.
func WithSyncWrites() Option {
	return func(e *Engine) { e.sync = true }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// Engine is the only place task state changes. It owns the task collection,
// applies validated moves optimistically and writes them back in order.
type Engine struct {
	persister Persister
	now       func() time.Time
	policy    WritePolicy
	sync      bool
	timeout   time.Duration

	mu          sync.Mutex
	tasks       []Task
	versions    map[uint]uint64
	latest      map[fieldKey]uint64
	changes     uint64
	queue       []Command
	failed      []Command
	draining    bool
	subscribers map[int]func(Snapshot)
	nextSub     int

	wg sync.WaitGroup
}

// NewEngine takes ownership of a copy of tasks.
func NewEngine(tasks []Task, persister Persister, opts ...Option) *Engine {
	e := &Engine{
		persister:   persister,
		now:         time.Now,
		timeout:     10 * time.Second,
		tasks:       append([]Task(nil), tasks...),
		versions:    make(map[uint]uint64, len(tasks)),
		latest:      make(map[fieldKey]uint64, len(tasks)),
		subscribers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today is the engine's current calendar day.
func (e *Engine) Today() Day { return DayOf(e.now()) }

// Snapshot returns a copy of the current tasks.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{Tasks: append([]Task(nil), e.tasks...), Today: e.Today()}
}

// Task looks up a single task by id.
func (e *Engine) Task(id uint) (Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := findTask(e.tasks, id); i >= 0 {
		return e.tasks[i], true
	}
	return Task{}, false
}

// Subscribe registers fn to receive a snapshot after every change. The returned
// func removes the subscription.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subscribers[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subscribers, id)
	}
}

// Plan puts a task on day, or back into its pool when day is zero.
func (e *Engine) Plan(id uint, day Day) ([]Task, error) {
	return e.mutate(OpPlan, id, func(t Task, all []Task, _ Day) (Task, bool, error) {
		if t.Locked() {
			return t, false, ErrLocked
		}
		if day.IsZero() {
			if t.Completed() {
				return t, false, ErrCompleted
			}
			if !t.Planned() {
				return t, false, nil
			}
			t.PlannedDate = Day{}
			return t, true, nil
		}
		if t.Kind == Daily {
			return t, false, ErrDailyNotPlannable
		}
		if t.Completed() {
			return t, false, ErrCompleted
		}
		if !IsDropAllowed(t, day, all) {
			return t, false, ErrDropRejected
		}
		if t.PlannedDate.Equal(day) {
			return t, false, nil
		}
		t.PlannedDate = day
		return t, true, nil
	})
}

// Complete sets the completion timestamp, or clears it when at is zero.
func (e *Engine) Complete(id uint, at time.Time) ([]Task, error) {
	return e.mutate(OpComplete, id, func(t Task, _ []Task, today Day) (Task, bool, error) {
		if t.Locked() {
			return t, false, ErrLocked
		}
		if at.IsZero() {
			if !t.Completed() {
				return t, false, nil
			}
			t.CompletedAt = time.Time{}
			return t, true, nil
		}
		if t.Completed() {
			return t, false, nil
		}
		if err := checkCompletable(t, today); err != nil {
			return t, false, err
		}
		t.CompletedAt = at
		return t, true, nil
	})
}

// Approve locks a completed task under reviewerID.
func (e *Engine) Approve(id, reviewerID uint, at time.Time) ([]Task, error) {
	if at.IsZero() {
		at = e.now()
	}
	return e.mutate(OpApprove, id, func(t Task, _ []Task, _ Day) (Task, bool, error) {
		if t.Locked() {
			return t, false, ErrLocked
		}
		if !t.Completed() {
			return t, false, ErrNotCompleted
		}
		if reviewerID == 0 {
			return t, false, ErrNoReviewer
		}
		t.ReviewedAt = at
		t.ReviewerID = reviewerID
		return t, true, nil
	})
}

// Reject sends a completed task back to incomplete, keeping its planned day.
func (e *Engine) Reject(id uint) ([]Task, error) {
	return e.mutate(OpReject, id, func(t Task, _ []Task, _ Day) (Task, bool, error) {
		if t.Locked() {
			return t, false, ErrLocked
		}
		if !t.Completed() {
			return t, false, ErrNotCompleted
		}
		t.CompletedAt = time.Time{}
		return t, true, nil
	})
}

// ResolveDragEnd reconciles a finished drag. A valid target plans the task; any
// other drop returns a planned, incomplete task to its pool.
func (e *Engine) ResolveDragEnd(id uint, target Day) (DragOutcome, error) {
	task, ok := e.Task(id)
	if !ok {
		return Unchanged, ErrTaskNotFound
	}

	if !target.IsZero() {
		if task.Planned() && task.PlannedDate.Equal(target) {
			return Unchanged, nil
		}
		_, err := e.Plan(id, target)
		if err == nil {
			return Moved, nil
		}
		if !IsRejection(err) {
			return Unchanged, err
		}
	}

	if task.Planned() && !task.Completed() {
		_, err := e.Plan(id, Day{})
		if err != nil && IsRejection(err) {
			return Unchanged, nil
		}
		return ReturnedToPool, err
	}
	return Unchanged, nil
}

type mutation func(t Task, all []Task, today Day) (Task, bool, error)

func (e *Engine) mutate(op Op, id uint, fn mutation) ([]Task, error) {
	e.mu.Lock()
	i := findTask(e.tasks, id)
	if i < 0 {
		out := append([]Task(nil), e.tasks...)
		e.mu.Unlock()
		return out, ErrTaskNotFound
	}
	before := e.tasks[i]
	after, changed, err := fn(before, e.tasks, e.Today())
	if err != nil || !changed {
		out := append([]Task(nil), e.tasks...)
		e.mu.Unlock()
		return out, err
	}

	cmd := newCommand(op, before, after)
	e.versions[id]++
	cmd.version = e.versions[id]
	e.latest[cmd.fields()] = cmd.version
	e.changes++
	e.tasks = cmd.Apply(e.tasks)

	if !e.sync {
		e.enqueueLocked(cmd)
	}
	snap := e.snapshotLocked()
	subs := e.subscribersLocked()
	e.mu.Unlock()

	notify(subs, snap)

	if e.sync {
		if err := e.persist(cmd); err != nil {
			e.writeFailed(cmd, err)
			return e.Snapshot().Tasks, err
		}
		e.writeSucceeded(cmd)
	}
	return snap.Tasks, nil
}

func (e *Engine) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

// enqueueLocked schedules cmd behind any writes already in flight so the store
// sees them in the order they were applied.
func (e *Engine) enqueueLocked(cmd Command) {
	e.queue = append(e.queue, cmd)
	e.startDrainLocked()
}

func (e *Engine) startDrainLocked() {
	if e.draining {
		return
	}
	e.draining = true
	e.wg.Add(1)
	go e.drain()
}

func (e *Engine) drain() {
	defer e.wg.Done()
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.draining = false
			e.mu.Unlock()
			return
		}
		cmd := e.queue[0]
		e.queue = e.queue[1:]
		stale := cmd.Attempts > 0 && e.latest[cmd.fields()] > cmd.version
		e.mu.Unlock()

		done := cmd.done
		cmd.done = nil
		if stale {
			log.Printf("[info] dropped stale retry %s", cmd)
			reply(done, nil)
			continue
		}
		err := e.persist(cmd)
		if err != nil {
			e.writeFailed(cmd, err)
		} else {
			e.writeSucceeded(cmd)
		}
		reply(done, err)
	}
}

func reply(done chan<- error, err error) {
	if done != nil {
		done <- err
	}
}

func (e *Engine) persist(cmd Command) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	return cmd.Persist(ctx, e.persister)
}

func (e *Engine) writeSucceeded(cmd Command) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.failed[:0]
	for _, f := range e.failed {
		if !cmd.supersedes(f) {
			kept = append(kept, f)
		}
	}
	e.failed = kept
}

func (e *Engine) writeFailed(cmd Command, err error) {
	log.Printf("persist %s: %v", cmd, err)

	e.mu.Lock()
	cmd.Attempts++
	cmd.LastErr = err

	if e.policy == KeepLocal {
		e.failed = append(e.failed, cmd)
		e.mu.Unlock()
		return
	}

	if e.versions[cmd.TaskID] != cmd.version {
		// a newer command owns the task now
		e.mu.Unlock()
		return
	}
	e.tasks = cmd.Revert(e.tasks)
	e.versions[cmd.TaskID]++
	e.latest[cmd.fields()] = e.versions[cmd.TaskID]
	e.changes++
	snap := e.snapshotLocked()
	subs := e.subscribersLocked()
	e.mu.Unlock()

	log.Printf("[info] rolled back %s", cmd)
	notify(subs, snap)
}

// Pending lists writes that failed and are waiting for Retry.
func (e *Engine) Pending() []Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Command(nil), e.failed...)
}

// Retry puts failed writes back at the head of the write queue, in their
// original order, and waits for them. A retry that a newer write to the same
// fields has overtaken is dropped. Commands that fail again stay queued.
func (e *Engine) Retry(ctx context.Context) error {
	e.mu.Lock()
	batch := e.failed
	e.failed = nil
	if len(batch) == 0 {
		e.mu.Unlock()
		return nil
	}
	results := make(chan error, len(batch))
	for i := range batch {
		batch[i].done = results
	}
	e.queue = append(batch, e.queue...)
	e.startDrainLocked()
	e.mu.Unlock()

	var errs []error
	for range batch {
		select {
		case err := <-results:
			if err != nil {
				errs = append(errs, err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return errors.Join(errs...)
}

// Busy reports whether writes are queued, in flight or waiting for Retry.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busyLocked()
}

func (e *Engine) busyLocked() bool {
	return e.draining || len(e.queue) > 0 || len(e.failed) > 0
}

// Changes counts applied and rolled back mutations. Pass it to Reload to detect
// edits made while fresh rows were being read.
func (e *Engine) Changes() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.changes
}

// Reload replaces the task collection with rows read from storage. It refuses
// while writes are outstanding or when the state changed since seen was taken.
func (e *Engine) Reload(tasks []Task, seen uint64) bool {
	e.mu.Lock()
	if e.changes != seen || e.busyLocked() {
		e.mu.Unlock()
		return false
	}
	e.tasks = append([]Task(nil), tasks...)
	e.changes++
	snap := e.snapshotLocked()
	subs := e.subscribersLocked()
	e.mu.Unlock()

	notify(subs, snap)
	return true
}

// Wait blocks until every in-flight write has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}
