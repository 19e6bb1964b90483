package chore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Persister writes task mutations back to storage. A zero Day or time clears the field.
type Persister interface {
	PlanTask(ctx context.Context, taskID uint, day Day) error
	CompleteTask(ctx context.Context, taskID uint, at time.Time) error
	ApproveTask(ctx context.Context, taskID, reviewerID uint, at time.Time) error
	RejectTask(ctx context.Context, taskID uint) error
}

// Op names a mutation.
type Op int

const (
	OpPlan Op = iota
	OpComplete
	OpApprove
	OpReject
)

func (o Op) String() string {
	switch o {
	case OpComplete:
		return "complete"
	case OpApprove:
		return "approve"
	case OpReject:
		return "reject"
	default:
		return "plan"
	}
}

// Command is one applied mutation: the task before and after, and the write that
// makes it durable.
type Command struct {
	ID       uuid.UUID
	Op       Op
	TaskID   uint
	Before   Task
	After    Task
	Attempts int
	LastErr  error

	version uint64
	done    chan<- error
}

type fieldKey struct {
	task uint
	plan bool
}

func newCommand(op Op, before, after Task) Command {
	return Command{ID: uuid.New(), Op: op, TaskID: before.ID, Before: before, After: after}
}

// Apply replaces the command's task inside tasks with the after state.
func (c Command) Apply(tasks []Task) []Task {
	if i := findTask(tasks, c.TaskID); i >= 0 {
		tasks[i] = c.After
	}
	return tasks
}

// Revert puts the before state back.
func (c Command) Revert(tasks []Task) []Task {
	if i := findTask(tasks, c.TaskID); i >= 0 {
		tasks[i] = c.Before
	}
	return tasks
}

// Persist issues the write for the command.
func (c Command) Persist(ctx context.Context, p Persister) error {
	if p == nil {
		return nil
	}
	var err error
	switch c.Op {
	case OpPlan:
		err = p.PlanTask(ctx, c.TaskID, c.After.PlannedDate)
	case OpComplete:
		err = p.CompleteTask(ctx, c.TaskID, c.After.CompletedAt)
	case OpApprove:
		err = p.ApproveTask(ctx, c.TaskID, c.After.ReviewerID, c.After.ReviewedAt)
	case OpReject:
		err = p.RejectTask(ctx, c.TaskID)
	default:
		err = fmt.Errorf("unknown op %d", c.Op)
	}
	if err != nil {
		return fmt.Errorf("%s task %d: %w", c.Op, c.TaskID, err)
	}
	return nil
}

// fields identifies the stored columns the command writes: the planned date, or
// the completion and review columns.
func (c Command) fields() fieldKey {
	return fieldKey{task: c.TaskID, plan: c.Op == OpPlan}
}

// supersedes reports whether c is a later write to the same stored fields as older.
func (c Command) supersedes(older Command) bool {
	return c.fields() == older.fields() && c.version > older.version
}

func (c Command) String() string {
	return fmt.Sprintf("%s task=%d id=%s", c.Op, c.TaskID, c.ID)
}
