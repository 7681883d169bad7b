package shard

import "context"

// TaskQueueHandle names a lane within a Shard's task queue. It is
// created once per Shard at startup and is shared by value across every
// Executor handed out by that Shard; it carries no state of its own
// beyond the identity of the lane.
type TaskQueueHandle struct {
	shard *Shard
	name  string
}

// Name returns the task queue's configured name, e.g. "rpc_server_tq0".
func (h TaskQueueHandle) Name() string { return h.name }

// Task is the handle returned by Executor.Spawn. It carries no result
// value (tasks in this runtime are side-effecting connection drivers,
// not value-producing futures), only completion and error.
type Task struct {
	done chan struct{}
	err  error
}

// Wait blocks until the task completes and returns the error it exited
// with, if any.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Detach discards the handle. The task continues to run to completion
// regardless; Detach exists purely for readability at call sites that
// mirror Executor.Execute's fire-and-forget semantics explicitly.
func (t *Task) Detach() {}

// Executor is the per-core executor handle: it satisfies the
// fire-and-forget spawn contract an HTTP/2 engine expects from its
// executor dependency, by submitting a closure to the owning Shard's
// task queue.
//
// An Executor is cheap to copy and carries only the identity of its
// Shard and task queue; the scheduler itself is the ambient, per-thread
// Shard. Submitting a task from any goroutine other than one already
// running on this Executor's Shard is a programming error: the task
// will still run (the queue is just a channel), but it will run on a
// goroutine launched by the Shard's dispatch loop, not the caller's,
// breaking the "no work crosses
// shard boundaries after initialization" invariant if the caller relied
// on thread-local state.
type Executor struct {
	queue TaskQueueHandle
}

// NewExecutor returns an Executor bound to the given task queue.
func NewExecutor(queue TaskQueueHandle) Executor { return Executor{queue: queue} }

// Queue returns the task queue this executor submits to.
func (e Executor) Queue() TaskQueueHandle { return e.queue }

// Spawn submits fn to the local Shard's task queue and returns a Task
// tracking its completion. It returns ErrSpawn, wrapped with the task
// queue's name, if the Shard is no longer accepting new tasks.
func (e Executor) Spawn(ctx context.Context, fn func(context.Context) error) (*Task, error) {
	t := &Task{done: make(chan struct{})}
	wrapped := func(ctx context.Context) {
		defer close(t.done)
		t.err = fn(ctx)
	}
	if err := e.queue.shard.submit(ctx, wrapped); err != nil {
		close(t.done)
		return nil, err
	}
	return t, nil
}

// Execute spawns fn and detaches it immediately: the task runs to
// completion regardless of whether anything ever observes its result.
// This is the method an HTTP/2 engine calls when it needs to run an
// auxiliary task (e.g. a per-stream handler invocation) without caring
// about its outcome. A spawn failure (the Shard is draining) is logged
// and otherwise swallowed.
func (e Executor) Execute(ctx context.Context, fn func(context.Context) error) {
	task, err := e.Spawn(ctx, fn)
	if err != nil {
		DefaultLogger().Warning().
			Str("task_queue", e.queue.name).
			Err(err).
			Log("executor: discarding task, spawn failed")
		return
	}
	task.Detach()
}
