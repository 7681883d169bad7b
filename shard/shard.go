package shard

import (
	"context"
	"fmt"
	"sync"
)

// State is the lifecycle of a Shard's acceptor: Idle -> Bound ->
// Accepting <-> Serving(k) -> Draining -> Terminated. It is stored for
// observability only; nothing in this package branches on it except
// logging and tests.
type State int32

const (
	StateIdle State = iota
	StateBound
	StateAccepting
	StateServing
	StateDraining
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBound:
		return "bound"
	case StateAccepting:
		return "accepting"
	case StateServing:
		return "serving"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Shard is a single pinned, single-dispatch-goroutine scheduler. It
// owns exactly one task queue (exposed via Executor) and, via the
// Acceptor bound to it, exactly one admission counter. Both are touched by
// exactly one goroutine - the one running Run - so neither needs a
// lock.
//
// A Shard never migrates work to another Shard: Executor.Spawn and the
// acceptor's internal bookkeeping are the only ways to get a task onto
// a Shard, and both always resolve back to this Shard's own queues.
type Shard struct {
	// Name identifies this shard in logs, e.g. "gmf_server0".
	Name string

	log Logger

	// tasks carries Executor submissions. Each item is launched as its
	// own detached goroutine by the dispatch loop - it may block for
	// the lifetime of a connection, so it must never be invoked
	// synchronously on the dispatch goroutine.
	tasks chan func(context.Context)

	// inline carries short, non-blocking bookkeeping closures - the
	// only place the admission counter is mutated - and is always run
	// synchronously, in submission order, on the dispatch goroutine.
	inline chan func()

	closeOnce sync.Once
	closed    chan struct{} // closed once the dispatch loop stops accepting new work
	wg        sync.WaitGroup

	queue TaskQueueHandle
}

// New constructs a Shard with the given name and default, unstarted
// state. Call Run to start its dispatch loop.
func New(name string, log Logger) *Shard {
	if log == nil {
		log = DefaultLogger()
	}
	s := &Shard{
		Name:   name,
		log:    log,
		tasks:  make(chan func(context.Context)),
		inline: make(chan func()),
		closed: make(chan struct{}),
	}
	s.queue = TaskQueueHandle{shard: s, name: name + "_tq"}
	return s
}

// Executor returns the handle satisfying the HTTP/2 engine's executor
// contract for this shard's default task queue.
func (s *Shard) Executor() Executor { return NewExecutor(s.queue) }

// submit enqueues fn as a detached-goroutine task, returning ErrSpawn if
// the shard is draining. Safe to call from any goroutine.
func (s *Shard) submit(ctx context.Context, fn func(context.Context)) error {
	select {
	case s.tasks <- fn:
		return nil
	case <-s.closed:
		return fmt.Errorf("%w: queue %q", ErrSpawn, s.queue.name)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// spawn launches fn as its own tracked goroutine without going through
// the tasks channel. It exists for callers - namely Acceptor - that are
// already executing inline on the dispatch goroutine when they need to
// hand a connection off to a detached goroutine: routing through submit
// would mean sending to s.tasks from the only goroutine that ever
// receives from it, which deadlocks. spawn must only be called from the
// dispatch goroutine itself (i.e. from within a func passed to
// runInline).
func (s *Shard) spawn(ctx context.Context, fn func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(ctx)
	}()
}

// runInline schedules fn to run synchronously, in order, on the
// dispatch goroutine - the only mechanism in this package for
// lock-free mutation of shard-local state such as the admission
// counter. It blocks the caller until fn has either been accepted for
// execution or the shard has begun draining.
func (s *Shard) runInline(fn func()) error {
	select {
	case s.inline <- fn:
		return nil
	case <-s.closed:
		return fmt.Errorf("%w: shard %q draining", ErrShardTerminated, s.Name)
	}
}

// Run drives the dispatch loop until ctx is cancelled, then waits for
// every outstanding task to finish before returning. It is the single
// goroutine that should ever call this method for a given Shard;
// Supervisor pins that goroutine's OS thread to one CPU.
func (s *Shard) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-s.tasks:
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				fn(ctx)
			}()
		case fn := <-s.inline:
			fn()
		case <-ctx.Done():
			s.closeOnce.Do(func() { close(s.closed) })
			s.wg.Wait()
			s.log.Debug().Str("shard", s.Name).Log("shard: dispatch loop drained, all tasks complete")
			return ctx.Err()
		}
	}
}
