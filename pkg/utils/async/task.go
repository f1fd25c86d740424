package async

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Task runs a handler in its own goroutine and lets the caller join for
// the typed result later, overlapping the handler's network latency with
// other work.
type Task[T any] struct {
	done   chan struct{}
	result T
	err    error
}

// Run launches the handler asynchronously with panic recovery. A panic
// is logged with its stack and surfaced to Wait as an error.
func Run[T any](ctx context.Context, handler func(ctx context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				ctxlog.From(ctx).Error("panic in async task",
					"recover", r,
					"stack", string(stack))
				t.err = goerr.New("panic in async task", goerr.V("recover", fmt.Sprint(r)))
			}
		}()

		t.result, t.err = handler(ctx)
	}()

	return t
}

// Wait blocks until the handler finishes or the context is cancelled.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-t.done:
		return t.result, t.err
	}
}
