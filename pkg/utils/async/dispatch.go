package async

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs handler in its own goroutine under a detached context.
//
// The detached context keeps the caller's logger, tagged with task, but not
// its deadline or cancellation: once dispatched, the handler runs to
// completion. A panic is recovered and logged with its stack; a returned
// error is logged at error level.
func Dispatch(ctx context.Context, task string, handler func(ctx context.Context) error) {
	newCtx := detach(ctx, task)

	go func() {
		logger := ctxlog.From(newCtx)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in async task",
					"recover", r,
					"stack", string(debug.Stack()))
			}
		}()

		if err := handler(newCtx); err != nil {
			logger.Error("async task failed", "error", err)
		}
	}()
}

func detach(ctx context.Context, task string) context.Context {
	logger := ctxlog.From(ctx).With(slog.String("task", task))
	return ctxlog.With(context.Background(), logger)
}
