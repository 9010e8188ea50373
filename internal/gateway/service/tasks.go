package service

import (
	"context"
	"sync"

	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
)

// TaskGroup runs fire-and-forget work (usage touches, cache hit counts,
// background refreshes) detached from the request's cancellation, while still
// letting shutdown and tests wait for it. The zero value is ready to use.
type TaskGroup struct {
	wg sync.WaitGroup
}

// Go runs fn in a new goroutine. fn receives a context that keeps the
// request's values (logger, correlation id) but is never cancelled with it.
func (g *TaskGroup) Go(ctx context.Context, name string, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slogx.FromContext(ctx).Error("background task panicked", "task", name, "panic", r)
			}
		}()
		fn(ctx)
	}()
}

// Wait blocks until every task started so far has returned.
func (g *TaskGroup) Wait() {
	g.wg.Wait()
}
