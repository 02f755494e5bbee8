package hooks

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Executor runs the hooks for one event in parallel
type Executor struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewExecutor allows at most maxConcurrency hooks to run at once
func NewExecutor(maxConcurrency int64, timeout time.Duration) *Executor {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{sem: semaphore.NewWeighted(maxConcurrency), timeout: timeout}
}

// ExecuteAll runs every hook and waits for all of them. Results keep the
// order of hooks.
func (e *Executor) ExecuteAll(ctx context.Context, hooks []Hook, event *Event) []ExecutionResult {
	if len(hooks) == 0 {
		return nil
	}

	results := make([]ExecutionResult, len(hooks))
	var wg sync.WaitGroup

	for i, h := range hooks {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			results[i] = failed(h, event, err, 0)
			continue
		}

		wg.Add(1)
		go func(i int, h Hook) {
			defer wg.Done()
			defer e.sem.Release(1)
			results[i] = e.Execute(ctx, h, event)
		}(i, h)
	}

	wg.Wait()
	return results
}

// Execute runs a single hook under the executor timeout
func (e *Executor) Execute(ctx context.Context, h Hook, event *Event) ExecutionResult {
	hookCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	if err := h.Execute(hookCtx, event); err != nil {
		return failed(h, event, err, time.Since(start))
	}

	return ExecutionResult{
		HookName:    h.Name(),
		EventType:   event.Type,
		FailureMode: modeOf(h),
		Success:     true,
		Duration:    time.Since(start),
	}
}

func failed(h Hook, event *Event, err error, d time.Duration) ExecutionResult {
	return ExecutionResult{
		HookName:    h.Name(),
		EventType:   event.Type,
		FailureMode: modeOf(h),
		Error:       err.Error(),
		Duration:    d,
	}
}

func modeOf(h Hook) FailureMode {
	if m := h.FailureMode(); m != "" {
		return m
	}
	return FailureWarn
}
