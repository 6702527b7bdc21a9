package agentclient

import (
	"context"
	"sync/atomic"
)

// MockInvoker is an Invoker for tests. It returns the configured result or
// error, optionally blocking until Gate is closed or the context is
// cancelled so tests can observe in-flight state.
type MockInvoker struct {
	Result *Result
	Err    error

	// Gate, when non-nil, blocks Invoke until it is closed.
	Gate chan struct{}

	calls atomic.Int64
}

// Invoke implements Invoker.
func (m *MockInvoker) Invoke(ctx context.Context, promptText, agentID string) (*Result, error) {
	m.calls.Add(1)
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// Calls returns how many times Invoke was called.
func (m *MockInvoker) Calls() int { return int(m.calls.Load()) }
