package orchestrator

import "errors"

// Sentinel errors for orchestration. All are locally recoverable: the state
// machine returns to an invocable state and none terminate the process.
var (
	// ErrNoContext indicates generation was requested with no user turns in
	// the ledger. The precondition check fails fast with no state change.
	ErrNoContext = errors.New("no client context supplied")

	// ErrGenerationRunning indicates a generation is already in flight.
	// Concurrent requests are rejected, not queued or merged.
	ErrGenerationRunning = errors.New("generation already running")

	// ErrEmptyResponse indicates the agent call succeeded but normalization
	// produced no usable content. Surfaced distinctly from invocation
	// failures so the operator knows the call itself went through.
	ErrEmptyResponse = errors.New("agent returned an empty response")

	// ErrAgentInvocation indicates a transport-level or agent-reported
	// failure. The wrapped message carries the agent's report when present.
	ErrAgentInvocation = errors.New("agent invocation failed")
)
