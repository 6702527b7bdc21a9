// Package orchestrator coordinates one proposal generation end to end:
// prompt compilation, the asynchronous agent invocation, response
// normalization, metadata derivation, and the resulting writes to the
// current-proposal slot, the history store, and the conversation ledger.
//
// # State machine
//
// The orchestrator owns a single generation state that no other component
// writes. Transitions:
//
//	IDLE/SUCCEEDED/FAILED --Generate--> RUNNING --success--> SUCCEEDED
//	                                            --failure--> FAILED
//
// Terminal states re-arm on the next Generate. At most one generation may be
// RUNNING system-wide; this is enforced by the transition guard, not a
// separate lock object.
//
// # Progress
//
// While RUNNING, a repeating estimator advances a cosmetic progress value by
// a bounded random increment and walks an ordered list of phase labels. It
// is capped at 85 and cancelled deterministically when the real call
// completes: the completion path marks the episode done under the state
// mutex before its terminal write, and the estimator re-checks that mark
// under the same mutex before every write, so completion always wins.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/proposalstudio/proposalstudio/internal/agentclient"
	"github.com/proposalstudio/proposalstudio/internal/document"
	"github.com/proposalstudio/proposalstudio/internal/history"
	"github.com/proposalstudio/proposalstudio/internal/ledger"
	"github.com/proposalstudio/proposalstudio/internal/log"
	"github.com/proposalstudio/proposalstudio/internal/prompt"
)

// Phase identifies the coarse state of the generation state machine.
type Phase int

// Generation states.
const (
	Idle Phase = iota
	Running
	Succeeded
	Failed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is an immutable snapshot of the generation state machine.
// Progress is in [0,100] and monotonically non-decreasing within one
// RUNNING episode; Label is the human-readable phase description.
type State struct {
	Phase    Phase
	Progress int
	Label    string
	Err      error
}

// Estimator bounds.
const (
	// progressStart is the progress value set on entering RUNNING.
	progressStart = 10

	// progressCeiling is the maximum the estimator may reach before the
	// real call completes. Cosmetic feedback must never look finished.
	progressCeiling = 85

	// incrementMin/incrementMax bound the random progress step.
	incrementMin = 2
	incrementMax = 10
)

const (
	labelInitializing = "Initializing proposal generation..."
	labelComplete     = "Complete"

	// fallbackErrorMessage surfaces when the agent reports no message.
	fallbackErrorMessage = "Failed to generate proposal. Please try again."
)

// estimatorLabels are the ordered cosmetic phase labels. The estimator
// advances one label per tick and stays on the last.
var estimatorLabels = []string{
	"Analyzing client context...",
	"Generating Executive Summary...",
	"Building solution architecture...",
	"Drafting implementation timeline...",
	"Calculating ROI projections...",
	"Validating financial models...",
	"Assembling final proposal...",
}

// Config contains all required parameters for the Orchestrator.
type Config struct {
	Ledger  *ledger.Ledger
	History *history.Store
	Invoker agentclient.Invoker
	AgentID string
	Logger  log.Logger

	// TickInterval is the estimator period. Zero uses the 3s default.
	TickInterval time.Duration
}

// validate checks that required parameters are present.
func (cfg Config) validate() error {
	if cfg.Ledger == nil {
		return errors.New("ledger is required")
	}
	if cfg.History == nil {
		return errors.New("history store is required")
	}
	if cfg.Invoker == nil {
		return errors.New("invoker is required")
	}
	if cfg.AgentID == "" {
		return errors.New("agent ID is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// defaultTickInterval matches the cadence the preview pane expects.
const defaultTickInterval = 3 * time.Second

// episode tracks one RUNNING span. done is flipped under the orchestrator
// mutex exactly once, by the completion path, before the terminal state
// write; stop wakes the estimator goroutine so it exits promptly.
type episode struct {
	stop     chan struct{}
	done     bool
	labelIdx int
}

// Orchestrator is the generation state machine.
type Orchestrator struct {
	turns   *ledger.Ledger
	entries *history.Store
	invoker agentclient.Invoker
	agentID string
	logger  log.Logger
	tick    time.Duration

	// increment returns the next bounded random progress step.
	// Replaced in tests for determinism.
	increment func() int

	mu      sync.Mutex
	state   State
	current *document.Proposal
}

// New creates an Orchestrator in the IDLE state.
func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	tick := cfg.TickInterval
	if tick <= 0 {
		tick = defaultTickInterval
	}

	return &Orchestrator{
		turns:   cfg.Ledger,
		entries: cfg.History,
		invoker: cfg.Invoker,
		agentID: cfg.AgentID,
		logger:  cfg.Logger,
		tick:    tick,
		increment: func() int {
			return incrementMin + rand.IntN(incrementMax-incrementMin+1)
		},
		state: State{Phase: Idle},
	}, nil
}

// State returns a snapshot of the generation state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Current returns the current proposal, or nil before the first success.
// The returned proposal is immutable.
func (o *Orchestrator) Current() *document.Proposal {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Generate runs one full orchestration with the given options and returns
// the produced proposal.
//
// Preconditions: rejected with ErrGenerationRunning while another run is in
// flight, and with ErrNoContext when the ledger holds no user turns; neither
// rejection changes state. "Regenerate" is this same entry point over the
// full current ledger - it produces an entirely new proposal and history
// entry, never a diff.
//
// If ctx is cancelled mid-run, the estimator and the pending call are
// abandoned with no document, history, or ledger writes, and the state
// machine returns to IDLE.
func (o *Orchestrator) Generate(ctx context.Context, opts prompt.Options) (*document.Proposal, error) {
	o.mu.Lock()
	if o.state.Phase == Running {
		o.mu.Unlock()
		return nil, ErrGenerationRunning
	}
	// Snapshot the ledger after the guard so a turn appended while entering
	// RUNNING cannot land in the prompt of a run that ignores its count.
	turns := o.turns.Turns()
	userTurns := 0
	for _, t := range turns {
		if t.Role == ledger.RoleUser {
			userTurns++
		}
	}
	if userTurns == 0 {
		o.mu.Unlock()
		return nil, ErrNoContext
	}
	ep := &episode{stop: make(chan struct{})}
	o.state = State{Phase: Running, Progress: progressStart, Label: labelInitializing}
	o.mu.Unlock()

	compiled := prompt.Compile(turns, opts)
	o.logger.Debug("starting generation",
		"agent_id", o.agentID,
		"depth", opts.Depth.Sections(),
		"user_turns", userTurns,
		"prompt_bytes", len(compiled),
	)

	go o.estimate(ep)

	result, err := o.invoker.Invoke(ctx, compiled, o.agentID)
	o.finish(ep)

	if ctx.Err() != nil {
		o.transition(State{Phase: Idle})
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, o.fail(fmt.Errorf("%w: %w", ErrAgentInvocation, err))
	}
	if !result.Success {
		msg := result.ErrorMessage
		if msg == "" {
			msg = fallbackErrorMessage
		}
		return nil, o.fail(fmt.Errorf("%w: %s", ErrAgentInvocation, msg))
	}

	content := document.Normalize(result.Payload)
	if content == "" {
		return nil, o.fail(ErrEmptyResponse)
	}

	doc := document.Document{HTML: content}
	meta := document.Extract(content)
	proposal := &document.Proposal{
		Document:    doc,
		Depth:       opts.Depth.String(),
		GeneratedAt: time.Now(),
	}

	o.entries.Append(history.NewEntry(doc, proposal.Depth, proposal.GeneratedAt, userTurns))

	summary := fmt.Sprintf(
		"Proposal generated successfully: **%s** with %d sections. Review the preview panel. Use **Regenerate** to create a new version if needed.",
		meta.Title, meta.SectionCount,
	)
	if err := o.turns.Append(ledger.NewAssistantTurn(summary)); err != nil {
		o.logger.Warn("appending summary turn", "error", err)
	}

	o.mu.Lock()
	o.current = proposal
	o.state = State{Phase: Succeeded, Progress: 100, Label: labelComplete}
	o.mu.Unlock()

	o.logger.Info("generation succeeded",
		"title", meta.Title,
		"client", meta.Client,
		"sections", meta.SectionCount,
		"requested_depth", opts.Depth.Sections(),
	)
	return proposal, nil
}

// finish stops the estimator deterministically: done is set under the state
// mutex, so no tick observed after this call can write state.
func (o *Orchestrator) finish(ep *episode) {
	o.mu.Lock()
	ep.done = true
	o.mu.Unlock()
	close(ep.stop)
}

// transition replaces the state snapshot.
func (o *Orchestrator) transition(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// fail transitions to FAILED carrying err, preserving the last progress
// snapshot, and returns err for the caller. No document or history mutation
// accompanies a failure.
func (o *Orchestrator) fail(err error) error {
	o.mu.Lock()
	o.state = State{Phase: Failed, Progress: o.state.Progress, Label: o.state.Label, Err: err}
	o.mu.Unlock()
	o.logger.Warn("generation failed", "error", err)
	return err
}

// estimate drives the cosmetic progress signal for one episode. Each tick
// advances progress by a bounded random increment, capped at
// progressCeiling, and moves to the next phase label. Writes happen under
// the state mutex and only while the episode is not done.
func (o *Orchestrator) estimate(ep *episode) {
	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ep.stop:
			return
		case <-ticker.C:
			o.mu.Lock()
			if ep.done {
				o.mu.Unlock()
				return
			}
			next := o.state.Progress + o.increment()
			if next > progressCeiling {
				next = progressCeiling
			}
			if next > o.state.Progress {
				o.state.Progress = next
			}
			if ep.labelIdx < len(estimatorLabels) {
				o.state.Label = estimatorLabels[ep.labelIdx]
				ep.labelIdx++
			}
			o.mu.Unlock()
		}
	}
}
