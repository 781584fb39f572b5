package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quorumdev/quorum/internal/agent"
	"github.com/quorumdev/quorum/internal/confidence"
	"github.com/quorumdev/quorum/internal/events"
	"github.com/quorumdev/quorum/internal/provider"
)

var (
	// ErrSessionFinalized is returned when a round is requested on a
	// finalized session
	ErrSessionFinalized = errors.New("session already finalized")

	// ErrIterationLimit is returned when the session has used all of its
	// allowed iterations
	ErrIterationLimit = errors.New("iteration limit reached")
)

// Store is the session persistence surface the engine writes through. The
// engine owns the in-memory history; the store mirrors it and carries the
// finalized latch.
type Store interface {
	RecordIteration(state *IterationState)
	GetLastIteration() *IterationState
	IsFinalized() bool
	IncrementIterationCounter() int
}

// Config carries the per-agent tuning used to build a round's agents
type Config struct {
	Presenter  agent.PresenterConfig
	Reviewer   agent.ReviewerConfig
	Aggregator agent.AggregatorConfig
}

// DefaultConfig returns the standard per-agent tuning
func DefaultConfig() Config {
	return Config{
		Presenter:  agent.DefaultPresenterConfig(),
		Reviewer:   agent.DefaultReviewerConfig(),
		Aggregator: agent.DefaultAggregatorConfig(),
	}
}

// Engine drives the iterate-review-approve state machine for one session.
// Not safe for concurrent use; callers serialize access themselves.
type Engine struct {
	backend     provider.Provider
	store       Store
	cfg         Config
	events      *events.Bus // may be nil
	session     string
	presenter   *agent.Presenter
	aggregator  *agent.Aggregator
	coordinator *Coordinator
	history     []*IterationState
}

// NewEngine wires an engine over a shared backend and session store.
// The bus is optional; pass nil to disable event emission.
func NewEngine(backend provider.Provider, store Store, cfg Config, bus *events.Bus, session string) *Engine {
	return &Engine{
		backend:     backend,
		store:       store,
		cfg:         cfg,
		events:      bus,
		session:     session,
		presenter:   agent.NewPresenter(backend, cfg.Presenter),
		aggregator:  agent.NewAggregator(backend, cfg.Aggregator),
		coordinator: NewCoordinator(backend, cfg.Reviewer, bus, session),
	}
}

// RunIteration executes one full round: presenter, reviewer fan-out,
// aggregation, confidence scoring. It fails fast with ErrSessionFinalized or
// ErrIterationLimit before doing any work; every other failure is recorded
// as an error IterationState (confidence zero) that is still appended to
// history, and the returned error is nil.
func (e *Engine) RunIteration(ctx context.Context, requirements string, roles []string, fileSummaries []string, parallel bool) (*IterationState, error) {
	if e.store != nil && e.store.IsFinalized() {
		return nil, ErrSessionFinalized
	}
	if len(e.history)+1 > MaxIterations {
		return nil, ErrIterationLimit
	}

	n := len(e.history) + 1
	e.emit(events.NewEvent(events.IterationStarted, e.session).WithIteration(n))

	state := &IterationState{
		Iteration:        n,
		ReviewerFeedback: map[string]string{},
		Timestamp:        time.Now(),
	}

	prior := e.CurrentIteration()
	presenterOut, feedback, aggregated, score, err := e.executeRound(ctx, requirements, roles, fileSummaries, n, prior, parallel)
	if err != nil {
		state.Error = err.Error()
		e.emit(events.NewEvent(events.IterationFailed, e.session).
			WithIteration(n).
			WithError(err))
	} else {
		state.PresenterOutput = presenterOut
		state.ReviewerFeedback = feedback
		state.AggregatedFeedback = aggregated
		state.Confidence = score
		e.emit(events.NewEvent(events.IterationCompleted, e.session).WithIteration(n))
	}

	e.history = append(e.history, state)
	if e.store != nil {
		e.store.RecordIteration(state)
	}
	return state, nil
}

// executeRound runs the four agent steps. A panic anywhere inside is
// converted to an error so the caller can record a failed round.
func (e *Engine) executeRound(ctx context.Context, requirements string, roles []string, fileSummaries []string, n int, prior *IterationState, parallel bool) (presenterOut string, feedback map[string]string, aggregated string, score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("iteration %d panicked: %v", n, r)
		}
	}()

	// Refinement mode only continues from an output the human accepted
	var priorFeedback []string
	var priorOutput string
	if prior != nil && prior.Approved {
		priorFeedback = []string{prior.AggregatedFeedback}
		priorOutput = prior.PresenterOutput
	}

	e.emit(events.NewEvent(events.PresenterStarted, e.session).WithIteration(n))
	presenterOut, err = e.presenter.Generate(ctx, requirements, priorFeedback, priorOutput, fileSummaries)
	if err != nil {
		e.emit(events.NewEvent(events.PresenterFailed, e.session).
			WithIteration(n).
			WithError(err))
		return "", nil, "", 0, err
	}
	e.emit(events.NewEvent(events.PresenterCompleted, e.session).WithIteration(n))

	var previousByRole map[string]string
	if prior != nil {
		previousByRole = prior.ReviewerFeedback
	}
	feedback = e.coordinator.Run(ctx, presenterOut, roles, n, previousByRole, parallel)

	e.emit(events.NewEvent(events.AggregationStarted, e.session).WithIteration(n))
	aggregated = e.aggregator.Aggregate(ctx, feedback, presenterOut)
	e.emit(events.NewEvent(events.AggregationCompleted, e.session).WithIteration(n))

	score = confidence.Calculate(feedback, aggregated, previousByRole)
	e.emit(events.NewEvent(events.ConfidenceCalculated, e.session).
		WithIteration(n).
		WithPayload(score))

	return presenterOut, feedback, aggregated, score, nil
}

// ApproveIteration flips the matching round to approved and reports whether
// it exists. It does not advance the session store's iteration counter; the
// caller makes that call explicitly after a successful approval.
func (e *Engine) ApproveIteration(n int) bool {
	for _, state := range e.history {
		if state.Iteration == n {
			state.Approved = true
			e.emit(events.NewEvent(events.GateApproved, e.session).WithIteration(n))
			return true
		}
	}
	return false
}

// CanRunNextIteration reports whether another round may start: the session
// is live, the iteration limit has room, and the previous round (if any)
// was approved.
func (e *Engine) CanRunNextIteration() bool {
	if e.store != nil && e.store.IsFinalized() {
		return false
	}
	if len(e.history) >= MaxIterations {
		return false
	}
	last := e.CurrentIteration()
	return last == nil || last.Approved
}

// IsReadyForFinalization reports whether the last round is approved and its
// confidence clears the convergence bar (boundary inclusive).
func (e *Engine) IsReadyForFinalization() bool {
	last := e.CurrentIteration()
	return last != nil && last.Approved && last.Confidence >= confidence.Threshold
}

// CurrentIteration returns the most recent round, or nil before the first run
func (e *Engine) CurrentIteration() *IterationState {
	if len(e.history) == 0 {
		return nil
	}
	return e.history[len(e.history)-1]
}

// AllIterations returns the full history in run order
func (e *Engine) AllIterations() []*IterationState {
	out := make([]*IterationState, len(e.history))
	copy(out, e.history)
	return out
}

// IterationCount returns how many rounds have been recorded, including
// failed attempts
func (e *Engine) IterationCount() int {
	return len(e.history)
}

// Reset clears the in-memory history only; the session store keeps its own
// records. Use when reusing an engine instance for a brand-new session.
func (e *Engine) Reset() {
	e.history = nil
	e.emit(events.NewEvent(events.SessionReset, e.session))
}

func (e *Engine) emit(ev events.Event) {
	if e.events != nil {
		e.events.Emit(ev)
	}
}
