package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/quorumdev/quorum/internal/agent"
	"github.com/quorumdev/quorum/internal/events"
	"github.com/quorumdev/quorum/internal/provider"
	"github.com/quorumdev/quorum/internal/review"
)

// MaxFanOutWorkers bounds how many reviewer calls run concurrently
const MaxFanOutWorkers = 5

// Coordinator fans reviewer work out across roles and collects the
// stringified feedback into one mapping keyed by role name
type Coordinator struct {
	backend provider.Provider
	cfg     agent.ReviewerConfig
	events  *events.Bus // may be nil
	session string
}

// NewCoordinator creates a fan-out coordinator over a shared backend.
// The bus is optional; pass nil to disable event emission.
func NewCoordinator(backend provider.Provider, cfg agent.ReviewerConfig, bus *events.Bus, session string) *Coordinator {
	return &Coordinator{
		backend: backend,
		cfg:     cfg,
		events:  bus,
		session: session,
	}
}

// Run reviews presenterOutput under every requested role and returns one
// feedback string per role. previousByRole supplies each role its own prior
// feedback only. With parallel=false the same per-role logic runs inline on
// the calling goroutine; the per-role results are identical either way.
//
// A failure inside one role's review never cancels its siblings: the failed
// role's entry carries a "Review failed" message instead.
func (c *Coordinator) Run(ctx context.Context, presenterOutput string, roles []string, iteration int, previousByRole map[string]string, parallel bool) map[string]string {
	results := make(map[string]string, len(roles))
	if len(roles) == 0 {
		// No pool for an empty batch
		return results
	}

	if !parallel {
		for _, role := range roles {
			results[role] = c.reviewOne(ctx, presenterOutput, role, iteration, previousByRole[role])
		}
		return results
	}

	workers := len(roles)
	if workers > MaxFanOutWorkers {
		workers = MaxFanOutWorkers
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)

	for _, role := range roles {
		wg.Add(1)

		// Acquire semaphore slot (blocks if pool at capacity)
		sem <- struct{}{}

		go func(role string) {
			defer func() {
				<-sem
				wg.Done()
			}()

			text := c.reviewOne(ctx, presenterOutput, role, iteration, previousByRole[role])

			mu.Lock()
			results[role] = text
			mu.Unlock()
		}(role)
	}

	wg.Wait()
	return results
}

// reviewOne runs a single role's review end to end. Panics inside review or
// stringification are contained here so one role cannot take down the batch.
func (c *Coordinator) reviewOne(ctx context.Context, content, role string, iteration int, previous string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("Review failed: %v", r)
			c.emit(events.NewEvent(events.ReviewerFailed, c.session).
				WithRole(role).
				WithIteration(iteration).
				WithError(fmt.Errorf("%v", r)))
		}
	}()

	c.emit(events.NewEvent(events.ReviewerStarted, c.session).
		WithRole(role).
		WithIteration(iteration))

	reviewer := agent.NewReviewer(c.backend, review.RoleByName(role), c.cfg)
	feedback := reviewer.Review(ctx, content, iteration, previous)

	c.emit(events.NewEvent(events.ReviewerCompleted, c.session).
		WithRole(role).
		WithIteration(iteration).
		WithPayload(map[string]interface{}{"points": len(feedback.FeedbackPoints)}))

	return feedback.String()
}

func (c *Coordinator) emit(e events.Event) {
	if c.events != nil {
		c.events.Emit(e)
	}
}
