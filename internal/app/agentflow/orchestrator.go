package agentflow

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
	"github.com/PabloGalante/tripwise-agent/internal/observability"
)

// Step is one named unit of a sequential flow. Run mutates the shared state and
// returns a short note describing what it did; the note becomes an AgentThought.
type Step[S any] struct {
	Name string
	Run  func(ctx context.Context, state *S) (string, error)
}

// Orchestrator is responsible for running steps in sequence over one state value.
type Orchestrator[S any] struct {
	name  string
	steps []Step[S]
	now   func() time.Time
}

// New builds an orchestrator named after the flow it runs.
func New[S any](name string, steps ...Step[S]) *Orchestrator[S] {
	return &Orchestrator[S]{
		name:  name,
		steps: steps,
		now:   time.Now,
	}
}

// WithClock replaces the clock used to stamp thoughts.
func (o *Orchestrator[S]) WithClock(now func() time.Time) *Orchestrator[S] {
	if now != nil {
		o.now = now
	}
	return o
}

// Run executes the steps sequentially and stops at the first failure. The thoughts
// recorded so far are returned even when a step fails.
func (o *Orchestrator[S]) Run(ctx context.Context, state *S) ([]domain.AgentThought, error) {
	if len(o.steps) == 0 {
		return nil, fmt.Errorf("no steps configured in flow %s", o.name)
	}

	log := observability.LoggerFromContext(ctx).With("flow", o.name)
	log.Info("flow started", "steps_count", len(o.steps))

	thoughts := make([]domain.AgentThought, 0, len(o.steps))
	for _, st := range o.steps {
		if err := ctx.Err(); err != nil {
			log.Warn("flow cancelled", "step", st.Name, "error", err)
			return thoughts, fmt.Errorf("flow %s cancelled before %s: %w", o.name, st.Name, err)
		}

		start := o.now()
		log.Debug("step run start", "step", st.Name)

		note, err := st.Run(ctx, state)
		if err != nil {
			log.Error("step failed", "step", st.Name, "error", err)
			thoughts = append(thoughts, domain.AgentThought{
				Step:      len(thoughts) + 1,
				Thought:   fmt.Sprintf("Error occurred: %v", err),
				Action:    "error",
				Timestamp: o.now(),
			})
			return thoughts, fmt.Errorf("%s: %w", st.Name, err)
		}

		log.Debug("step run end", "step", st.Name, "elapsed_ms", o.now().Sub(start).Milliseconds())

		thoughts = append(thoughts, domain.AgentThought{
			Step:      len(thoughts) + 1,
			Thought:   note,
			Action:    st.Name,
			Timestamp: o.now(),
		})
	}

	log.Info("flow end", "steps_count", len(o.steps))
	return thoughts, nil
}
