package harness

import (
	"context"
	"sync"
	"time"

	"github.com/Laisky/zap"

	"github.com/torosent/convfire/internal/tracing"
)

// Scenario names.
const (
	ScenarioIndependent = "independent"
	ScenarioShared      = "shared"
	ScenarioMixed       = "mixed"
)

// task pairs a caller-assigned request ID with the conversation it joins;
// an empty conversationID opens a fresh one.
type task struct {
	id             int
	conversationID string
}

// wave launches one goroutine per task and blocks until all of them finish.
// Each goroutine writes exactly one pre-allocated slot, so the returned
// batch is ordered by task position with no locking. A failed attempt never
// cancels its siblings; the wave always joins every launched attempt.
func (h *Harness) wave(ctx context.Context, tasks []task) Batch {
	outcomes := make(Batch, len(tasks))

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, tk := range tasks {
		if h.launch != nil {
			// Launch pacing only; an expired context falls through and the
			// attempt resolves as a failed outcome, keeping one outcome per task.
			_ = h.launch.Wait(ctx)
		}
		go func(slot int, tk task) {
			defer wg.Done()
			outcomes[slot] = h.attempt(ctx, tk.id, tk.conversationID)
		}(i, tk)
	}
	wg.Wait()

	return outcomes
}

// RunIndependent fires n concurrent attempts, each opening its own
// conversation. Outcomes come back ordered by request ID 1..n.
func (h *Harness) RunIndependent(ctx context.Context, n int) Batch {
	ctx, span := tracing.StartScenarioSpan(ctx, h.tracer, ScenarioIndependent)
	defer tracing.EndSpan(span, nil)

	h.logScenarioStart(ScenarioIndependent, n)
	start := time.Now()

	tasks := make([]task, n)
	for i := range tasks {
		tasks[i] = task{id: i + 1}
	}
	batch := h.wave(ctx, tasks)

	h.logScenarioDone(ScenarioIndependent, batch, time.Since(start))
	return batch
}

// RunShared opens one conversation with a synchronous seed request, then
// fires n concurrent attempts into it. If the seed fails no concurrent work
// is launched and a [*SeedError] is returned.
func (h *Harness) RunShared(ctx context.Context, n int) (Batch, error) {
	ctx, span := tracing.StartScenarioSpan(ctx, h.tracer, ScenarioShared)

	h.logScenarioStart(ScenarioShared, n)
	start := time.Now()

	seed := h.attempt(ctx, seedID, "")
	if !seed.Success {
		err := &SeedError{Outcome: seed}
		tracing.EndSpan(span, err)
		if h.logger != nil {
			h.logger.Warn("seed request failed, aborting scenario",
				zap.String("scenario", ScenarioShared),
				zap.String("error", seed.Err),
			)
		}
		return nil, err
	}

	tasks := make([]task, n)
	for i := range tasks {
		tasks[i] = task{id: i + 1, conversationID: seed.ConversationID}
	}
	batch := h.wave(ctx, tasks)

	tracing.EndSpan(span, nil)
	h.logScenarioDone(ScenarioShared, batch, time.Since(start))
	return batch, nil
}

// RunMixed seeds one shared conversation, then fires a single wave mixing
// numNew attempts that open fresh conversations with numSame attempts that
// join the seeded one. The two partitions come back separately, each ordered
// by request ID; fresh attempts take IDs 1..numNew and shared attempts
// continue from there.
func (h *Harness) RunMixed(ctx context.Context, numNew, numSame int) (newBatch, sameBatch Batch, err error) {
	ctx, span := tracing.StartScenarioSpan(ctx, h.tracer, ScenarioMixed)

	h.logScenarioStart(ScenarioMixed, numNew+numSame)
	start := time.Now()

	seed := h.attempt(ctx, seedID, "")
	if !seed.Success {
		seedErr := &SeedError{Outcome: seed}
		tracing.EndSpan(span, seedErr)
		if h.logger != nil {
			h.logger.Warn("seed request failed, aborting scenario",
				zap.String("scenario", ScenarioMixed),
				zap.String("error", seed.Err),
			)
		}
		return nil, nil, seedErr
	}

	tasks := make([]task, 0, numNew+numSame)
	for i := 0; i < numNew; i++ {
		tasks = append(tasks, task{id: i + 1})
	}
	for i := 0; i < numSame; i++ {
		tasks = append(tasks, task{id: numNew + i + 1, conversationID: seed.ConversationID})
	}
	all := h.wave(ctx, tasks)

	tracing.EndSpan(span, nil)
	h.logScenarioDone(ScenarioMixed, all, time.Since(start))
	return all[:numNew], all[numNew:], nil
}

func (h *Harness) logScenarioStart(scenario string, n int) {
	if h.logger == nil {
		return
	}
	h.logger.Info("scenario starting",
		zap.String("scenario", scenario),
		zap.Int("requests", n),
	)
}

func (h *Harness) logScenarioDone(scenario string, batch Batch, elapsed time.Duration) {
	if h.logger == nil {
		return
	}
	successes := 0
	for _, o := range batch {
		if o.Success {
			successes++
		}
	}
	h.logger.Info("scenario finished",
		zap.String("scenario", scenario),
		zap.Int("requests", len(batch)),
		zap.Int("successes", successes),
		zap.Duration("elapsed", elapsed),
	)
}
