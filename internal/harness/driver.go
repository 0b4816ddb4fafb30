package harness

import (
	"context"
	"fmt"
	"time"

	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
)

// Step is one entry of a run plan.
type Step struct {
	Scenario string // independent, shared, or mixed
	Requests int    // wave size for independent and shared
	New      int    // fresh-conversation attempts for mixed
	Same     int    // shared-conversation attempts for mixed
}

// Validate reports whether the step describes a runnable scenario.
func (s Step) Validate() error {
	switch s.Scenario {
	case ScenarioIndependent, ScenarioShared:
		if s.Requests <= 0 {
			return fmt.Errorf("scenario %q requires a positive request count, got %d", s.Scenario, s.Requests)
		}
	case ScenarioMixed:
		if s.New <= 0 || s.Same <= 0 {
			return fmt.Errorf("scenario %q requires positive new and same counts, got new=%d same=%d", s.Scenario, s.New, s.Same)
		}
	default:
		return fmt.Errorf("unknown scenario %q", s.Scenario)
	}
	return nil
}

// DefaultSteps is the canonical three-scenario sequence: independent
// conversations, one shared conversation, then a mixed wave.
func DefaultSteps(requests, mixedNew, mixedSame int) []Step {
	return []Step{
		{Scenario: ScenarioIndependent, Requests: requests},
		{Scenario: ScenarioShared, Requests: requests},
		{Scenario: ScenarioMixed, New: mixedNew, Same: mixedSame},
	}
}

// LabeledBatch is one reported batch of a step. Mixed steps produce two,
// one per partition; the other scenarios produce one.
type LabeledBatch struct {
	Label string
	Batch Batch
}

// StepResult is the outcome of one driver step. Err is set when the
// scenario aborted on its seed request, in which case Batches is empty.
type StepResult struct {
	Step    Step
	Batches []LabeledBatch
	Err     error
	Elapsed time.Duration
}

// Batch labels used in reports.
const (
	LabelIndependent = "independent conversations"
	LabelShared      = "shared conversation"
	LabelMixedNew    = "mixed: new conversations"
	LabelMixedSame   = "mixed: shared conversation"
)

// DriverOptions configure a Driver.
type DriverOptions struct {
	Steps  []Step        // defaults to DefaultSteps(5, 3, 3)
	Pause  time.Duration // settle time between steps, skipped after the last
	Logger glog.Logger
	OnStep func(StepResult) // invoked after each step, before the pause
}

func (o *DriverOptions) normalize() {
	if len(o.Steps) == 0 {
		o.Steps = DefaultSteps(5, 3, 3)
	}
	if o.Pause < 0 {
		o.Pause = 0
	}
}

// Driver sequences scenario steps against one Harness, pausing between
// steps so conversations from one wave settle before the next begins.
type Driver struct {
	harness *Harness
	steps   []Step
	pause   time.Duration
	logger  glog.Logger
	onStep  func(StepResult)
}

func NewDriver(h *Harness, opts DriverOptions) *Driver {
	opts.normalize()
	return &Driver{
		harness: h,
		steps:   opts.Steps,
		pause:   opts.Pause,
		logger:  opts.Logger,
		onStep:  opts.OnStep,
	}
}

// Run executes every step in order. A scenario aborted by its seed request
// is recorded in that step's result and the run continues; only context
// cancellation stops the sequence early. The returned slice holds one
// result per executed step.
func (d *Driver) Run(ctx context.Context) []StepResult {
	results := make([]StepResult, 0, len(d.steps))

	for i, step := range d.steps {
		if i > 0 {
			if err := d.settle(ctx); err != nil {
				break
			}
		}

		res := d.runStep(ctx, step)
		results = append(results, res)
		if d.onStep != nil {
			d.onStep(res)
		}

		if ctx.Err() != nil {
			break
		}
	}

	return results
}

func (d *Driver) runStep(ctx context.Context, step Step) StepResult {
	start := time.Now()
	res := StepResult{Step: step}

	switch step.Scenario {
	case ScenarioIndependent:
		batch := d.harness.RunIndependent(ctx, step.Requests)
		res.Batches = []LabeledBatch{{Label: LabelIndependent, Batch: batch}}
	case ScenarioShared:
		batch, err := d.harness.RunShared(ctx, step.Requests)
		if err != nil {
			res.Err = err
		} else {
			res.Batches = []LabeledBatch{{Label: LabelShared, Batch: batch}}
		}
	case ScenarioMixed:
		newBatch, sameBatch, err := d.harness.RunMixed(ctx, step.New, step.Same)
		if err != nil {
			res.Err = err
		} else {
			res.Batches = []LabeledBatch{
				{Label: LabelMixedNew, Batch: newBatch},
				{Label: LabelMixedSame, Batch: sameBatch},
			}
		}
	default:
		res.Err = fmt.Errorf("unknown scenario %q", step.Scenario)
	}

	res.Elapsed = time.Since(start)

	if res.Err != nil && d.logger != nil {
		d.logger.Warn("step failed",
			zap.String("scenario", step.Scenario),
			zap.String("error", res.Err.Error()),
		)
	}

	return res
}

// settle waits out the configured pause, returning early if the context is
// cancelled.
func (d *Driver) settle(ctx context.Context) error {
	if d.pause <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d.pause)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
