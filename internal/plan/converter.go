package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/torosent/convfire/internal/harness"
)

// Plan is a parsed and validated scenario sequence ready to hand to the
// driver. PauseSet distinguishes an explicit "0s" in the file from a file
// that never mentions a pause.
type Plan struct {
	Steps    []harness.Step
	Pause    time.Duration
	PauseSet bool
}

// Convert transforms a plan file into driver steps, filling omitted counts
// from the provided defaults.
func Convert(file *File, opts ConvertOptions) (*Plan, error) {
	if file == nil {
		return nil, fmt.Errorf("plan file is nil")
	}
	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("invalid plan: no steps")
	}

	plan := &Plan{
		Steps: make([]harness.Step, 0, len(file.Steps)),
	}

	for i, spec := range file.Steps {
		step := specToStep(spec, opts)
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		plan.Steps = append(plan.Steps, step)
	}

	if file.Pause != "" {
		pause, err := time.ParseDuration(file.Pause)
		if err != nil {
			return nil, fmt.Errorf("invalid pause %q: %w", file.Pause, err)
		}
		if pause < 0 {
			return nil, fmt.Errorf("invalid pause %q: must not be negative", file.Pause)
		}
		plan.Pause = pause
		plan.PauseSet = true
	}

	return plan, nil
}

// specToStep converts a single plan entry into a driver step, applying
// defaults for counts the file omits.
func specToStep(spec StepSpec, opts ConvertOptions) harness.Step {
	step := harness.Step{
		Scenario: strings.ToLower(strings.TrimSpace(spec.Scenario)),
		Requests: spec.Requests,
		New:      spec.New,
		Same:     spec.Same,
	}

	if step.Requests == 0 {
		step.Requests = opts.DefaultRequests
	}
	if step.New == 0 {
		step.New = opts.DefaultMixedNew
	}
	if step.Same == 0 {
		step.Same = opts.DefaultMixedSame
	}

	return step
}
