package harness_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/torosent/convfire/internal/harness"
)

func TestStepValidate(t *testing.T) {
	cases := []struct {
		name    string
		step    harness.Step
		wantErr bool
	}{
		{"independent ok", harness.Step{Scenario: harness.ScenarioIndependent, Requests: 5}, false},
		{"shared ok", harness.Step{Scenario: harness.ScenarioShared, Requests: 1}, false},
		{"mixed ok", harness.Step{Scenario: harness.ScenarioMixed, New: 3, Same: 3}, false},
		{"zero requests", harness.Step{Scenario: harness.ScenarioIndependent}, true},
		{"mixed missing same", harness.Step{Scenario: harness.ScenarioMixed, New: 3}, true},
		{"unknown scenario", harness.Step{Scenario: "warmup", Requests: 1}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.step.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

// TestDriverRunsDefaultSequence checks the canonical three steps run in
// order and report the expected labeled batches.
func TestDriverRunsDefaultSequence(t *testing.T) {
	bridge := &fakeBridge{}
	h := harness.New(harness.Options{Completer: bridge, Model: "m"})

	var stepLabels [][]string
	d := harness.NewDriver(h, harness.DriverOptions{
		Steps: harness.DefaultSteps(2, 1, 1),
		Pause: 0,
		OnStep: func(res harness.StepResult) {
			labels := make([]string, 0, len(res.Batches))
			for _, lb := range res.Batches {
				labels = append(labels, lb.Label)
			}
			stepLabels = append(stepLabels, labels)
		},
	})

	results := d.Run(context.Background())
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	if results[0].Step.Scenario != harness.ScenarioIndependent {
		t.Errorf("step 0 scenario = %q", results[0].Step.Scenario)
	}
	if len(results[0].Batches) != 1 || len(results[0].Batches[0].Batch) != 2 {
		t.Errorf("step 0 batches = %+v, want one batch of 2", results[0].Batches)
	}
	if results[1].Step.Scenario != harness.ScenarioShared {
		t.Errorf("step 1 scenario = %q", results[1].Step.Scenario)
	}
	if len(results[2].Batches) != 2 {
		t.Errorf("mixed step produced %d batches, want 2", len(results[2].Batches))
	}
	for _, res := range results {
		if res.Err != nil {
			t.Errorf("step %q failed: %v", res.Step.Scenario, res.Err)
		}
		if res.Elapsed <= 0 {
			t.Errorf("step %q elapsed not recorded", res.Step.Scenario)
		}
	}

	want := [][]string{
		{harness.LabelIndependent},
		{harness.LabelShared},
		{harness.LabelMixedNew, harness.LabelMixedSame},
	}
	if len(stepLabels) != len(want) {
		t.Fatalf("OnStep fired %d times, want %d", len(stepLabels), len(want))
	}
	for i := range want {
		if len(stepLabels[i]) != len(want[i]) {
			t.Errorf("step %d labels = %v, want %v", i, stepLabels[i], want[i])
			continue
		}
		for j := range want[i] {
			if stepLabels[i][j] != want[i][j] {
				t.Errorf("step %d label[%d] = %q, want %q", i, j, stepLabels[i][j], want[i][j])
			}
		}
	}
}

// TestDriverContinuesAfterSeedFailure: a seed-aborted scenario is recorded
// and the run moves on to the remaining steps.
func TestDriverContinuesAfterSeedFailure(t *testing.T) {
	bridge := &fakeBridge{
		failFor: func(id int) error {
			if id == 0 {
				return errors.New("bridge is down")
			}
			return nil
		},
	}
	h := harness.New(harness.Options{Completer: bridge, Model: "m"})
	d := harness.NewDriver(h, harness.DriverOptions{
		Steps: harness.DefaultSteps(2, 1, 1),
	})

	results := d.Run(context.Background())
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	if results[0].Err != nil {
		t.Errorf("independent step failed: %v", results[0].Err)
	}
	var seedErr *harness.SeedError
	if !errors.As(results[1].Err, &seedErr) {
		t.Errorf("shared step error = %v, want *SeedError", results[1].Err)
	}
	if !errors.As(results[2].Err, &seedErr) {
		t.Errorf("mixed step error = %v, want *SeedError", results[2].Err)
	}

	// Two aborted seeds plus the independent wave.
	if n := len(bridge.recorded()); n != 4 {
		t.Errorf("bridge saw %d requests, want 4", n)
	}
}

// TestDriverPausesBetweenSteps: the settle time separates steps but does
// not trail the last one.
func TestDriverPausesBetweenSteps(t *testing.T) {
	bridge := &fakeBridge{}
	h := harness.New(harness.Options{Completer: bridge, Model: "m"})
	d := harness.NewDriver(h, harness.DriverOptions{
		Steps: []harness.Step{
			{Scenario: harness.ScenarioIndependent, Requests: 1},
			{Scenario: harness.ScenarioIndependent, Requests: 1},
			{Scenario: harness.ScenarioIndependent, Requests: 1},
		},
		Pause: 30 * time.Millisecond,
	})

	start := time.Now()
	results := d.Run(context.Background())
	elapsed := time.Since(start)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if elapsed < 60*time.Millisecond {
		t.Errorf("run took %v, want at least two 30ms pauses", elapsed)
	}
}

// TestDriverStopsOnCancelledContext: cancellation ends the sequence after
// the in-flight step instead of starting the next one.
func TestDriverStopsOnCancelledContext(t *testing.T) {
	bridge := &fakeBridge{}
	h := harness.New(harness.Options{Completer: bridge, Model: "m"})
	d := harness.NewDriver(h, harness.DriverOptions{
		Steps: harness.DefaultSteps(1, 1, 1),
		Pause: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := d.Run(ctx)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (first step only)", len(results))
	}
}
