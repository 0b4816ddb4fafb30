package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/torosent/convfire/internal/harness"
	"github.com/torosent/convfire/internal/metrics"
)

func TestNewStepReport(t *testing.T) {
	res := harness.StepResult{
		Step: harness.Step{Scenario: harness.ScenarioShared, Requests: 2},
		Batches: []harness.LabeledBatch{
			{
				Label: harness.LabelShared,
				Batch: harness.Batch{
					{ID: 1, Success: true, Correct: true, Elapsed: 1500 * time.Millisecond, ConversationID: "conv-1"},
					{ID: 2, Success: false, Elapsed: 500 * time.Millisecond, Err: "connection refused"},
				},
			},
		},
		Elapsed: 2 * time.Second,
	}

	step := NewStepReport(res)

	if step.Scenario != harness.ScenarioShared {
		t.Errorf("expected scenario shared, got %s", step.Scenario)
	}
	if step.ElapsedMs != 2000 {
		t.Errorf("expected 2000ms elapsed, got %.1f", step.ElapsedMs)
	}
	if step.Error != "" {
		t.Errorf("expected no step error, got %q", step.Error)
	}
	if len(step.Batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(step.Batches))
	}

	batch := step.Batches[0]
	if batch.Label != harness.LabelShared {
		t.Errorf("expected shared label, got %s", batch.Label)
	}
	if batch.Summary.Total != 2 || batch.Summary.Successes != 1 || batch.Summary.Correct != 1 {
		t.Errorf("unexpected summary: %+v", batch.Summary)
	}
	if len(batch.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(batch.Outcomes))
	}

	first := batch.Outcomes[0]
	if first.RequestID != 1 || !first.Success || !first.Correct {
		t.Errorf("unexpected first outcome: %+v", first)
	}
	if first.ElapsedMs != 1500 {
		t.Errorf("expected 1500ms, got %.1f", first.ElapsedMs)
	}
	if first.ConversationID != "conv-1" {
		t.Errorf("expected conversation id conv-1, got %q", first.ConversationID)
	}

	second := batch.Outcomes[1]
	if second.Success || second.Error != "connection refused" {
		t.Errorf("unexpected second outcome: %+v", second)
	}
}

func TestNewStepReportAborted(t *testing.T) {
	res := harness.StepResult{
		Step: harness.Step{Scenario: harness.ScenarioMixed, New: 3, Same: 3},
		Err: &harness.SeedError{
			Outcome: harness.Outcome{ID: 0, Err: "status 500"},
		},
	}

	step := NewStepReport(res)

	if step.Error == "" {
		t.Error("expected step error to be set")
	}
	if len(step.Batches) != 0 {
		t.Errorf("expected no batches for aborted step, got %d", len(step.Batches))
	}
}

func TestPrintJSONReportSchema(t *testing.T) {
	collector := metrics.NewCollector()
	collector.Record(2*time.Second, nil, true)

	results := []harness.StepResult{
		{
			Step: harness.Step{Scenario: harness.ScenarioIndependent, Requests: 1},
			Batches: []harness.LabeledBatch{
				{
					Label: harness.LabelIndependent,
					Batch: harness.Batch{{ID: 1, Success: true, Correct: true, Elapsed: 2 * time.Second, ConversationID: "conv-1"}},
				},
			},
			Elapsed: 2 * time.Second,
		},
	}

	report := NewReport("01JD0000000000000000000000", "http://localhost:8080", "claude-opus-4-20250514", results, collector.Stats(2*time.Second))

	var buf bytes.Buffer
	if err := PrintJSONReport(&buf, report); err != nil {
		t.Fatalf("PrintJSONReport failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	for _, key := range []string{"run_id", "target", "model", "steps", "stats"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected top-level key %q in JSON report", key)
		}
	}

	output := buf.String()
	for _, key := range []string{`"request_id"`, `"success"`, `"elapsed_ms"`, `"conversation_id"`, `"correct"`, `"mean_elapsed_ms"`, `"success_rate"`} {
		if !strings.Contains(output, key) {
			t.Errorf("expected %s in JSON report", key)
		}
	}

	if strings.Contains(output, `"error"`) {
		t.Errorf("did not expect error fields in an all-success report")
	}
}
