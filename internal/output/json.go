package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/torosent/convfire/internal/harness"
	"github.com/torosent/convfire/internal/metrics"
)

// Report is the JSON document emitted in json-output mode: one entry per
// scenario step plus the run-wide stats.
type Report struct {
	RunID  string        `json:"run_id,omitempty"`
	Target string        `json:"target,omitempty"`
	Model  string        `json:"model,omitempty"`
	Steps  []StepReport  `json:"steps"`
	Stats  metrics.Stats `json:"stats"`
}

// StepReport is one scenario step of the JSON report. Error is set when the
// step aborted on its seed request, in which case Batches is empty.
type StepReport struct {
	Scenario  string        `json:"scenario"`
	ElapsedMs float64       `json:"elapsed_ms"`
	Error     string        `json:"error,omitempty"`
	Batches   []BatchReport `json:"batches,omitempty"`
}

// BatchReport is one labeled batch of a step with its per-request outcomes.
type BatchReport struct {
	Label    string          `json:"label"`
	Summary  metrics.Summary `json:"summary"`
	Outcomes []OutcomeView   `json:"outcomes"`
}

// OutcomeView is the JSON shape of a single attempt outcome.
type OutcomeView struct {
	RequestID      int     `json:"request_id"`
	Success        bool    `json:"success"`
	ElapsedMs      float64 `json:"elapsed_ms"`
	ConversationID string  `json:"conversation_id,omitempty"`
	Correct        bool    `json:"correct"`
	Error          string  `json:"error,omitempty"`
}

// NewReport assembles the JSON report for a completed run.
func NewReport(runID, target, model string, results []harness.StepResult, stats metrics.Stats) Report {
	steps := make([]StepReport, 0, len(results))
	for _, res := range results {
		steps = append(steps, NewStepReport(res))
	}
	return Report{
		RunID:  runID,
		Target: target,
		Model:  model,
		Steps:  steps,
		Stats:  stats,
	}
}

// NewStepReport converts a driver step result into its JSON view.
func NewStepReport(res harness.StepResult) StepReport {
	step := StepReport{
		Scenario:  res.Step.Scenario,
		ElapsedMs: float64(res.Elapsed) / float64(time.Millisecond),
	}

	if res.Err != nil {
		step.Error = res.Err.Error()
		return step
	}

	step.Batches = make([]BatchReport, 0, len(res.Batches))
	for _, lb := range res.Batches {
		step.Batches = append(step.Batches, BatchReport{
			Label:    lb.Label,
			Summary:  metrics.Summarize(lb.Batch),
			Outcomes: newOutcomeViews(lb.Batch),
		})
	}
	return step
}

func newOutcomeViews(batch harness.Batch) []OutcomeView {
	views := make([]OutcomeView, 0, len(batch))
	for _, o := range batch {
		views = append(views, OutcomeView{
			RequestID:      o.ID,
			Success:        o.Success,
			ElapsedMs:      float64(o.Elapsed) / float64(time.Millisecond),
			ConversationID: o.ConversationID,
			Correct:        o.Correct,
			Error:          o.Err,
		})
	}
	return views
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
