package metrics_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/torosent/convfire/internal/harness"
	"github.com/torosent/convfire/internal/metrics"
)

func TestSummarizeCountsAndMean(t *testing.T) {
	batch := harness.Batch{
		{ID: 1, Success: true, Correct: true, Elapsed: 10 * time.Millisecond},
		{ID: 2, Success: true, Correct: true, Elapsed: 20 * time.Millisecond},
		{ID: 3, Success: true, Correct: true, Elapsed: 30 * time.Millisecond},
		{ID: 4, Success: true, Correct: false, Elapsed: 40 * time.Millisecond},
		{ID: 5, Success: false, Correct: false, Elapsed: 50 * time.Millisecond, Err: "boom"},
	}

	s := metrics.Summarize(batch)

	if s.Total != 5 {
		t.Errorf("Total = %d, want 5", s.Total)
	}
	if s.Successes != 4 {
		t.Errorf("Successes = %d, want 4", s.Successes)
	}
	if s.Correct != 3 {
		t.Errorf("Correct = %d, want 3", s.Correct)
	}
	// The failed attempt's elapsed time counts toward the mean.
	if s.MeanElapsed != 30*time.Millisecond {
		t.Errorf("MeanElapsed = %v, want 30ms", s.MeanElapsed)
	}
	if s.MeanElapsedMs != 30 {
		t.Errorf("MeanElapsedMs = %v, want 30", s.MeanElapsedMs)
	}
}

func TestSummarizeEmptyBatch(t *testing.T) {
	s := metrics.Summarize(nil)

	if s.Total != 0 || s.Successes != 0 || s.Correct != 0 {
		t.Errorf("counts = %d/%d/%d, want zeros", s.Total, s.Successes, s.Correct)
	}
	if s.MeanElapsed != 0 {
		t.Errorf("MeanElapsed = %v, want 0", s.MeanElapsed)
	}
	if s.SuccessRate() != 0 || s.CorrectRate() != 0 {
		t.Errorf("rates = %v/%v, want zeros", s.SuccessRate(), s.CorrectRate())
	}
}

func TestSummaryRates(t *testing.T) {
	batch := harness.Batch{
		{Success: true, Correct: true},
		{Success: true, Correct: true},
		{Success: true, Correct: true},
		{Success: true},
		{},
	}

	s := metrics.Summarize(batch)

	if got := s.SuccessRate(); got != 0.8 {
		t.Errorf("SuccessRate() = %v, want 0.8", got)
	}
	if got := s.CorrectRate(); got != 0.6 {
		t.Errorf("CorrectRate() = %v, want 0.6", got)
	}
}

func TestSummaryJSONSchema(t *testing.T) {
	s := metrics.Summarize(harness.Batch{
		{Success: true, Correct: true, Elapsed: 15 * time.Millisecond},
	})

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, field := range []string{"total", "successes", "correct", "mean_elapsed_ms"} {
		if _, ok := parsed[field]; !ok {
			t.Errorf("missing field %q in JSON output", field)
		}
	}
	if _, exists := parsed["MeanElapsed"]; exists {
		t.Errorf("raw duration field should not appear in JSON output")
	}
}
