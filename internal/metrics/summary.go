package metrics

import (
	"time"

	"github.com/torosent/convfire/internal/harness"
)

// Summary is the per-scenario verdict over one batch of outcomes.
type Summary struct {
	Total         int           `json:"total"`
	Successes     int           `json:"successes"`
	Correct       int           `json:"correct"`
	MeanElapsed   time.Duration `json:"-"`
	MeanElapsedMs float64       `json:"mean_elapsed_ms"`
}

// Summarize reduces a batch to its summary. The mean is taken over every
// outcome in the batch, failures included; a failed attempt still carries
// the time spent before its error surfaced. An empty batch yields the zero
// Summary.
func Summarize(batch harness.Batch) Summary {
	s := Summary{Total: len(batch)}
	if len(batch) == 0 {
		return s
	}

	var sum time.Duration
	for _, o := range batch {
		sum += o.Elapsed
		if o.Success {
			s.Successes++
		}
		if o.Correct {
			s.Correct++
		}
	}

	s.MeanElapsed = sum / time.Duration(len(batch))
	s.MeanElapsedMs = float64(s.MeanElapsed) / float64(time.Millisecond)
	return s
}

// SuccessRate returns successes over total, zero for an empty batch.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Total)
}

// CorrectRate returns correct answers over total, zero for an empty batch.
func (s Summary) CorrectRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}
