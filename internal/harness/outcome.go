package harness

import (
	"fmt"
	"time"
)

// Outcome is the classified result of a single chat completion attempt.
//
// Two invariants hold for every Outcome the harness produces: Correct is
// never true unless Success is, and ConversationID is only set when Success
// is. Err carries a description of what went wrong and is empty on success.
type Outcome struct {
	ID             int
	Success        bool
	Elapsed        time.Duration
	ConversationID string
	Correct        bool
	Err            string
}

// Batch is one scenario wave's outcomes, ordered by the caller-assigned
// request ID regardless of the order attempts completed in.
type Batch []Outcome

// SeedError reports that a scenario's synchronous seed request failed. The
// scenario aborts before launching any concurrent attempts; the failed seed
// outcome rides along for the report.
type SeedError struct {
	Outcome Outcome
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("seed request failed: %s", e.Outcome.Err)
}

// Recorder receives every attempt's raw result for run-wide aggregation.
// correct is only meaningful when err is nil.
type Recorder interface {
	Record(latency time.Duration, err error, correct bool)
}
