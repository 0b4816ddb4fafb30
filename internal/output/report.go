package output

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/torosent/convfire/internal/harness"
	"github.com/torosent/convfire/internal/metrics"
)

// PrintStepReport outputs a human-readable summary of one scenario step.
// Aborted steps report the seed failure instead of batch statistics.
func PrintStepReport(w io.Writer, res harness.StepResult) {
	fmt.Fprintf(w, "\n--- Scenario: %s ---\n", res.Step.Scenario)
	if res.Err != nil {
		fmt.Fprintf(w, "Aborted: %v\n", res.Err)
		return
	}

	for _, lb := range res.Batches {
		summary := metrics.Summarize(lb.Batch)
		fmt.Fprintf(w, "%s:\n", lb.Label)
		fmt.Fprintf(w, "  Successful:      %d/%d\n", summary.Successes, summary.Total)
		fmt.Fprintf(w, "  Correct Answers: %d/%d\n", summary.Correct, summary.Total)
		fmt.Fprintf(w, "  Mean Elapsed:    %s\n", formatDuration(summary.MeanElapsed))
	}
}

// PrintRunReport outputs the run-wide summary report.
func PrintRunReport(w io.Writer, stats metrics.Stats) {
	fmt.Fprintln(w, "\n--- Run Results ---")
	fmt.Fprintf(w, "Total Requests:    %d\n", stats.Total)
	fmt.Fprintf(w, "Successful:        %d\n", stats.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", stats.Failures)
	fmt.Fprintf(w, "Correct Answers:   %d\n", stats.Correct)
	fmt.Fprintf(w, "Duration:          %s\n", formatDuration(stats.Duration))
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", formatDuration(stats.MinLatency))
	fmt.Fprintf(w, "  Max:             %s\n", formatDuration(stats.MaxLatency))
	fmt.Fprintf(w, "  Mean:            %s\n", formatDuration(stats.MeanLatency))
	fmt.Fprintf(w, "  P50:             %s\n", formatDuration(stats.P50Latency))
	fmt.Fprintf(w, "  P90:             %s\n", formatDuration(stats.P90Latency))
	fmt.Fprintf(w, "  P99:             %s\n", formatDuration(stats.P99Latency))

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		writeErrorBreakdown(w, stats.Errors, "  ")
	}
}

func writeErrorBreakdown(w io.Writer, errors map[string]int, indent string) {
	types := make([]string, 0, len(errors))
	for t := range errors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if errors[types[i]] != errors[types[j]] {
			return errors[types[i]] > errors[types[j]]
		}
		return types[i] < types[j]
	})
	for _, t := range types {
		fmt.Fprintf(w, "%s%s: %d\n", indent, metrics.FriendlyErrorName(t), errors[t])
	}
}

// formatDuration rounds to the millisecond so report lines stay readable;
// sub-millisecond values keep their full precision.
func formatDuration(d time.Duration) string {
	if d >= time.Millisecond {
		return d.Round(time.Millisecond).String()
	}
	return d.String()
}
