// Package metrics aggregates attempt results into per-scenario summaries and
// run-wide statistics.
//
// # Summaries
//
// [Summarize] reduces one scenario's batch of outcomes to its verdict:
//
//	summary := metrics.Summarize(batch)
//	fmt.Printf("%d/%d succeeded, %d correct\n", summary.Successes, summary.Total, summary.Correct)
//
// Summarize is a pure function over the batch it is given; it never touches
// the network or the clock.
//
// # Collector
//
// The [Collector] accumulates every attempt across all scenarios for the
// end-of-run report. Latencies feed an HDR histogram so the report can show
// percentiles:
//
//	collector := metrics.NewCollector()
//	collector.Record(latency, err, correct)
//	stats := collector.Stats(elapsed)
//
// The Collector is safe to call from many goroutines at once.
//
// # Error Breakdown
//
// Failed attempts are grouped by Go error type. [FriendlyErrorName] converts
// the raw type names into readable labels for the report ("HTTP error
// response", "Context deadline exceeded").
package metrics
