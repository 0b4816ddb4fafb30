package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/torosent/convfire/internal/metrics"
)

func TestProgressReporterStopWithoutStart(t *testing.T) {
	collector := metrics.NewCollector()

	for i := 0; i < 5; i++ {
		collector.Record(30*time.Millisecond, nil, true)
	}

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 100*time.Millisecond, &buf)

	if reporter == nil {
		t.Fatal("Expected non-nil reporter")
	}

	// Stopping an unstarted reporter must not block or panic.
	reporter.Stop()
}

func TestProgressReporterFormatting(t *testing.T) {
	collector := metrics.NewCollector()

	collector.Record(2*time.Second, nil, true)
	collector.Record(3*time.Second, nil, false)

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 20*time.Millisecond, &buf)
	reporter.Start()

	time.Sleep(60 * time.Millisecond)
	reporter.Stop()

	output := buf.String()
	if !strings.Contains(output, "Requests:") {
		t.Error("Expected 'Requests:' in progress output")
	}
	if !strings.Contains(output, "Correct: 1") {
		t.Errorf("Expected correct count in progress output, got %q", output)
	}
}

func TestProgressReporterDoubleStart(t *testing.T) {
	collector := metrics.NewCollector()

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 10*time.Millisecond, &buf)
	reporter.Start()
	reporter.Start() // second start is a no-op

	time.Sleep(30 * time.Millisecond)
	reporter.Stop()
	reporter.Stop() // second stop is a no-op too
}
