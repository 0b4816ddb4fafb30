package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Built-in fallbacks used when neither flags, config file, nor environment
// provide a value.
const (
	DefaultTarget = "http://localhost:8080"
	DefaultModel  = "claude-opus-4-20250514"
)

type Config struct {
	TargetURL   string        `mapstructure:"target"`
	Model       string        `mapstructure:"model"`
	Requests    int           `mapstructure:"requests"`
	MixedNew    int           `mapstructure:"mixed_new"`
	MixedSame   int           `mapstructure:"mixed_same"`
	Pause       time.Duration `mapstructure:"pause"`
	Timeout     time.Duration `mapstructure:"timeout"`
	LaunchRate  float64       `mapstructure:"launch_rate"`
	JSONOutput  bool          `mapstructure:"json_output"`
	LogRequests bool          `mapstructure:"log_requests"`
	PlanFile    string        `mapstructure:"plan"`
	Thresholds  []string      `mapstructure:"thresholds"`
	ClaudePath  string        `mapstructure:"claude_path"`
	Tracing     TracingConfig `mapstructure:"tracing"`

	// Mode switches, flag-only.
	ListModels bool   `mapstructure:"-"`
	ProbeCLI   bool   `mapstructure:"-"`
	ConfigFile string `mapstructure:"-"`
}

// TracingConfig controls OpenTelemetry span export.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	target := strings.TrimSpace(c.TargetURL)
	if target == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	} else {
		parsed, err := url.Parse(target)
		if err != nil {
			issues = append(issues, fmt.Sprintf("target is not a valid URL: %v", err))
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			issues = append(issues, fmt.Sprintf("target scheme must be http or https, got %q", parsed.Scheme))
		}
	}

	if strings.TrimSpace(c.Model) == "" {
		issues = append(issues, "model is required")
	}

	if c.Requests < 1 {
		issues = append(issues, "requests must be >= 1")
	}
	if c.MixedNew < 1 {
		issues = append(issues, "mixed-new must be >= 1")
	}
	if c.MixedSame < 1 {
		issues = append(issues, "mixed-same must be >= 1")
	}
	if c.Pause < 0 {
		issues = append(issues, "pause must be >= 0")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.LaunchRate < 0 {
		issues = append(issues, "launch-rate must be >= 0")
	}

	// Each wave holds one conversation per in-flight request on the server
	// side; warn before someone points a huge burst at a shared bridge.
	if c.Requests > 100 {
		fmt.Fprintf(os.Stderr, "WARNING: High concurrent request count (%d). Ensure the endpoint can absorb the burst.\n", c.Requests)
	}

	tracingIssues := validateTracingConfig(c.Tracing)
	if len(tracingIssues) > 0 {
		issues = append(issues, tracingIssues...)
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}

	return nil
}

func validateTracingConfig(tc TracingConfig) []string {
	var issues []string
	if !tc.Enabled {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(tc.Protocol)) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", tc.Protocol))
	}
	if tc.SampleRate < 0 || tc.SampleRate > 1.0 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", tc.SampleRate))
	}
	return issues
}
