package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "convfire",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Endpoint flags
	flags.String("target", DefaultTarget, "Base URL of the chat completion bridge")
	flags.StringP("model", "m", DefaultModel, "Model identifier sent with every request")
	flags.Duration("timeout", 120*time.Second, "Per-request timeout (0 means no timeout)")

	// Scenario flags
	flags.IntP("requests", "n", 5, "Concurrent requests per scenario wave")
	flags.Int("mixed-new", 3, "Fresh-conversation requests in the mixed scenario")
	flags.Int("mixed-same", 3, "Shared-conversation requests in the mixed scenario")
	flags.Duration("pause", 2*time.Second, "Settle time between scenarios")
	flags.Float64("launch-rate", 0, "Request launches per second within a wave (0 means all at once)")
	flags.String("plan", "", "Path to a YAML scenario plan file")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("log-requests", false, "Log each request outcome to stderr")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Threshold flags
	flags.StringSlice("threshold", nil, "Result thresholds (repeatable, e.g., 'success_rate >= 0.8')")

	// Tracing flags
	flags.Bool("trace", false, "Export OpenTelemetry spans for every request")
	flags.String("trace-endpoint", "", "OTLP collector endpoint (host:port)")
	flags.String("trace-protocol", "grpc", "OTLP transport: 'grpc' or 'http'")
	flags.Bool("trace-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")

	// Model probing flags
	flags.Bool("list-models", false, "List models advertised by the bridge and exit")
	flags.Bool("probe-cli", false, "Probe model aliases through the claude binary and exit")
	flags.String("claude-path", "claude", "Path to the claude binary for CLI probing")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}
	if fs.Changed("model") {
		val, err := fs.GetString("model")
		if err != nil {
			return err
		}
		cfg.Model = strings.TrimSpace(val)
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("requests") {
		val, err := fs.GetInt("requests")
		if err != nil {
			return err
		}
		cfg.Requests = val
	}
	if fs.Changed("mixed-new") {
		val, err := fs.GetInt("mixed-new")
		if err != nil {
			return err
		}
		cfg.MixedNew = val
	}
	if fs.Changed("mixed-same") {
		val, err := fs.GetInt("mixed-same")
		if err != nil {
			return err
		}
		cfg.MixedSame = val
	}
	if fs.Changed("pause") {
		val, err := fs.GetDuration("pause")
		if err != nil {
			return err
		}
		cfg.Pause = val
	}
	if fs.Changed("launch-rate") {
		val, err := fs.GetFloat64("launch-rate")
		if err != nil {
			return err
		}
		cfg.LaunchRate = val
	}
	if fs.Changed("plan") {
		val, err := fs.GetString("plan")
		if err != nil {
			return err
		}
		cfg.PlanFile = strings.TrimSpace(val)
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("log-requests") {
		val, err := fs.GetBool("log-requests")
		if err != nil {
			return err
		}
		cfg.LogRequests = val
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}
	if fs.Changed("trace") {
		val, err := fs.GetBool("trace")
		if err != nil {
			return err
		}
		cfg.Tracing.Enabled = val
	}
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("list-models") {
		val, err := fs.GetBool("list-models")
		if err != nil {
			return err
		}
		cfg.ListModels = val
	}
	if fs.Changed("probe-cli") {
		val, err := fs.GetBool("probe-cli")
		if err != nil {
			return err
		}
		cfg.ProbeCLI = val
	}
	if fs.Changed("claude-path") {
		val, err := fs.GetString("claude-path")
		if err != nil {
			return err
		}
		if strings.TrimSpace(val) != "" {
			cfg.ClaudePath = strings.TrimSpace(val)
		}
	}

	return nil
}
