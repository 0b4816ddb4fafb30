package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a
// Config. Flags win over config file settings, which win over environment
// fallbacks and built-in defaults. Running with no arguments is valid and
// targets a local bridge with the stock scenario set.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		Requests:   5,
		MixedNew:   3,
		MixedSame:  3,
		Pause:      2 * time.Second,
		Timeout:    120 * time.Second,
		ClaudePath: "claude",
		ConfigFile: configPath,
		Tracing:    TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	// Fall back to the environment, then the built-in default.
	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	if cfg.TargetURL == "" {
		if envTarget := os.Getenv("CONVFIRE_TARGET"); envTarget != "" {
			cfg.TargetURL = strings.TrimSpace(envTarget)
		} else {
			cfg.TargetURL = DefaultTarget
		}
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		if envModel := os.Getenv("CONVFIRE_MODEL"); envModel != "" {
			cfg.Model = strings.TrimSpace(envModel)
		} else {
			cfg.Model = DefaultModel
		}
	}

	if err := checkPlanFile(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "model"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("model: %w", err)
		}
		if val != "" {
			cfg.Model = strings.TrimSpace(val)
		}
	}

	if raw, ok := lookupSetting(settings, "requests"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("requests: %w", err)
		}
		cfg.Requests = val
	}

	if raw, ok := lookupSetting(settings, "mixednew", "mixed_new", "mixed-new"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("mixedNew: %w", err)
		}
		cfg.MixedNew = val
	}

	if raw, ok := lookupSetting(settings, "mixedsame", "mixed_same", "mixed-same"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("mixedSame: %w", err)
		}
		cfg.MixedSame = val
	}

	if raw, ok := lookupSetting(settings, "pause"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("pause: %w", err)
		}
		cfg.Pause = dur
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "launchrate", "launch_rate", "launch-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("launchRate: %w", err)
		}
		cfg.LaunchRate = val
	}

	if raw, ok := lookupSetting(settings, "jsonoutput", "json_output", "json-output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("jsonOutput: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "logrequests", "log_requests", "log-requests"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("logRequests: %w", err)
		}
		cfg.LogRequests = val
	}

	if raw, ok := lookupSetting(settings, "plan"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("plan: %w", err)
		}
		cfg.PlanFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		thresholds, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = thresholds
	}

	if raw, ok := lookupSetting(settings, "claudepath", "claude_path", "claude-path"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("claudePath: %w", err)
		}
		if strings.TrimSpace(val) != "" {
			cfg.ClaudePath = strings.TrimSpace(val)
		}
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracing(raw)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tracing
	}

	return nil
}

func parseTracing(value interface{}) (TracingConfig, error) {
	if value == nil {
		return TracingConfig{Protocol: "grpc", SampleRate: 1.0}, nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}
	return buildTracingConfig(entry)
}

func buildTracingConfig(settings map[string]interface{}) (TracingConfig, error) {
	tracing := TracingConfig{Protocol: "grpc", SampleRate: 1.0}
	if raw, ok := lookupSetting(settings, "enabled"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("enabled: %w", err)
		}
		tracing.Enabled = val
	}
	if raw, ok := lookupSetting(settings, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("service_name: %w", err)
		}
		tracing.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		tracing.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		if strings.TrimSpace(val) != "" {
			tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
		}
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		tracing.Insecure = val
	}
	if raw, ok := lookupSetting(settings, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("sample_rate: %w", err)
		}
		tracing.SampleRate = val
	}
	return tracing, nil
}

// checkPlanFile verifies the plan file exists and is readable. Step parsing
// happens in the plan package, called from the cmd layer once the rest of the
// configuration has validated.
func checkPlanFile(cfg *Config) error {
	if strings.TrimSpace(cfg.PlanFile) == "" {
		return nil
	}
	if _, err := os.ReadFile(cfg.PlanFile); err != nil {
		return fmt.Errorf("failed to open plan file: %w", err)
	}
	return nil
}
