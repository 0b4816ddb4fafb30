package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	_ "github.com/joho/godotenv/autoload"
	"github.com/oklog/ulid/v2"

	"github.com/torosent/convfire/internal/chatapi"
	"github.com/torosent/convfire/internal/config"
	"github.com/torosent/convfire/internal/harness"
	"github.com/torosent/convfire/internal/metrics"
	"github.com/torosent/convfire/internal/output"
	"github.com/torosent/convfire/internal/plan"
	"github.com/torosent/convfire/internal/threshold"
	"github.com/torosent/convfire/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := glog.NewConsoleWithName("convfire", glog.LevelInfo)
	if err != nil {
		return errors.Wrap(err, "create logger")
	}

	// Bad threshold expressions should surface before any requests fire.
	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := chatapi.NewClient(cfg.TargetURL, cfg.Timeout)
	if err != nil {
		return err
	}

	if cfg.ListModels || cfg.ProbeCLI {
		return probeModels(ctx, logger, cfg, client)
	}

	steps, pause, err := resolvePlan(cfg)
	if err != nil {
		return err
	}

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return errors.Wrap(err, "init tracing")
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	runID := ulid.Make().String()
	collector := metrics.NewCollector()

	h := harness.New(harness.Options{
		Completer:   client,
		Model:       cfg.Model,
		Recorder:    collector,
		Logger:      logger,
		Tracer:      provider.Tracer(),
		LaunchRate:  cfg.LaunchRate,
		LogRequests: cfg.LogRequests,
	})

	driver := harness.NewDriver(h, harness.DriverOptions{
		Steps:  steps,
		Pause:  pause,
		Logger: logger,
		OnStep: func(res harness.StepResult) {
			if !cfg.JSONOutput {
				output.PrintStepReport(os.Stdout, res)
			}
		},
	})

	logger.Info("starting run",
		zap.String("run_id", runID),
		zap.String("target", cfg.TargetURL),
		zap.String("model", cfg.Model),
		zap.Int("steps", len(steps)),
		zap.Duration("pause", pause),
	)

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.LogRequests {
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout)
		progress.Start()
	}

	start := time.Now()
	results := driver.Run(ctx)
	elapsed := time.Since(start)

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}

	stats := collector.Stats(elapsed)

	if cfg.JSONOutput {
		report := output.NewReport(runID, cfg.TargetURL, cfg.Model, results, stats)
		if err := output.PrintJSONReport(os.Stdout, report); err != nil {
			return err
		}
	} else {
		output.PrintRunReport(os.Stdout, stats)
	}

	logger.Info("run complete",
		zap.String("run_id", runID),
		zap.Int64("requests", stats.Total),
		zap.Int64("failures", stats.Failures),
		zap.Int64("correct", stats.Correct),
		zap.Duration("elapsed", elapsed),
	)

	return evaluateThresholds(thresholds, stats, cfg.JSONOutput)
}

// resolvePlan returns the step sequence and inter-step pause, from the plan
// file when one is configured and from the flag surface otherwise.
func resolvePlan(cfg *config.Config) ([]harness.Step, time.Duration, error) {
	if cfg.PlanFile == "" {
		return harness.DefaultSteps(cfg.Requests, cfg.MixedNew, cfg.MixedSame), cfg.Pause, nil
	}

	file, err := plan.ParseFile(cfg.PlanFile)
	if err != nil {
		return nil, 0, err
	}

	p, err := plan.Convert(file, plan.ConvertOptions{
		DefaultRequests:  cfg.Requests,
		DefaultMixedNew:  cfg.MixedNew,
		DefaultMixedSame: cfg.MixedSame,
	})
	if err != nil {
		return nil, 0, errors.Wrapf(err, "plan %s", cfg.PlanFile)
	}

	pause := cfg.Pause
	if p.PauseSet {
		pause = p.Pause
	}
	return p.Steps, pause, nil
}

// evaluateThresholds prints each verdict and fails the run when any
// threshold does not hold. In JSON mode the verdicts go to stderr so stdout
// stays a single JSON document.
func evaluateThresholds(thresholds []threshold.Threshold, stats metrics.Stats, jsonOutput bool) error {
	if len(thresholds) == 0 {
		return nil
	}

	out := os.Stdout
	if jsonOutput {
		out = os.Stderr
	}

	evaluator := threshold.NewEvaluator(thresholds)
	results := evaluator.Evaluate(stats)

	fmt.Fprintln(out, "\nThresholds:")
	failed := 0
	for _, res := range results {
		fmt.Fprintf(out, "  %s\n", res.Message)
		if !res.Pass {
			failed++
		}
	}

	if failed > 0 {
		return errors.Errorf("%d of %d thresholds failed", failed, len(results))
	}
	return nil
}
