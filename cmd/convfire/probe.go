package main

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	"github.com/torosent/convfire/internal/chatapi"
	"github.com/torosent/convfire/internal/config"
	"github.com/torosent/convfire/internal/modelprobe"
)

// probeModels services the list-models and probe-cli commands. Both may be
// requested in a single invocation.
func probeModels(ctx context.Context, logger glog.Logger, cfg *config.Config, client *chatapi.Client) error {
	if cfg.ListModels {
		ids, err := modelprobe.ProbeAPI(ctx, client)
		if err != nil {
			return err
		}
		fmt.Printf("Models reported by %s:\n", cfg.TargetURL)
		if len(ids) == 0 {
			fmt.Println("  (none)")
		}
		for _, id := range ids {
			fmt.Printf("  - %s\n", id)
		}
	}

	if cfg.ProbeCLI {
		logger.Info("probing CLI aliases", zap.String("path", cfg.ClaudePath))
		results, err := modelprobe.ProbeCLI(ctx, modelprobe.CLIOptions{Path: cfg.ClaudePath})
		if err != nil {
			return err
		}
		fmt.Println("CLI alias probe:")
		for _, res := range results {
			fmt.Printf("  %s\n", formatCLIResult(res))
		}
		if available := modelprobe.Available(results); len(available) > 0 {
			fmt.Printf("Working aliases: %s\n", strings.Join(available, ", "))
		} else {
			fmt.Println("No working aliases found.")
		}
	}

	return nil
}

func formatCLIResult(res modelprobe.CLIResult) string {
	switch {
	case res.Err != nil:
		return fmt.Sprintf("⚠ %s: %v", res.Alias, res.Err)
	case res.Available:
		return fmt.Sprintf("✓ %s", res.Alias)
	default:
		return fmt.Sprintf("✗ %s", res.Alias)
	}
}
