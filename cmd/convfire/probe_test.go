package main

import (
	"strings"
	"testing"

	"github.com/Laisky/errors/v2"

	"github.com/torosent/convfire/internal/modelprobe"
)

func TestFormatCLIResult(t *testing.T) {
	cases := []struct {
		name string
		res  modelprobe.CLIResult
		want string
	}{
		{"available", modelprobe.CLIResult{Alias: "opus", Available: true}, "✓ opus"},
		{"rejected", modelprobe.CLIResult{Alias: "haiku"}, "✗ haiku"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatCLIResult(tc.res); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}

	errRes := modelprobe.CLIResult{Alias: "slow", Err: errors.New("probe timed out")}
	got := formatCLIResult(errRes)
	if !strings.HasPrefix(got, "⚠ slow:") || !strings.Contains(got, "probe timed out") {
		t.Errorf("unexpected error formatting: %q", got)
	}
}
