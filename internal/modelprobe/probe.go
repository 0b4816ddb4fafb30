// Package modelprobe discovers which model identifiers the bridge and the
// local claude CLI actually accept. The harness never consumes probe results
// at run time; this backs the list-models and probe-cli commands.
package modelprobe

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"golang.org/x/sync/errgroup"

	"github.com/torosent/convfire/internal/chatapi"
)

const (
	// canaryPrompt is sent through the CLI; a usable model echoes the canary
	// word back in some form.
	canaryPrompt = "Say 'ok' if this model works"
	canaryWord   = "ok"

	defaultProbeTimeout = 5 * time.Second
	defaultParallelism  = 4
)

// DefaultCandidates returns the model aliases worth probing, from the short
// evergreen aliases to dated full names.
func DefaultCandidates() []string {
	return []string{
		"opus",
		"sonnet",
		"haiku",
		"opus-4",
		"opus-4.1",
		"sonnet-4",
		"claude-opus-4-1-20250805",
		"claude-sonnet-4-20250514",
	}
}

// ModelLister is the slice of the chat client the API probe needs.
type ModelLister interface {
	ListModels(ctx context.Context) (*chatapi.ModelList, error)
}

// ProbeAPI fetches the bridge's model listing and returns the advertised IDs.
func ProbeAPI(ctx context.Context, lister ModelLister) ([]string, error) {
	list, err := lister.ListModels(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list models")
	}

	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// CLIOptions configure a CLI probe run.
type CLIOptions struct {
	Path        string        // claude binary to invoke, defaults to "claude"
	Candidates  []string      // aliases to try, defaults to DefaultCandidates
	Timeout     time.Duration // per-probe budget
	Parallelism int           // concurrent probes
}

func (o *CLIOptions) normalize() {
	if o.Path == "" {
		o.Path = "claude"
	}
	if len(o.Candidates) == 0 {
		o.Candidates = DefaultCandidates()
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultProbeTimeout
	}
	if o.Parallelism <= 0 {
		o.Parallelism = defaultParallelism
	}
}

// CLIResult is the verdict for one probed alias. Err is only set when the
// probe itself could not run; an alias the CLI rejects comes back with
// Available false and no error.
type CLIResult struct {
	Alias     string
	Available bool
	Err       error
}

// ProbeCLI tries every candidate alias against the claude CLI and reports
// which ones answer the canary prompt. Probes run concurrently but bounded;
// results come back in candidate order.
func ProbeCLI(ctx context.Context, opts CLIOptions) ([]CLIResult, error) {
	opts.normalize()

	results := make([]CLIResult, len(opts.Candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)

	for i, alias := range opts.Candidates {
		g.Go(func() error {
			results[i] = probeAlias(ctx, opts.Path, alias, opts.Timeout)
			return nil
		})
	}

	_ = g.Wait() // probes absorb their own failures
	if err := ctx.Err(); err != nil {
		return results, errors.Wrap(err, "cli probe interrupted")
	}
	return results, nil
}

// Available filters probe results down to the usable aliases, in probe order.
func Available(results []CLIResult) []string {
	aliases := make([]string, 0, len(results))
	for _, r := range results {
		if r.Available {
			aliases = append(aliases, r.Alias)
		}
	}
	return aliases
}

func probeAlias(ctx context.Context, path, alias string, timeout time.Duration) CLIResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "--model", alias, "--print", canaryPrompt)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return CLIResult{Alias: alias, Err: errors.Wrapf(ctx.Err(), "probe %q", alias)}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The CLI ran and rejected the alias.
			return CLIResult{Alias: alias}
		}
		return CLIResult{Alias: alias, Err: errors.Wrapf(err, "probe %q", alias)}
	}

	return CLIResult{
		Alias:     alias,
		Available: strings.Contains(strings.ToLower(string(out)), canaryWord),
	}
}
