package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/tlsa/sgdk-helper/internal/paths"
	"github.com/tlsa/sgdk-helper/internal/registry"
	"github.com/tlsa/sgdk-helper/internal/run"
)

// Fetcher retrieves dependency sources into the shared source tree.
type Fetcher struct {
	cfg    paths.Config
	runner run.Runner
	status StatusProvider
	client *http.Client
}

// Creates a fetcher over the configured source tree.
func New(cfg paths.Config, runner run.Runner) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		runner: runner,
		status: NewDirStatus(cfg),
		client: http.DefaultClient,
	}
}

// Fetches every given dependency in order, stopping at the first
// failure.
func (f *Fetcher) FetchAll(ctx context.Context, deps []registry.Descriptor) error {
	for _, dep := range deps {
		if err := f.Fetch(ctx, dep); err != nil {
			return err
		}
	}
	return nil
}

// Fetches one dependency's source.
//
// Fetch is safe to run repeatedly: completed work is detected and
// skipped, and only the update step may change previously fetched
// content.
func (f *Fetcher) Fetch(ctx context.Context, dep registry.Descriptor) error {
	status, err := f.status.Status(dep)
	if err != nil {
		return err
	}
	if status == StatusUpToDate {
		slog.Info("source up to date", "dep", dep.Name)
		return nil
	}

	if err := os.MkdirAll(f.cfg.Src, paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}

	switch dep.Kind {
	case registry.KindGit:
		return f.fetchGit(ctx, dep, status)
	default:
		return f.fetchArchive(ctx, dep, status)
	}
}

func (f *Fetcher) fetchGit(ctx context.Context, dep registry.Descriptor, status Status) error {
	dir := f.cfg.SourceDir(dep.Name)

	if status == StatusAbsent {
		if err := f.clone(ctx, dep, dir); err != nil {
			return err
		}
		if len(dep.Sparse) > 0 {
			if err := f.restrict(ctx, dep, dir); err != nil {
				return err
			}
		}
	} else {
		slog.Info("clone skipped, already present", "dep", dep.Name)
	}

	return f.update(ctx, dep, dir)
}

// Clones without blob content, deferring file downloads until checkout.
//
// When a sparse allow-list is declared the initial checkout is skipped
// too, so paths outside the list never materialize.
func (f *Fetcher) clone(ctx context.Context, dep registry.Descriptor, dir string) error {
	slog.Info("cloning", "dep", dep.Name, "url", dep.Location)

	args := []string{"clone", "--filter=blob:none"}
	if len(dep.Sparse) > 0 {
		args = append(args, "--no-checkout")
	}
	args = append(args, dep.Location, dir)

	return f.git(ctx, "", args...)
}

// Restricts the checkout to the descriptor's sparse allow-list.
func (f *Fetcher) restrict(ctx context.Context, dep registry.Descriptor, dir string) error {
	slog.Debug("restricting checkout", "dep", dep.Name, "sparse", dep.Sparse)

	args := append([]string{"sparse-checkout", "set", "--no-cone"}, dep.Sparse...)
	return f.git(ctx, dir, args...)
}

// Advances the checkout to the current pinned ref.
//
// This is the only step that may change already fetched content, and it
// runs on every fetch so a stale clone still catches up.
func (f *Fetcher) update(ctx context.Context, dep registry.Descriptor, dir string) error {
	slog.Info("updating", "dep", dep.Name, "ref", dep.Ref)

	steps := [][]string{
		{"fetch"},
		{"checkout", dep.Ref},
		{"pull", "--ff-only"},
	}
	for _, args := range steps {
		if err := f.git(ctx, dir, args...); err != nil {
			return err
		}
	}
	return nil
}

// Runs git attached to the terminal so its own diagnostics and progress
// reach the operator untranslated.
func (f *Fetcher) git(ctx context.Context, dir string, args ...string) error {
	res, err := f.runner.Run(ctx, run.Command{
		Path:   "git",
		Args:   args,
		Dir:    dir,
		Attach: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: git %s exited with code %d",
			ErrFetch, args[0], res.ExitCode)
	}
	return nil
}
