package core

import (
	"context"
	"os"
	"sync"

	"github.com/auditpack/auditpack/internal/buildinfo"
	"github.com/auditpack/auditpack/internal/pipeline"
)

// Re-export selected internal types as a stable public API surface.
type Options = pipeline.Config
type Result = pipeline.Result

var (
	commitOnce sync.Once
	commitID   string
	commitErr  error
)

// CommitID returns the revision of the git repository containing the working
// directory. It is resolved once per process; the outcome, error included,
// is reused by later calls.
func CommitID() (string, error) {
	commitOnce.Do(func() {
		wd, err := os.Getwd()
		if err != nil {
			commitErr = err
			return
		}
		commitID, commitErr = buildinfo.CommitID(wd)
	})
	return commitID, commitErr
}

// Build bundles entry into dest for the target inferred from entry, using
// the working directory as project root.
func Build(entry, dest string) error {
	_, err := BuildWithOptions(context.Background(), Options{Entry: entry, Dest: dest})
	return err
}

// BuildWithOptions runs a build with full control over target, root and
// logging. When neither Commit nor Root is set the commit comes from
// CommitID; with only Root set it is looked up in Root's repository.
func BuildWithOptions(ctx context.Context, opts Options) (Result, error) {
	if opts.Commit == "" && opts.Root == "" {
		id, err := CommitID()
		if err != nil {
			return Result{}, err
		}
		opts.Commit = id
	}
	return pipeline.Build(ctx, opts)
}
