package auditpack

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/auditpack/auditpack/internal/diag"
	"github.com/auditpack/auditpack/internal/report"
	"github.com/auditpack/auditpack/pkg/core"
)

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := core.BuildWithOptions(ctx, core.Options{
		Entry:  args[0],
		Dest:   args[1],
		Root:   flagRoot,
		Target: flagTarget,
		Commit: flagCommit,
		Logger: newLogger(),
	})
	if err != nil {
		if msgs := diag.Messages(err); len(msgs) > 0 {
			stderr := cmd.ErrOrStderr()
			diag.Write(stderr, msgs, diag.Options{Kind: "error", Color: !flagNoColor && diag.IsTerminal(stderr)})
		}
		return err
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return core.MarshalResult(out, res)
	}
	report.PrintSummary(out, report.Summary{
		Dest:     res.Dest,
		Map:      res.Map,
		Target:   res.Kind.String(),
		Modules:  res.Modules,
		Inputs:   res.Inputs,
		CodeHash: res.CodeHash,
		Duration: res.Duration,
	})
	return nil
}
