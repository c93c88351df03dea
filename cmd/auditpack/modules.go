package auditpack

import (
	"github.com/spf13/cobra"

	"github.com/auditpack/auditpack/internal/pipeline"
	"github.com/auditpack/auditpack/internal/report"
)

var flagModulesTarget string

func init() {
	cmd := &cobra.Command{
		Use:   "modules <entry>",
		Short: "List the modules registered for an entry's target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pipeline.Prepare(pipeline.Config{Entry: args[0], Root: flagRoot, Target: flagModulesTarget})
			if err != nil {
				return err
			}
			return report.PrintModules(cmd.OutOrStdout(), p.Refs, p.Root)
		},
	}
	cmd.Flags().StringVar(&flagModulesTarget, "target", "", "target kind (default: inferred from entry name)")
	_ = cmd.RegisterFlagCompletionFunc("target", completeTargets)
	rootCmd.AddCommand(cmd)
}
