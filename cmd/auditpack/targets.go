package auditpack

import (
	"github.com/spf13/cobra"

	"github.com/auditpack/auditpack/internal/config"
	"github.com/auditpack/auditpack/internal/report"
	"github.com/auditpack/auditpack/internal/target"
)

func init() {
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List deployment targets and what each one excludes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			layout, err := loadLayout()
			if err != nil {
				return err
			}
			return report.PrintTargets(cmd.OutOrStdout(), target.Table(), layout)
		},
	}
	rootCmd.AddCommand(cmd)
}

func loadLayout() (config.Layout, error) {
	root := flagRoot
	if root == "" {
		root = "."
	}
	local, global, err := config.Load(root)
	if err != nil {
		return config.Layout{}, err
	}
	return config.Resolve(local, global), nil
}
