package auditpack

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/auditpack/auditpack/internal/buildinfo"
)

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the auditpack version and the project commit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "auditpack %s\n", toolVersion())
			root := flagRoot
			if root == "" {
				root = "."
			}
			if id, err := buildinfo.CommitID(root); err == nil {
				fmt.Fprintf(out, "project commit %s\n", id)
			} else {
				fmt.Fprintf(out, "project commit unavailable: %v\n", err)
			}
		},
	}
	rootCmd.AddCommand(cmd)
}

// toolVersion prefers the module version stamped at build time.
func toolVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return version
}
