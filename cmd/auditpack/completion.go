package auditpack

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/auditpack/auditpack/internal/target"
)

var shells = []string{"bash", "zsh", "fish", "powershell"}

func init() {
	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		ValidArgs: shells,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletionV2(out, true)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
		Example: `
# Bash
auditpack completion bash > /etc/bash_completion.d/auditpack

# Zsh
auditpack completion zsh > "${fpath[1]}/_auditpack"
`,
	}
	rootCmd.AddCommand(cmd)
	rootCmd.ValidArgsFunction = completeBuildArgs
}

// completeBuildArgs offers JavaScript files for the entry and leaves the
// destination to the shell's default file completion.
func completeBuildArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return []string{"js", "mjs", "cjs"}, cobra.ShellCompDirectiveFilterFileExt
	}
	if len(args) == 1 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// completeTargets lists the target kinds with the entry hints that select
// each one.
func completeTargets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var kinds []string
	for _, r := range target.Table() {
		kinds = append(kinds, cobra.CompletionWithDesc(r.Kind.String(), describeRule(r)))
	}
	return kinds, cobra.ShellCompDirectiveNoFileComp
}

func describeRule(r target.Rule) string {
	d := string(r.Platform)
	if len(r.Hints) > 0 {
		d += ", entry names containing " + strings.Join(r.Hints, " or ")
	}
	return d
}
