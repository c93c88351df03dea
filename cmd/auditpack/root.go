package auditpack

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/auditpack/auditpack/internal/logging"
)

var (
	flagTarget    string
	flagRoot      string
	flagCommit    string
	flagLogLevel  string
	flagLogFormat string
	flagJSON      bool
	flagNoColor   bool

	version = "0.1.0"
)

// rootCmd builds one bundle: auditpack <entryPath> <destinationPath>.
var rootCmd = &cobra.Command{
	Use:   "auditpack <entry> <dest>",
	Short: "Bundle an audit engine and its dynamically loaded modules",
	Long: "auditpack assembles an entry module and every audit and gatherer it loads by path into one " +
		"self-contained bundle for a deployment target, then minifies it and writes a source map next to it.",
	Args:          cobra.ExactArgs(2),
	RunE:          runBuild,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the auditpack CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.Flags().StringVar(&flagTarget, "target", "", "target kind: cli|extension|embedded|server (default: inferred from entry name)")
	rootCmd.Flags().StringVar(&flagCommit, "commit", "", "commit identifier for the banner (default: HEAD of the project repository)")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "emit the build result as JSON")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "project root (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "console", "log format: console|json")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized diagnostics")
	_ = rootCmd.RegisterFlagCompletionFunc("target", completeTargets)
}

func newLogger() logging.Logger {
	l := logging.New(flagLogLevel, flagLogFormat, os.Stderr)
	logging.SetLogger(l)
	return l
}
