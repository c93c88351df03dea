package auditpack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/auditpack/auditpack/internal/config"
)

var (
	cfgOutput  string
	cfgPlugins string
	cfgForce   bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate an .auditpack.yml with the default project layout",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().StringVar(&cfgOutput, "output", ".auditpack.yml", "output file path")
	initCmd.Flags().StringVar(&cfgPlugins, "plugins", "", "comma-separated plugin packages for embedded builds (default: built-in set)")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective layout after merging config files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			layout, err := loadLayout()
			if err != nil {
				return err
			}
			fc := layout.FileConfig()
			b, err := yaml.Marshal(&fc)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cfgCmd.AddCommand(showCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	out := cfgOutput
	if flagRoot != "" && !filepath.IsAbs(out) {
		out = filepath.Join(flagRoot, out)
	}
	if _, err := os.Stat(out); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", out)
	}

	layout := config.DefaultLayout()
	if p := strings.TrimSpace(cfgPlugins); p != "" {
		layout.Plugins = nil
		for _, name := range strings.Split(p, ",") {
			if name = strings.TrimSpace(name); name != "" {
				layout.Plugins = append(layout.Plugins, name)
			}
		}
	}
	fc := layout.FileConfig()
	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, b, 0644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", out)
	return nil
}
