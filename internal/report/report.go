// Package report prints human-readable tables for the CLI.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/auditpack/auditpack/internal/config"
	"github.com/auditpack/auditpack/internal/registry"
	"github.com/auditpack/auditpack/internal/target"
)

// PrintTargets renders the target table as it applies to layout.
func PrintTargets(w io.Writer, rules []target.Rule, layout config.Layout) error {
	table := tablewriter.NewWriter(w)
	table.Header("Target", "Hints", "Platform", "Excludes", "Plugins")
	for _, r := range rules {
		d := target.Describe(r.Kind, layout)
		hints := strings.Join(r.Hints, ", ")
		if hints == "" {
			hints = "(default)"
		}
		plugins := strings.Join(d.Plugins, ", ")
		if plugins == "" {
			plugins = "-"
		}
		excludes := append(append([]string(nil), d.Exclude.Packages...), d.Exclude.Paths...)
		if err := table.Append([]string{r.Kind.String(), hints, string(d.Platform), strings.Join(excludes, "\n"), plugins}); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintModules renders the registry of one build. Paths are shown relative
// to root when possible.
func PrintModules(w io.Writer, refs []registry.Ref, root string) error {
	table := tablewriter.NewWriter(w)
	table.Header("Logical path", "Group", "File")
	for _, r := range refs {
		file := r.Path
		if rel, err := filepath.Rel(root, r.Path); err == nil && !strings.HasPrefix(rel, "..") {
			file = filepath.ToSlash(rel)
		}
		if err := table.Append([]string{r.Logical, string(r.Group), file}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Modules: %d\n", len(refs))
	return nil
}

// Summary is the footer printed after a build.
type Summary struct {
	Dest     string
	Map      string
	Target   string
	Modules  int
	Inputs   int
	CodeHash string
	Duration time.Duration
}

// PrintSummary writes a short build footer.
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "Bundle: %s (%s)\n", s.Dest, s.Target)
	fmt.Fprintf(w, "Source map: %s\n", s.Map)
	fmt.Fprintf(w, "Registry modules: %d, inputs: %d\n", s.Modules, s.Inputs)
	if s.CodeHash != "" {
		fmt.Fprintf(w, "Digest: %s\n", s.CodeHash)
	}
	if s.Duration > 0 {
		fmt.Fprintf(w, "Build duration: %.2fs\n", s.Duration.Seconds())
	}
}
