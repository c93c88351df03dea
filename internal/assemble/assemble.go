// Package assemble bundles an entry module together with its registry of
// dynamically loaded modules into one self-contained file plus source map.
package assemble

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/auditpack/auditpack/internal/builderr"
	"github.com/auditpack/auditpack/internal/diag"
	"github.com/auditpack/auditpack/internal/registry"
	"github.com/auditpack/auditpack/internal/sourcemap"
	"github.com/auditpack/auditpack/internal/target"
)

// Plan is the fully resolved input of one assembly. Paths are absolute
// except NodeModules, which is relative to Root.
type Plan struct {
	Entry string
	Dest  string
	Root  string
	// Banner is a legal comment placed at the top of the bundle, ahead of
	// the registry prelude.
	Banner string

	Exclude     target.Set
	NodeModules string
	Refs        []registry.Ref

	// Aliases maps import specifiers to files. Entries whose file does not
	// exist are ignored.
	Aliases  map[string]string
	Platform target.Platform

	// RegistryGlobal is the global property the registry map is published
	// under.
	RegistryGlobal string
	// Descriptors are the base names of package descriptor files whose
	// contents are cut down to their version field.
	Descriptors []string
}

// Output describes the files an assembly wrote.
type Output struct {
	Code     string
	Map      string
	Modules  int
	Inputs   int
	Warnings []api.Message
}

// Assemble bundles plan.Entry to plan.Dest and writes plan.Dest+".map".
// Nothing is written unless the bundler succeeds.
func Assemble(ctx context.Context, plan Plan) (Output, error) {
	out := Output{Code: plan.Dest, Map: plan.Dest + ".map", Modules: len(plan.Refs)}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	wrapper, err := entryWrapper(plan)
	if err != nil {
		return out, builderr.Assembly("generate registry entry", err)
	}
	head, err := banner(plan)
	if err != nil {
		return out, builderr.Assembly("generate registry prelude", err)
	}

	res := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   wrapper,
			ResolveDir: filepath.Dir(plan.Entry),
			Sourcefile: entrySourcefile,
			Loader:     api.LoaderJS,
		},
		AbsWorkingDir:  plan.Root,
		Bundle:         true,
		Write:          false,
		Outfile:        plan.Dest,
		Format:         api.FormatIIFE,
		Platform:       platform(plan.Platform),
		Target:         api.ES2018,
		Sourcemap:      api.SourceMapInline,
		SourcesContent: api.SourcesContentInclude,
		Banner:         map[string]string{"js": head},
		Metafile:       true,
		LogLevel:       api.LogLevelSilent,
		Plugins: []api.Plugin{
			aliasPlugin(plan.Aliases),
			excludePlugin(plan),
			versionPlugin(plan.Descriptors),
			inlineFSPlugin(plan.Root, plan.NodeModules),
		},
	})
	out.Warnings = res.Warnings
	if len(res.Errors) > 0 {
		return out, builderr.Assembly("bundle "+plan.Entry, diag.Error(res.Errors))
	}
	out.Inputs = countInputs(res.Metafile)

	bundle, err := pickOutput(res.OutputFiles, plan.Dest)
	if err != nil {
		return out, builderr.Assembly("bundle "+plan.Entry, err)
	}
	code, mapJSON, err := sourcemap.Extract(bundle, filepath.Base(out.Map))
	if err != nil {
		return out, builderr.Assembly("extract source map", err)
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	if err := os.MkdirAll(filepath.Dir(plan.Dest), 0o755); err != nil {
		return out, builderr.Configuration("create destination directory", err)
	}
	if err := os.WriteFile(out.Code, code, 0o644); err != nil {
		return out, builderr.Assembly("write bundle", err)
	}
	if err := os.WriteFile(out.Map, mapJSON, 0o644); err != nil {
		return out, builderr.Assembly("write source map", err)
	}
	return out, nil
}

func platform(p target.Platform) api.Platform {
	if p == target.PlatformBrowser {
		return api.PlatformBrowser
	}
	return api.PlatformNode
}

func pickOutput(files []api.OutputFile, dest string) ([]byte, error) {
	for _, f := range files {
		if filepath.Clean(f.Path) == filepath.Clean(dest) {
			return f.Contents, nil
		}
	}
	for _, f := range files {
		if filepath.Ext(f.Path) != ".map" {
			return f.Contents, nil
		}
	}
	return nil, fmt.Errorf("bundler produced no output for %s", dest)
}

func countInputs(metafile string) int {
	var meta struct {
		Inputs map[string]json.RawMessage `json:"inputs"`
	}
	if err := json.Unmarshal([]byte(metafile), &meta); err != nil {
		return 0
	}
	return len(meta.Inputs)
}
