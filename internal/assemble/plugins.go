package assemble

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/auditpack/auditpack/internal/target"
)

const excludedNamespace = "auditpack-excluded"

var emptyModule = "module.exports = {};\n"

// Node built-ins that have no browser counterpart. On browser targets they
// load as empty modules unless node_modules provides a package of the same
// name or an alias covers them.
var nodeBuiltins = map[string]bool{
	"assert": true, "buffer": true, "child_process": true, "crypto": true,
	"events": true, "fs": true, "http": true, "https": true, "module": true,
	"net": true, "os": true, "path": true, "querystring": true, "readline": true,
	"stream": true, "string_decoder": true, "timers": true, "tls": true,
	"tty": true, "url": true, "util": true, "vm": true, "worker_threads": true,
	"zlib": true,
}

// exactFilter builds an esbuild filter matching any of names exactly.
func exactFilter(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return `^(?:` + strings.Join(quoted, "|") + `)$`
}

func aliasPlugin(aliases map[string]string) api.Plugin {
	live := map[string]string{}
	for spec, file := range aliases {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			live[spec] = file
		}
	}
	return api.Plugin{
		Name: "alias",
		Setup: func(build api.PluginBuild) {
			if len(live) == 0 {
				return
			}
			names := make([]string, 0, len(live))
			for n := range live {
				names = append(names, n)
			}
			sort.Strings(names)
			build.OnResolve(api.OnResolveOptions{Filter: exactFilter(names)},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{Path: live[args.Path], Namespace: "file"}, nil
				})
		},
	}
}

// excludePlugin replaces excluded modules with empty ones. Package rules are
// applied before resolution so a missing optional package is not an error;
// path rules are applied when the file is loaded.
func excludePlugin(plan Plan) api.Plugin {
	set := plan.Exclude
	browser := plan.Platform == target.PlatformBrowser
	return api.Plugin{
		Name: "exclude",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `^[^./]`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if set.MatchPackage(args.Path) || (browser && stubBuiltin(args.Path, plan.Root, plan.NodeModules)) {
						return api.OnResolveResult{Path: args.Path, Namespace: excludedNamespace}, nil
					}
					return api.OnResolveResult{}, nil
				})
			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: excludedNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					return api.OnLoadResult{Contents: &emptyModule, Loader: api.LoaderJS}, nil
				})
			if len(set.Paths) == 0 && plan.NodeModules == "" {
				return
			}
			build.OnLoad(api.OnLoadOptions{Filter: `\.(?:[mc]?js|json)$`, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					rel, err := filepath.Rel(plan.Root, args.Path)
					if err != nil || strings.HasPrefix(rel, "..") {
						return api.OnLoadResult{}, nil
					}
					if set.MatchPath(rel, plan.NodeModules) {
						return api.OnLoadResult{Contents: &emptyModule, Loader: api.LoaderJS}, nil
					}
					return api.OnLoadResult{}, nil
				})
		},
	}
}

func stubBuiltin(spec, root, nodeModules string) bool {
	name := strings.TrimPrefix(spec, "node:")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		name = name[:i]
	}
	if !nodeBuiltins[name] {
		return false
	}
	if strings.HasPrefix(spec, "node:") || nodeModules == "" {
		return true
	}
	info, err := os.Stat(filepath.Join(root, nodeModules, name))
	return err != nil || !info.IsDir()
}

// versionPlugin cuts package descriptors down to their version field so the
// bundle does not carry dependency lists and scripts.
func versionPlugin(descriptors []string) api.Plugin {
	if len(descriptors) == 0 {
		descriptors = []string{"package.json"}
	}
	quoted := make([]string, len(descriptors))
	for i, d := range descriptors {
		quoted[i] = regexp.QuoteMeta(d)
	}
	filter := `(?:^|[\\/])(?:` + strings.Join(quoted, "|") + `)$`
	return api.Plugin{
		Name: "versionify",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: filter, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					contents, err := versionOnly(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					return api.OnLoadResult{Contents: &contents, Loader: api.LoaderJSON}, nil
				})
		},
	}
}

func versionOnly(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(b, &pkg); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	out, err := json.Marshal(pkg)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
