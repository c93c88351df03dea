package assemble

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

const strLit = `(?:'[^'\\\n]*'|"[^"\\\n]*")`

var (
	litRe = regexp.MustCompile(strLit)

	// readFileSync(<static path>[, <encoding>]) called on fs, on
	// require('fs') directly, or as a destructured binding. The path is
	// one of
	//   __dirname + 'x'
	//   path.join(__dirname, 'x', ...)
	//   require.resolve('x')
	// Group 1 is the character before the call, kept on rewrite.
	readFileRe = regexp.MustCompile(`(?m)(^|[^.\w$])` +
		`(?:(?:fs|require\(\s*(?:'(?:node:)?fs'|"(?:node:)?fs")\s*\))\s*\.\s*)?` +
		`readFileSync\(\s*(` +
		`__dirname\s*\+\s*` + strLit +
		`|path\.join\(\s*__dirname(?:\s*,\s*` + strLit + `)*\s*\)` +
		`|require\.resolve\(\s*` + strLit + `\s*\)` +
		`)\s*(?:,\s*(` + strLit + `)\s*)?\)`)
)

// inlineFSPlugin replaces synchronous reads of static paths with the file
// contents, so bundles run where there is no file system.
func inlineFSPlugin(root, nodeModules string) api.Plugin {
	return api.Plugin{
		Name: "inline-fs",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `\.[mc]?js$`, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					src, err := os.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					if !readFileRe.Match(src) {
						return api.OnLoadResult{}, nil
					}
					out, err := inlineReads(string(src), filepath.Dir(args.Path), filepath.Join(root, nodeModules))
					if err != nil {
						return api.OnLoadResult{}, fmt.Errorf("%s: %w", args.Path, err)
					}
					return api.OnLoadResult{
						Contents:   &out,
						ResolveDir: filepath.Dir(args.Path),
						Loader:     api.LoaderJS,
					}, nil
				})
		},
	}
}

// inlineReads rewrites every static read in src. dir is the directory of
// the module, nodeModules the directory package specifiers resolve in.
func inlineReads(src, dir, nodeModules string) (string, error) {
	var firstErr error
	out := readFileRe.ReplaceAllStringFunc(src, func(call string) string {
		if firstErr != nil {
			return call
		}
		m := readFileRe.FindStringSubmatch(call)
		prefix := m[1]
		file := staticPath(m[2], dir, nodeModules)
		data, err := os.ReadFile(file)
		if err != nil {
			firstErr = err
			return call
		}
		if m[3] == "" {
			return prefix + `Buffer.from("` + base64.StdEncoding.EncodeToString(data) + `", "base64")`
		}
		switch enc := unquote(m[3]); strings.ToLower(enc) {
		case "utf8", "utf-8":
			lit, err := json.Marshal(string(data))
			if err != nil {
				firstErr = err
				return call
			}
			return prefix + string(lit)
		default:
			firstErr = fmt.Errorf("unsupported encoding %q in %s", enc, call)
			return call
		}
	})
	return out, firstErr
}

func staticPath(expr, dir, nodeModules string) string {
	lits := litRe.FindAllString(expr, -1)
	parts := make([]string, len(lits))
	for i, l := range lits {
		parts[i] = unquote(l)
	}
	switch {
	case strings.HasPrefix(expr, "require.resolve"):
		spec := parts[0]
		if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
			return filepath.Join(dir, filepath.FromSlash(spec))
		}
		return filepath.Join(nodeModules, filepath.FromSlash(spec))
	default:
		return filepath.Join(append([]string{dir}, parts...)...)
	}
}

func unquote(lit string) string {
	if len(lit) < 2 {
		return lit
	}
	return lit[1 : len(lit)-1]
}
