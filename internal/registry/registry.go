// Package registry enumerates the modules an application loads dynamically
// and computes the logical path under which each one is requested at run
// time.
package registry

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"

	"github.com/auditpack/auditpack/internal/builderr"
)

// Group tells which kind of module a Ref points at.
type Group string

const (
	GroupAudit    Group = "audit"
	GroupGatherer Group = "gatherer"
	GroupPlugin   Group = "plugin"
)

// Ref pairs a logical load path with the module file on disk.
type Ref struct {
	Logical string
	Path    string
	Group   Group
}

// Root is a module directory and the logical prefix its files are exposed
// under.
type Root struct {
	Dir    string
	Prefix string
	Group  Group
}

const moduleGlob = "**/*.{js,mjs,cjs}"

// Resolve lists every module file under each root. A missing or unreadable
// root is an error: a registry with holes produces a bundle that fails on
// its first dynamic load.
func Resolve(roots []Root) ([]Ref, error) {
	var out []Ref
	for _, r := range roots {
		refs, err := resolveRoot(r)
		if err != nil {
			return nil, err
		}
		out = append(out, refs...)
	}
	sortRefs(out)
	return out, nil
}

func resolveRoot(r Root) ([]Ref, error) {
	info, err := os.Stat(r.Dir)
	if err != nil {
		return nil, builderr.Configuration("read "+string(r.Group)+" directory", err)
	}
	if !info.IsDir() {
		return nil, builderr.Configurationf("%s root %s is not a directory", r.Group, r.Dir)
	}
	matches, err := doublestar.Glob(os.DirFS(r.Dir), moduleGlob, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, builderr.Configuration("list "+r.Dir, err)
	}
	refs := make([]Ref, 0, len(matches))
	for _, rel := range matches {
		refs = append(refs, Ref{
			Logical: r.Prefix + trimExt(rel),
			Path:    filepath.Join(r.Dir, filepath.FromSlash(rel)),
			Group:   r.Group,
		})
	}
	return refs, nil
}

// PluginRefs exposes an optional plugin package: the package itself under
// its name, and each of its audit modules under "<name>/audits/<rel>".
func PluginRefs(nodeModules, name string) ([]Ref, error) {
	dir := filepath.Join(nodeModules, filepath.FromSlash(name))
	main, err := pluginMain(dir)
	if err != nil {
		return nil, builderr.Configuration("resolve plugin "+name, err)
	}
	refs := []Ref{{Logical: name, Path: main, Group: GroupPlugin}}
	audits, err := resolveRoot(Root{Dir: filepath.Join(dir, "audits"), Prefix: name + "/audits/", Group: GroupPlugin})
	if err != nil {
		return nil, err
	}
	refs = append(refs, audits...)
	sortRefs(refs)
	return refs, nil
}

func pluginMain(dir string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err == nil {
		var pkg struct {
			Main string `json:"main"`
		}
		if jerr := json.Unmarshal(b, &pkg); jerr != nil {
			return "", fmt.Errorf("parse %s: %w", filepath.Join(dir, "package.json"), jerr)
		}
		if pkg.Main != "" {
			p := filepath.Join(dir, filepath.FromSlash(pkg.Main))
			if filepath.Ext(p) == "" {
				p += ".js"
			}
			return p, statFile(p)
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}
	p := filepath.Join(dir, "plugin.js")
	return p, statFile(p)
}

func statFile(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &fs.PathError{Op: "stat", Path: p, Err: fmt.Errorf("is a directory")}
	}
	return nil
}

// Check rejects duplicated logical paths.
func Check(refs []Ref) error {
	seen := make(map[string]string, len(refs))
	for _, r := range refs {
		if prev, ok := seen[r.Logical]; ok {
			return builderr.Configurationf("logical path %q is registered by both %s and %s", r.Logical, prev, r.Path)
		}
		seen[r.Logical] = r.Path
	}
	return nil
}

func trimExt(rel string) string {
	return strings.TrimSuffix(rel, path.Ext(rel))
}

func sortRefs(refs []Ref) {
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Logical < refs[j].Logical })
}
