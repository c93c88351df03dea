package target

import (
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// Set is the exclusion set of one build. Packages are matched against import
// specifiers; Paths are doublestar globs over slash-separated paths relative
// to the project root.
type Set struct {
	Packages []string
	Paths    []string
}

// MatchPackage reports whether an import specifier names an excluded
// package or a file inside one.
func (s Set) MatchPackage(spec string) bool {
	spec = strings.TrimSuffix(spec, ".js")
	for _, p := range s.Packages {
		p = strings.TrimSuffix(p, ".js")
		if spec == p || strings.HasPrefix(spec, p+"/") {
			return true
		}
	}
	return false
}

// MatchPath reports whether the project-relative path rel is excluded,
// either by a path glob or because it lives inside an excluded package
// directory under nodeModules.
func (s Set) MatchPath(rel, nodeModules string) bool {
	rel = filepath.ToSlash(rel)
	for _, g := range s.Paths {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	if nodeModules == "" {
		return false
	}
	prefix := strings.TrimSuffix(filepath.ToSlash(nodeModules), "/") + "/"
	if !strings.HasPrefix(rel, prefix) {
		return false
	}
	return s.MatchPackage(strings.TrimPrefix(rel, prefix))
}

// Empty reports whether the set excludes nothing.
func (s Set) Empty() bool {
	return len(s.Packages) == 0 && len(s.Paths) == 0
}

func (s Set) with(packages []string, paths ...string) Set {
	return Set{
		Packages: append(append([]string(nil), s.Packages...), packages...),
		Paths:    append(append([]string(nil), s.Paths...), paths...),
	}
}
