package target

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/auditpack/auditpack/internal/config"
	"github.com/auditpack/auditpack/internal/registry"
)

// Platform is the host environment a bundle runs in.
type Platform string

const (
	PlatformNode    Platform = "node"
	PlatformBrowser Platform = "browser"
)

// Rule is one row of the target table.
type Rule struct {
	Kind     Kind
	Hints    []string
	Platform Platform

	// ExcludeReportAssets drops the pre-rendered report template; the host
	// renders reports itself.
	ExcludeReportAssets bool
	// ExcludeLocales drops every locale data module; the host supplies its
	// own localization.
	ExcludeLocales bool
	// IncludePlugins exposes the optional plugin set under logical paths.
	IncludePlugins bool
}

// AlwaysExcluded lists packages no bundle ships, whatever the target.
var AlwaysExcluded = []string{
	"source-map",
	"debug/node",
	"intl",
	"intl-pluralrules",
	"raven",
	"rimraf",
	"pako/lib/zlib/inflate.js",
}

// Rows are in Classify precedence order.
var table = []Rule{
	{Kind: Embedded, Hints: []string{"devtools", "embedded"}, Platform: PlatformBrowser, ExcludeReportAssets: true, ExcludeLocales: true, IncludePlugins: true},
	{Kind: Server, Hints: []string{"lightrider", "server"}, Platform: PlatformNode, ExcludeReportAssets: true},
	{Kind: Extension, Hints: []string{"extension"}, Platform: PlatformBrowser},
	{Kind: CLI, Platform: PlatformNode},
}

// Table returns a copy of the target table.
func Table() []Rule {
	out := make([]Rule, len(table))
	copy(out, table)
	return out
}

// RuleFor returns the table row for k.
func RuleFor(k Kind) Rule {
	for _, r := range table {
		if r.Kind == k {
			return r
		}
	}
	return Rule{Kind: k, Platform: PlatformNode}
}

// Descriptor is the resolved composition of one build.
type Descriptor struct {
	Kind     Kind
	Platform Platform
	Exclude  Set
	Plugins  []string
}

// Describe applies the table row for k to a project layout. Exclusions are
// computed first and plugins that are themselves excluded are dropped.
func Describe(k Kind, layout config.Layout) Descriptor {
	r := RuleFor(k)
	set := Set{}.with(AlwaysExcluded, clean(layout.Connection))
	set = set.with(layout.Exclude, layout.ExcludePaths...)
	if r.ExcludeReportAssets {
		set = set.with(nil, clean(layout.ReportAssets))
	}
	if r.ExcludeLocales {
		set = set.with(nil, path.Join(clean(layout.LocalesDir), "**"))
	}
	d := Descriptor{Kind: k, Platform: r.Platform, Exclude: set}
	if r.IncludePlugins {
		for _, p := range layout.Plugins {
			if !set.MatchPackage(p) {
				d.Plugins = append(d.Plugins, p)
			}
		}
	}
	return d
}

// Filter drops refs whose file is excluded. It never adds anything, so a
// module excluded for this build cannot come back through an inclusion.
func Filter(refs []registry.Ref, set Set, root, nodeModules string) []registry.Ref {
	out := make([]registry.Ref, 0, len(refs))
	for _, r := range refs {
		rel, err := filepath.Rel(root, r.Path)
		if err == nil && !strings.HasPrefix(rel, "..") && set.MatchPath(rel, nodeModules) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func clean(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
