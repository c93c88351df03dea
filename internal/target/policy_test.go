package target

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditpack/auditpack/internal/config"
	"github.com/auditpack/auditpack/internal/registry"
)

func TestClassify(t *testing.T) {
	cases := map[string]Kind{
		"clients/devtools-entry.js":        Embedded,
		"clients/lightrider/entry.js":      CLI,
		"clients/lightrider-entry.js":      Server,
		"clients/extension/entry.js":       CLI,
		"clients/extension-entry.js":       Extension,
		"/abs/EMBEDDED.js":                 Embedded,
		"cli-entry.js":                     CLI,
		"devtools-server-entry.js":         Embedded,
		"clients/server-devtools-entry.js": Embedded,
	}
	for in, want := range cases {
		assert.Equal(t, want, Classify(in), in)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{CLI, Extension, Embedded, Server} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind(" Embedded ")
	require.NoError(t, err)
	assert.Equal(t, Embedded, got)

	_, err = ParseKind("desktop")
	assert.Error(t, err)
	assert.Equal(t, "kind(42)", Kind(42).String())
}

func TestDescribe_Embedded(t *testing.T) {
	l := config.DefaultLayout()
	d := Describe(Embedded, l)

	assert.Equal(t, PlatformBrowser, d.Platform)
	assert.Equal(t, []string{"lighthouse-plugin-publisher-ads"}, d.Plugins)
	assert.True(t, d.Exclude.MatchPath("report/report-assets.js", l.NodeModules))
	assert.True(t, d.Exclude.MatchPath("shared/localization/locales/de.json", l.NodeModules))
	assert.True(t, d.Exclude.MatchPath("shared/localization/locales/nested/x.js", l.NodeModules))
	assert.True(t, d.Exclude.MatchPath("core/gather/connections/cri.js", l.NodeModules))
	assert.False(t, d.Exclude.MatchPath("core/audits/a.js", l.NodeModules))
}

func TestDescribe_Server(t *testing.T) {
	l := config.DefaultLayout()
	d := Describe(Server, l)

	assert.Equal(t, PlatformNode, d.Platform)
	assert.Empty(t, d.Plugins)
	assert.True(t, d.Exclude.MatchPath("report/report-assets.js", l.NodeModules))
	assert.False(t, d.Exclude.MatchPath("shared/localization/locales/de.json", l.NodeModules))
}

func TestDescribe_PlainTargetsOnlyAlwaysExcluded(t *testing.T) {
	l := config.DefaultLayout()
	for _, k := range []Kind{CLI, Extension} {
		d := Describe(k, l)
		assert.Empty(t, d.Plugins, k.String())
		assert.Equal(t, AlwaysExcluded, d.Exclude.Packages, k.String())
		assert.Equal(t, []string{"core/gather/connections/cri.js"}, d.Exclude.Paths, k.String())
		assert.False(t, d.Exclude.MatchPath("report/report-assets.js", l.NodeModules), k.String())
		assert.False(t, d.Exclude.MatchPath("shared/localization/locales/de.json", l.NodeModules), k.String())
	}
}

func TestDescribe_ExcludedPluginIsNotIncluded(t *testing.T) {
	l := config.DefaultLayout()
	l.Plugins = []string{"plugin-a", "plugin-b"}
	l.Exclude = []string{"plugin-b"}
	d := Describe(Embedded, l)
	assert.Equal(t, []string{"plugin-a"}, d.Plugins)
}

func TestSet_MatchPackage(t *testing.T) {
	s := Set{Packages: AlwaysExcluded}
	assert.True(t, s.MatchPackage("intl"))
	assert.True(t, s.MatchPackage("intl/locale-data/jsonp/en.js"))
	assert.True(t, s.MatchPackage("intl-pluralrules"))
	assert.True(t, s.MatchPackage("debug/node"))
	assert.True(t, s.MatchPackage("pako/lib/zlib/inflate"))
	assert.True(t, s.MatchPackage("pako/lib/zlib/inflate.js"))
	assert.False(t, s.MatchPackage("debug"))
	assert.False(t, s.MatchPackage("pako"))
	assert.False(t, s.MatchPackage("intlx"))
}

func TestSet_MatchPathInsideExcludedPackage(t *testing.T) {
	s := Set{Packages: []string{"raven", "pako/lib/zlib/inflate.js"}}
	assert.True(t, s.MatchPath("node_modules/raven/index.js", "node_modules"))
	assert.True(t, s.MatchPath("node_modules/pako/lib/zlib/inflate.js", "node_modules"))
	assert.False(t, s.MatchPath("node_modules/pako/lib/zlib/deflate.js", "node_modules"))
	assert.False(t, s.MatchPath("raven/index.js", "node_modules"))
	assert.False(t, s.MatchPath("node_modules/raven/index.js", ""))
}

func TestFilter_DropsExcludedRefs(t *testing.T) {
	root := t.TempDir()
	refs := []registry.Ref{
		{Logical: "../audits/a", Path: filepath.Join(root, "core", "audits", "a.js")},
		{Logical: "../audits/legacy/b", Path: filepath.Join(root, "core", "audits", "legacy", "b.js")},
		{Logical: "p", Path: filepath.Join(root, "node_modules", "p", "plugin.js")},
		{Logical: "outside", Path: filepath.Join(filepath.Dir(root), "elsewhere.js")},
	}
	set := Set{Packages: []string{"p"}, Paths: []string{"core/audits/legacy/**"}}
	got := Filter(refs, set, root, "node_modules")
	require.Len(t, got, 2)
	assert.Equal(t, "../audits/a", got[0].Logical)
	assert.Equal(t, "outside", got[1].Logical)
}

func TestTableIsACopy(t *testing.T) {
	tbl := Table()
	tbl[0].Kind = CLI
	assert.Equal(t, Embedded, Table()[0].Kind)
	assert.Equal(t, Embedded, Classify("devtools.js"))
}
