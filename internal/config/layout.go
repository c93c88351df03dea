package config

// Layout is the resolved module layout of a project. All paths are relative
// to the project root and use forward slashes.
type Layout struct {
	AuditsDir       string
	AuditsPrefix    string
	GatherersDir    string
	GatherersPrefix string
	LocalesDir      string
	Package         string
	ReportAssets    string
	Connection      string
	URLShim         string
	NodeModules     string
	RegistryGlobal  string
	Plugins         []string
	Exclude         []string
	ExcludePaths    []string
}

// DefaultLayout returns the layout used when no config file overrides it.
// The logical prefixes are relative to the module that performs dynamic
// loading at run time.
func DefaultLayout() Layout {
	return Layout{
		AuditsDir:       "core/audits",
		AuditsPrefix:    "../audits/",
		GatherersDir:    "core/gather/gatherers",
		GatherersPrefix: "../gather/gatherers/",
		LocalesDir:      "shared/localization/locales",
		Package:         "package.json",
		ReportAssets:    "report/report-assets.js",
		Connection:      "core/gather/connections/cri.js",
		URLShim:         "core/lib/url-shim.js",
		NodeModules:     "node_modules",
		RegistryGlobal:  "__bundledModules",
		Plugins:         []string{"lighthouse-plugin-publisher-ads"},
	}
}

// Resolve merges local and global file configs over the defaults with
// precedence local > global > default. List fields are replaced, except the
// exclusion lists which accumulate.
func Resolve(local, global FileConfig) Layout {
	l := DefaultLayout()
	l.AuditsDir = pickString(l.AuditsDir, local.AuditsDir, global.AuditsDir)
	l.AuditsPrefix = pickString(l.AuditsPrefix, local.AuditsPrefix, global.AuditsPrefix)
	l.GatherersDir = pickString(l.GatherersDir, local.GatherersDir, global.GatherersDir)
	l.GatherersPrefix = pickString(l.GatherersPrefix, local.GatherersPrefix, global.GatherersPrefix)
	l.LocalesDir = pickString(l.LocalesDir, local.LocalesDir, global.LocalesDir)
	l.Package = pickString(l.Package, local.Package, global.Package)
	l.ReportAssets = pickString(l.ReportAssets, local.ReportAssets, global.ReportAssets)
	l.Connection = pickString(l.Connection, local.Connection, global.Connection)
	l.URLShim = pickString(l.URLShim, local.URLShim, global.URLShim)
	l.NodeModules = pickString(l.NodeModules, local.NodeModules, global.NodeModules)
	l.RegistryGlobal = pickString(l.RegistryGlobal, local.RegistryGlobal, global.RegistryGlobal)
	switch {
	case local.Plugins != nil:
		l.Plugins = append([]string(nil), local.Plugins...)
	case global.Plugins != nil:
		l.Plugins = append([]string(nil), global.Plugins...)
	}
	l.Exclude = append(append([]string(nil), global.Exclude...), local.Exclude...)
	l.ExcludePaths = append(append([]string(nil), global.ExcludePaths...), local.ExcludePaths...)
	return l
}

func pickString(def string, local, global *string) string {
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return def
}

// FileConfig returns l in its on-disk shape, with every field set.
func (l Layout) FileConfig() FileConfig {
	return FileConfig{
		AuditsDir:       strPtr(l.AuditsDir),
		AuditsPrefix:    strPtr(l.AuditsPrefix),
		GatherersDir:    strPtr(l.GatherersDir),
		GatherersPrefix: strPtr(l.GatherersPrefix),
		LocalesDir:      strPtr(l.LocalesDir),
		Package:         strPtr(l.Package),
		ReportAssets:    strPtr(l.ReportAssets),
		Connection:      strPtr(l.Connection),
		URLShim:         strPtr(l.URLShim),
		NodeModules:     strPtr(l.NodeModules),
		RegistryGlobal:  strPtr(l.RegistryGlobal),
		Plugins:         append([]string{}, l.Plugins...),
		Exclude:         append([]string(nil), l.Exclude...),
		ExcludePaths:    append([]string(nil), l.ExcludePaths...),
	}
}

func strPtr(s string) *string { return &s }
