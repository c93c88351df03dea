package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	semver "github.com/blang/semver/v4"

	"github.com/auditpack/auditpack/internal/builderr"
)

// Package is the subset of a package descriptor the banner needs.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	License string `json:"license"`
}

// LoadPackage reads and validates a package descriptor. The version must be
// a valid semantic version.
func LoadPackage(path string) (Package, error) {
	var pkg Package
	b, err := os.ReadFile(path)
	if err != nil {
		return pkg, builderr.Configuration("read package descriptor", err)
	}
	if err := json.Unmarshal(b, &pkg); err != nil {
		return pkg, builderr.Configuration("parse "+path, err)
	}
	if pkg.Name == "" {
		return pkg, builderr.Configurationf("%s: missing name", path)
	}
	v, err := semver.ParseTolerant(pkg.Version)
	if err != nil {
		return pkg, builderr.Configuration("parse version in "+path, err)
	}
	pkg.Version = v.String()
	return pkg, nil
}

// Banner renders the legal comment placed at the top of every bundle. It has
// no timestamp so rebuilding an unchanged tree gives identical output.
func Banner(pkg Package, commit string) string {
	var b strings.Builder
	b.WriteString("/*!\n")
	fmt.Fprintf(&b, " * %s v%s %s\n", inComment(pkg.Name), inComment(pkg.Version), inComment(commit))
	if pkg.License != "" {
		b.WriteString(" *\n")
		fmt.Fprintf(&b, " * @license %s\n", inComment(pkg.License))
	}
	b.WriteString(" */")
	return b.String()
}

// inComment keeps s from closing the enclosing block comment.
func inComment(s string) string {
	return strings.ReplaceAll(s, "*/", "* /")
}
