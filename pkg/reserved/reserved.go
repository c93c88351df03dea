// Package reserved is the contract between the minifier and tools that edit
// finished bundles by literal text substitution. Every identifier listed
// here survives minification unchanged, as a whole token. Tools that depend
// on a name must find it here; adding or removing a name bumps Version.
package reserved

import "regexp"

// Version identifies the current identifier list.
const Version = 1

var identifiers = []string{
	"UIStrings",
	"str_",
	"createIcuMessageFn",
}

// Identifiers returns a copy of the reserved identifier list.
func Identifiers() []string {
	return append([]string(nil), identifiers...)
}

// Contains reports whether id is reserved.
func Contains(id string) bool {
	for _, r := range identifiers {
		if r == id {
			return true
		}
	}
	return false
}

// TokenPattern matches id as a whole JavaScript identifier token.
func TokenPattern(id string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^A-Za-z0-9_$])` + regexp.QuoteMeta(id) + `(?:$|[^A-Za-z0-9_$])`)
}

// Present returns the subset of ids that occur in code as whole tokens.
func Present(code []byte, ids []string) []string {
	var out []string
	for _, id := range ids {
		if TokenPattern(id).Match(code) {
			out = append(out, id)
		}
	}
	return out
}
