package target

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies a deployment target.
type Kind int

const (
	CLI Kind = iota
	Extension
	Embedded
	Server
)

var kindNames = map[Kind]string{
	CLI:       "cli",
	Extension: "extension",
	Embedded:  "embedded",
	Server:    "server",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind parses a target name as printed by Kind.String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	return CLI, fmt.Errorf("unknown target %q (want cli|extension|embedded|server)", s)
}

// Classify infers the target from the entry file name. The first table row
// with a hint contained in the lowercased basename wins; entries matching no
// row are CLI builds.
func Classify(entryPath string) Kind {
	base := strings.ToLower(filepath.Base(entryPath))
	for _, r := range table {
		for _, h := range r.Hints {
			if strings.Contains(base, h) {
				return r.Kind
			}
		}
	}
	return CLI
}
