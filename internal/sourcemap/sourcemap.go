// Package sourcemap moves source maps in and out of JavaScript files: it
// extracts an inline data-URL map into separate bytes, re-inlines a map for
// tools that only read inline maps, and writes the trailing reference
// comment.
package sourcemap

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

const dataURLPrefix = "data:application/json;base64,"

// ErrNoInlineMap is returned by Extract when the code carries no inline map.
var ErrNoInlineMap = errors.New("no inline source map")

// commentRe matches a trailing //# or //@ sourceMappingURL comment line.
var commentRe = regexp.MustCompile(`(?m)^[ \t]*//[#@][ \t]+sourceMappingURL=(\S+)[ \t]*\r?\n?`)

// Extract splits code carrying an inline map into the code with a comment
// pointing at mapName and the decoded map JSON.
func Extract(code []byte, mapName string) ([]byte, []byte, error) {
	loc, url := lastComment(code)
	if loc == nil || !bytes.HasPrefix(url, []byte(dataURLPrefix)) {
		return nil, nil, ErrNoInlineMap
	}
	raw, err := base64.StdEncoding.DecodeString(string(url[len(dataURLPrefix):]))
	if err != nil {
		return nil, nil, fmt.Errorf("decode inline source map: %w", err)
	}
	if !json.Valid(raw) {
		return nil, nil, errors.New("inline source map is not valid JSON")
	}
	out := make([]byte, 0, loc[0]+len(mapName)+32)
	out = append(out, code[:loc[0]]...)
	out = Link(out, mapName)
	return out, raw, nil
}

// Strip removes any trailing sourceMappingURL comment.
func Strip(code []byte) []byte {
	loc, _ := lastComment(code)
	if loc == nil {
		return code
	}
	out := append([]byte(nil), code[:loc[0]]...)
	return append(out, code[loc[1]:]...)
}

// Link appends a reference comment for mapName, starting on its own line.
func Link(code []byte, mapName string) []byte {
	if len(code) > 0 && code[len(code)-1] != '\n' {
		code = append(code, '\n')
	}
	return append(code, "//# sourceMappingURL="+mapName+"\n"...)
}

// Inline replaces any reference comment with one carrying the map itself.
func Inline(code, mapJSON []byte) []byte {
	out := Strip(code)
	return Link(out, dataURLPrefix+base64.StdEncoding.EncodeToString(mapJSON))
}

func lastComment(code []byte) ([]int, []byte) {
	all := commentRe.FindAllSubmatchIndex(code, -1)
	if len(all) == 0 {
		return nil, nil
	}
	m := all[len(all)-1]
	// Only a comment with nothing but whitespace after it counts; an earlier
	// match belongs to source text, not to this file.
	if len(bytes.TrimSpace(code[m[1]:])) != 0 {
		return nil, nil
	}
	return m[:2], code[m[2]:m[3]]
}
