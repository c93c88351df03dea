// Package minify shrinks an assembled bundle in place and keeps its source
// map composed with the map the assembler produced.
package minify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/auditpack/auditpack/internal/builderr"
	"github.com/auditpack/auditpack/internal/diag"
	"github.com/auditpack/auditpack/internal/sourcemap"
	"github.com/auditpack/auditpack/pkg/reserved"
)

// Policy is the fixed minification policy.
//
// Renaming is all or nothing: if any Reserved identifier occurs in the code,
// no local is renamed. Application code usually declares UIStrings in nearly
// every audit module, so for a full application bundle identifier renaming
// is in practice disabled and the output is whitespace and syntax minified
// only.
type Policy struct {
	// KeepNames preserves function and class names; instantiation by
	// class name and runtime error reporting rely on them.
	KeepNames bool
	// MaxLineLen caps output line length.
	MaxLineLen int
	// Reserved identifiers must appear unchanged in the output whenever
	// they appear in the input.
	Reserved []string
}

// DefaultPolicy is the policy every build uses.
var DefaultPolicy = Policy{
	KeepNames:  true,
	MaxLineLen: 1000,
	Reserved:   reserved.Identifiers(),
}

// Bytes minifies code. mapJSON is the map of code against its sources and
// may be nil; name is the bundle file name used for the map's file field
// and the trailing reference comment.
//
// esbuild offers no per-binding reserve list, so identifier renaming is
// only enabled when none of the reserved identifiers occurs in the input.
// Occurrences inside comments do not count.
func Bytes(code, mapJSON []byte, name string, p Policy) ([]byte, []byte, error) {
	present, err := presentInCode(code, name, p.Reserved)
	if err != nil {
		return nil, nil, err
	}
	input := sourcemap.Strip(code)
	if mapJSON != nil {
		input = sourcemap.Inline(input, mapJSON)
	}

	res := api.Transform(string(input), api.TransformOptions{
		MinifyWhitespace:  true,
		MinifySyntax:      true,
		MinifyIdentifiers: len(present) == 0,
		KeepNames:         p.KeepNames,
		LineLimit:         p.MaxLineLen,
		LegalComments:     api.LegalCommentsInline,
		Sourcemap:         api.SourceMapExternal,
		Sourcefile:        name,
		Loader:            api.LoaderJS,
		LogLevel:          api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		return nil, nil, builderr.Minification("minify "+name, diag.Error(res.Errors))
	}

	if missing := missingTokens(res.Code, present); len(missing) > 0 {
		return nil, nil, builderr.Minification("minify "+name, fmt.Errorf("reserved identifiers renamed or removed: %v", missing))
	}
	return sourcemap.Link(res.Code, name+".map"), res.Map, nil
}

// File minifies the bundle at path and its companion path+".map", writing
// both back in place. On failure both files are left untouched.
func File(path string, p Policy) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return builderr.Minification("read bundle", err)
	}
	mapJSON, err := os.ReadFile(path + ".map")
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return builderr.Minification("read source map", err)
		}
		mapJSON = nil
	}
	outCode, outMap, err := Bytes(code, mapJSON, filepath.Base(path), p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, outCode, 0o644); err != nil {
		return builderr.Minification("write bundle", err)
	}
	if err := os.WriteFile(path+".map", outMap, 0o644); err != nil {
		return builderr.Minification("write source map", err)
	}
	return nil
}

// presentInCode reports which of ids occur in code once every comment is
// dropped.
func presentInCode(code []byte, name string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	res := api.Transform(string(code), api.TransformOptions{
		MinifyWhitespace: true,
		LegalComments:    api.LegalCommentsNone,
		Sourcefile:       name,
		Loader:           api.LoaderJS,
		LogLevel:         api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		return nil, builderr.Minification("minify "+name, diag.Error(res.Errors))
	}
	return reserved.Present(res.Code, ids), nil
}

func missingTokens(code []byte, ids []string) []string {
	var missing []string
	for _, id := range ids {
		if !reserved.TokenPattern(id).Match(code) {
			missing = append(missing, id)
		}
	}
	return missing
}
