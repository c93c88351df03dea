package assemble

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/dop251/goja/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditpack/auditpack/internal/builderr"
	"github.com/auditpack/auditpack/internal/registry"
	"github.com/auditpack/auditpack/internal/target"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// project lays out a minimal application: an entry, two audits and a
// gatherer.
func project(t *testing.T, entry string) (string, Plan) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name":"demo","version":"1.2.3","scripts":{"secretscript":"rm -rf /"}}`)
	writeFile(t, root, "core/index.js", entry)
	writeFile(t, root, "core/audits/a.js", `module.exports = { id: 'a' };`)
	writeFile(t, root, "core/audits/sub/b.js", `module.exports = { id: 'b' };`)
	writeFile(t, root, "core/gather/gatherers/g.js", `module.exports = { id: 'g' };`)

	refs, err := registry.Resolve([]registry.Root{
		{Dir: filepath.Join(root, "core/audits"), Prefix: "../audits/", Group: registry.GroupAudit},
		{Dir: filepath.Join(root, "core/gather/gatherers"), Prefix: "../gather/gatherers/", Group: registry.GroupGatherer},
	})
	require.NoError(t, err)
	return root, Plan{
		Entry:          filepath.Join(root, "core/index.js"),
		Dest:           filepath.Join(root, "dist", "out.js"),
		Root:           root,
		Banner:         "/*!\n * demo v1.2.3 abc\n */",
		NodeModules:    "node_modules",
		Refs:           refs,
		Platform:       target.PlatformNode,
		RegistryGlobal: "__bundledModules",
	}
}

// run executes a bundle in a fresh runtime. The trailing map reference is
// not followed; goja would resolve it against the working directory.
func run(t *testing.T, path string) *goja.Runtime {
	t.Helper()
	code, err := os.ReadFile(path)
	require.NoError(t, err)
	prg, err := goja.Parse(filepath.Base(path), string(code), parser.WithDisableSourceMaps)
	require.NoError(t, err)
	compiled, err := goja.CompileAST(prg, false)
	require.NoError(t, err)
	vm := goja.New()
	_, err = vm.RunProgram(compiled)
	require.NoError(t, err)
	return vm
}

// runNode executes a bundle with node and returns its standard output. The
// test is skipped when node is not installed.
func runNode(t *testing.T, path string) string {
	t.Helper()
	node, err := exec.LookPath("node")
	if err != nil {
		t.Skip("node not installed")
	}
	cmd := exec.Command(node, path)
	cmd.Dir = filepath.Dir(path)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	return strings.TrimSpace(string(out))
}

func eval(t *testing.T, vm *goja.Runtime, js string) goja.Value {
	t.Helper()
	v, err := vm.RunString(js)
	require.NoError(t, err)
	return v
}

func TestAssembleServesRegistry(t *testing.T) {
	_, plan := project(t, `
globalThis.version = require('../package.json').version;
globalThis.computed = require(['../audits/', 'a'].join('')).id;
`)

	out, err := Assemble(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Modules)
	assert.Greater(t, out.Inputs, 3)

	vm := run(t, out.Code)
	assert.Equal(t, "1.2.3", eval(t, vm, "version").String())
	assert.Equal(t, "a", eval(t, vm, "computed").String())
	assert.Equal(t, "a", eval(t, vm, `require("../audits/a").id`).String())
	assert.Equal(t, "b", eval(t, vm, `require("../audits/sub/b").id`).String())
	assert.Equal(t, "g", eval(t, vm, `require("../gather/gatherers/g").id`).String())
	assert.EqualValues(t, 3, eval(t, vm, "__bundledModules.size").ToInteger())
	assert.Equal(t, "Cannot find module '../audits/nope'",
		eval(t, vm, `(function () { try { require("../audits/nope"); } catch (e) { return e.message; } })()`).String())

	code, err := os.ReadFile(out.Code)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(code), "/*!\n * demo v1.2.3 abc\n */"))
	assert.NotContains(t, string(code), "secretscript")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(code)), "//# sourceMappingURL=out.js.map"))
	assert.NotContains(t, string(code), "data:application/json")
}

func TestAssembleSourceMapCoversModules(t *testing.T) {
	_, plan := project(t, `module.exports = 1;`)
	out, err := Assemble(context.Background(), plan)
	require.NoError(t, err)

	b, err := os.ReadFile(out.Map)
	require.NoError(t, err)
	var m struct {
		Sources        []string `json:"sources"`
		SourcesContent []string `json:"sourcesContent"`
	}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Contains(t, m.Sources, "../core/audits/a.js")
	assert.Contains(t, m.Sources, "../core/gather/gatherers/g.js")
	assert.Len(t, m.SourcesContent, len(m.Sources))
}

func TestAssembleCreatesNestedDestination(t *testing.T) {
	root, plan := project(t, `module.exports = 1;`)
	plan.Dest = filepath.Join(root, "dist", "deep", "nested", "bundle.js")
	out, err := Assemble(context.Background(), plan)
	require.NoError(t, err)
	assert.FileExists(t, out.Code)
	assert.FileExists(t, filepath.Join(root, "dist", "deep", "nested", "bundle.js.map"))
}

func TestAssembleExcludesPackagesAndPaths(t *testing.T) {
	root, plan := project(t, `
globalThis.raven = require('raven');
globalThis.heavy = require('./heavy.js');
`)
	writeFile(t, root, "core/heavy.js", `module.exports = { big: 'x'.repeat(10) };`)
	plan.Exclude = target.Set{Packages: []string{"raven"}, Paths: []string{"core/heavy.js"}}

	out, err := Assemble(context.Background(), plan)
	require.NoError(t, err)
	vm := run(t, out.Code)
	assert.EqualValues(t, 0, eval(t, vm, "Object.keys(raven).length").ToInteger())
	assert.EqualValues(t, 0, eval(t, vm, "Object.keys(heavy).length").ToInteger())
}

func TestAssembleInlinesFileReadsAndAliases(t *testing.T) {
	root, plan := project(t, `
const fs = require('fs');
const path = require('path');
globalThis.tmpl = fs.readFileSync(__dirname + '/tmpl.html', 'utf8');
globalThis.joined = fs.readFileSync(path.join(__dirname, 'parts', 'p.txt'), 'utf8');
globalThis.shim = require('url').URL;
`)
	writeFile(t, root, "core/tmpl.html", "<p>\"hi\"</p>\n")
	writeFile(t, root, "core/parts/p.txt", "part")
	shim := writeFile(t, root, "core/lib/url-shim.js", `module.exports = { URL: 'shim' };`)
	plan.Platform = target.PlatformBrowser
	plan.Aliases = map[string]string{"url": shim, "missing": filepath.Join(root, "nope.js")}

	out, err := Assemble(context.Background(), plan)
	require.NoError(t, err)
	vm := run(t, out.Code)
	assert.Equal(t, "<p>\"hi\"</p>\n", eval(t, vm, "tmpl").String())
	assert.Equal(t, "part", eval(t, vm, "joined").String())
	assert.Equal(t, "shim", eval(t, vm, "shim").String())
}

func TestAssembleFailureWritesNothing(t *testing.T) {
	_, plan := project(t, `require('./missing');`)
	_, err := Assemble(context.Background(), plan)
	require.Error(t, err)
	assert.True(t, errors.Is(err, builderr.ErrAssembly))
	assert.NoFileExists(t, plan.Dest)
	assert.NoFileExists(t, plan.Dest+".map")
}

func TestAssembleMissingInlineSource(t *testing.T) {
	_, plan := project(t, `globalThis.x = require('fs').readFileSync(__dirname + '/gone.txt', 'utf8');`)
	_, err := Assemble(context.Background(), plan)
	require.Error(t, err)
	assert.Equal(t, "assembly", builderr.KindOf(err))
	assert.Contains(t, err.Error(), "inline-fs")
	assert.NoFileExists(t, plan.Dest)
}

func TestAssembleHonoursCancellation(t *testing.T) {
	_, plan := project(t, `module.exports = 1;`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Assemble(ctx, plan)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, plan.Dest)
}

func TestEntryWrapper(t *testing.T) {
	src, err := entryWrapper(Plan{
		Entry: "/p/core/index.js",
		Refs:  []registry.Ref{{Logical: "../audits/a", Path: "/p/core/audits/a.js"}},
	})
	require.NoError(t, err)
	assert.Contains(t, src, `["../audits/a", () => require("/p/core/audits/a.js")],`)
	assert.Contains(t, src, `globalThis["__bundledModules"] = registry;`)
	assert.True(t, strings.HasSuffix(src, `require("/p/core/index.js");`+"\n"))
}

func TestBannerPutsPreludeAfterLegalComment(t *testing.T) {
	head, err := banner(Plan{Banner: "/*! demo */", RegistryGlobal: "__mods"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(head, "/*! demo */\nrequire = (function (host) {"))
	assert.Contains(t, head, `globalThis["__mods"]`)

	head, err = banner(Plan{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(head, "require = "))
	assert.Contains(t, head, `globalThis["__bundledModules"]`)
}

func TestAssembleServesComputedPathsUnderNode(t *testing.T) {
	_, plan := project(t, `
var id = ['../audits/', 'sub/b'].join('');
console.log(require(id).id, require(['../gather/gatherers/', 'g'].join('')).id, typeof require('fs').readFileSync);
`)
	out, err := Assemble(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, "b g function", runNode(t, out.Code))
}

func TestInlineReads(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "AB")
	writeFile(t, dir, "node_modules/pkg/data.json", `{"k":1}`)

	out, err := inlineReads(`x = fs.readFileSync(__dirname + '/a.txt');`, dir, filepath.Join(dir, "node_modules"))
	require.NoError(t, err)
	assert.Equal(t, `x = Buffer.from("QUI=", "base64");`, out)

	out, err = inlineReads(`x = fs.readFileSync(require.resolve('pkg/data.json'), "utf-8");`, dir, filepath.Join(dir, "node_modules"))
	require.NoError(t, err)
	assert.Equal(t, `x = "{\"k\":1}";`, out)

	_, err = inlineReads(`fs.readFileSync(__dirname + '/a.txt', 'latin1')`, dir, dir)
	assert.ErrorContains(t, err, "unsupported encoding")

	out, err = inlineReads(`x = require('fs').readFileSync(__dirname + '/a.txt', 'utf8');`, dir, dir)
	require.NoError(t, err)
	assert.Equal(t, `x = "AB";`, out)

	out, err = inlineReads(`x = require("node:fs") . readFileSync(path.join(__dirname, 'a.txt'), 'utf8');`, dir, dir)
	require.NoError(t, err)
	assert.Equal(t, `x = "AB";`, out)

	out, err = inlineReads("const {readFileSync} = require('fs');\nx = readFileSync(__dirname + '/a.txt', 'utf8');", dir, dir)
	require.NoError(t, err)
	assert.Equal(t, "const {readFileSync} = require('fs');\nx = \"AB\";", out)

	out, err = inlineReads(`x = other.readFileSync(__dirname + '/a.txt', 'utf8'); y = myfs.readFileSync(__dirname + '/a.txt')`, dir, dir)
	require.NoError(t, err)
	assert.Equal(t, `x = other.readFileSync(__dirname + '/a.txt', 'utf8'); y = myfs.readFileSync(__dirname + '/a.txt')`, out)

	out, err = inlineReads(`fs.readFileSync(dynamicPath, 'utf8')`, dir, dir)
	require.NoError(t, err)
	assert.Equal(t, `fs.readFileSync(dynamicPath, 'utf8')`, out)
}

func TestStubBuiltin(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "node_modules/events/index.js", "")
	assert.True(t, stubBuiltin("fs", root, "node_modules"))
	assert.True(t, stubBuiltin("node:events", root, "node_modules"))
	assert.False(t, stubBuiltin("events", root, "node_modules"))
	assert.False(t, stubBuiltin("lodash", root, "node_modules"))
}
