package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/auditpack/auditpack/internal/assemble"
	"github.com/auditpack/auditpack/internal/buildinfo"
	"github.com/auditpack/auditpack/internal/builderr"
	"github.com/auditpack/auditpack/internal/config"
	"github.com/auditpack/auditpack/internal/logging"
	"github.com/auditpack/auditpack/internal/minify"
	"github.com/auditpack/auditpack/internal/registry"
	"github.com/auditpack/auditpack/internal/target"
)

// Config controls one build. Entry and Dest are resolved against the
// working directory when relative.
type Config struct {
	Entry string
	Dest  string

	// Root is the project root; defaults to the working directory.
	Root string
	// Target names the target kind. Empty means infer it from the entry.
	Target string
	// Commit identifies the source revision in the banner. Empty means
	// look it up in the git repository containing Root.
	Commit string
	// Layout overrides the project layout. Nil means load it from the
	// config files.
	Layout *config.Layout
	// Policy overrides the minification policy.
	Policy *minify.Policy
	Logger logging.Logger
}

// Result describes a finished build.
type Result struct {
	Dest     string
	Map      string
	Kind     target.Kind
	Modules  int
	Inputs   int
	CodeHash string
	MapHash  string
	Warnings int
	Duration time.Duration
}

// Prepared is everything a build resolves before touching the bundler.
type Prepared struct {
	Root       string
	Entry      string
	Layout     config.Layout
	Descriptor target.Descriptor
	Refs       []registry.Ref
}

// Prepare resolves the target, layout and module registry for cfg.Entry.
// It reads the file system but writes nothing.
func Prepare(cfg Config) (Prepared, error) {
	var p Prepared
	root := cfg.Root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return p, builderr.Configuration("resolve project root", err)
	}
	entry, err := filepath.Abs(cfg.Entry)
	if err != nil {
		return p, builderr.Configuration("resolve entry", err)
	}
	p.Root, p.Entry = root, entry

	if cfg.Layout != nil {
		p.Layout = *cfg.Layout
	} else {
		local, global, err := config.Load(root)
		if err != nil {
			return p, builderr.Configuration("load config", err)
		}
		p.Layout = config.Resolve(local, global)
	}

	kind := target.Classify(entry)
	if cfg.Target != "" {
		if kind, err = target.ParseKind(cfg.Target); err != nil {
			return p, builderr.Configuration("parse target", err)
		}
	}
	p.Descriptor = target.Describe(kind, p.Layout)

	refs, err := registry.Resolve([]registry.Root{
		{Dir: join(root, p.Layout.AuditsDir), Prefix: p.Layout.AuditsPrefix, Group: registry.GroupAudit},
		{Dir: join(root, p.Layout.GatherersDir), Prefix: p.Layout.GatherersPrefix, Group: registry.GroupGatherer},
	})
	if err != nil {
		return p, err
	}
	for _, name := range p.Descriptor.Plugins {
		extra, err := registry.PluginRefs(join(root, p.Layout.NodeModules), name)
		if err != nil {
			return p, err
		}
		refs = append(refs, extra...)
	}
	refs = target.Filter(refs, p.Descriptor.Exclude, root, p.Layout.NodeModules)
	if err := registry.Check(refs); err != nil {
		return p, err
	}
	p.Refs = refs
	return p, nil
}

// Build assembles cfg.Entry into cfg.Dest and minifies the result. Stages
// run in order and the first failure stops the build. A cancelled context
// stops the next stage from starting; a running stage is not interrupted.
func Build(ctx context.Context, cfg Config) (Result, error) {
	var result Result
	started := time.Now()
	log := cfg.Logger
	if log == nil {
		log = logging.GetLogger()
	}

	p, err := Prepare(cfg)
	if err != nil {
		return result, err
	}
	dest, err := filepath.Abs(cfg.Dest)
	if err != nil {
		return result, builderr.Configuration("resolve destination", err)
	}
	result.Kind = p.Descriptor.Kind
	result.Modules = len(p.Refs)
	log = log.With("entry", p.Entry, "dest", dest, "target", p.Descriptor.Kind.String())

	pkg, err := buildinfo.LoadPackage(join(p.Root, p.Layout.Package))
	if err != nil {
		return result, err
	}
	commit := cfg.Commit
	if commit == "" {
		if commit, err = buildinfo.CommitID(p.Root); err != nil {
			return result, err
		}
	}

	plan := assemble.Plan{
		Entry:          p.Entry,
		Dest:           dest,
		Root:           p.Root,
		Banner:         buildinfo.Banner(pkg, commit),
		Exclude:        p.Descriptor.Exclude,
		NodeModules:    p.Layout.NodeModules,
		Refs:           p.Refs,
		Aliases:        map[string]string{"url": join(p.Root, p.Layout.URLShim)},
		Platform:       p.Descriptor.Platform,
		RegistryGlobal: p.Layout.RegistryGlobal,
		Descriptors:    []string{filepath.Base(p.Layout.Package)},
	}

	log.Info("assembling bundle", "modules", len(p.Refs), "platform", string(p.Descriptor.Platform))
	out, err := assemble.Assemble(ctx, plan)
	for _, w := range out.Warnings {
		log.Warn("bundler warning", "text", w.Text)
	}
	if err != nil {
		log.Error("assembly failed", "error", err)
		return result, err
	}
	result.Dest, result.Map = out.Code, out.Map
	result.Inputs = out.Inputs
	result.Warnings = len(out.Warnings)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	policy := minify.DefaultPolicy
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}
	log.Debug("minifying bundle", "max_line_len", policy.MaxLineLen, "reserved", policy.Reserved)
	if err := minify.File(out.Code, policy); err != nil {
		log.Error("minification failed", "error", err)
		return result, err
	}

	if result.CodeHash, err = hashFile(out.Code); err != nil {
		return result, err
	}
	if result.MapHash, err = hashFile(out.Map); err != nil {
		return result, err
	}
	result.Duration = time.Since(started)
	log.Info("bundle written", "inputs", result.Inputs, "code_hash", result.CodeHash, "map_hash", result.MapHash, "duration", result.Duration)
	return result, nil
}

func join(root, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

func hashFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", builderr.Minification("read "+filepath.Base(path), err)
	}
	return fastHash(b), nil
}

func fastHash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
