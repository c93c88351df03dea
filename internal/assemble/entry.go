package assemble

import (
	"encoding/json"
	"strings"
)

const (
	entrySourcefile = "auditpack-registry.js"
	defaultGlobal   = "__bundledModules"
)

func registryGlobal(plan Plan) string {
	if plan.RegistryGlobal == "" {
		return defaultGlobal
	}
	return plan.RegistryGlobal
}

// entryWrapper generates the synthetic entry module. It maps every logical
// path to a thunk around a static require, so the bundler includes each
// module while evaluation stays lazy. The map is published on the registry
// global before the real entry is required.
func entryWrapper(plan Plan) (string, error) {
	g, err := json.Marshal(registryGlobal(plan))
	if err != nil {
		return "", err
	}
	entry, err := json.Marshal(plan.Entry)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("var registry = new Map([\n")
	for _, r := range plan.Refs {
		logical, err := json.Marshal(r.Logical)
		if err != nil {
			return "", err
		}
		file, err := json.Marshal(r.Path)
		if err != nil {
			return "", err
		}
		b.WriteString("  [")
		b.Write(logical)
		b.WriteString(", () => require(")
		b.Write(file)
		b.WriteString(")],\n")
	}
	b.WriteString("]);\n")
	b.WriteString("globalThis[")
	b.Write(g)
	b.WriteString("] = registry;\n")
	b.WriteString("require(")
	b.Write(entry)
	b.WriteString(");\n")
	return b.String(), nil
}

// prelude is placed in front of the bundle, outside the bundler's wrapper.
// It rebinds the free name require to a function that serves registered
// logical paths first and defers to the host's require otherwise. Dynamic
// requires inside the bundle resolve that name in the enclosing scope, which
// under Node is the per-file require rather than globalThis.require, so the
// rebinding has to happen at file scope.
func prelude(plan Plan) (string, error) {
	g, err := json.Marshal(registryGlobal(plan))
	if err != nil {
		return "", err
	}
	return `require = (function (host) {
  var req = function (id) {
    var registry = globalThis[` + string(g) + `];
    var load = registry && registry.get(id);
    if (load) return load();
    if (host) return host(id);
    throw new Error("Cannot find module '" + id + "'");
  };
  if (host) {
    req.resolve = host.resolve;
    req.cache = host.cache;
  }
  return req;
})(typeof require === "function" ? require : undefined);
`, nil
}

func banner(plan Plan) (string, error) {
	p, err := prelude(plan)
	if err != nil {
		return "", err
	}
	if plan.Banner == "" {
		return p, nil
	}
	return plan.Banner + "\n" + p, nil
}
