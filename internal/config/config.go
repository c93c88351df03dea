package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for auditpack. Paths
// are relative to the project root.
type FileConfig struct {
	AuditsDir       *string `yaml:"audits_dir"`
	AuditsPrefix    *string `yaml:"audits_prefix"`
	GatherersDir    *string `yaml:"gatherers_dir"`
	GatherersPrefix *string `yaml:"gatherers_prefix"`
	LocalesDir      *string `yaml:"locales_dir"`
	Package         *string `yaml:"package"`
	ReportAssets    *string `yaml:"report_assets"`
	Connection      *string `yaml:"connection"`
	URLShim         *string `yaml:"url_shim"`
	NodeModules     *string `yaml:"node_modules"`
	RegistryGlobal  *string `yaml:"registry_global"`

	// Plugins replaces the optional plugin set included for embedded builds.
	Plugins []string `yaml:"plugins"`

	// Extra always-excluded rules, added to the built-in lists.
	Exclude      []string `yaml:"exclude"`
	ExcludePaths []string `yaml:"exclude_paths"`
}

var localNames = []string{".auditpack.yml", ".auditpack.yaml", "auditpack.yml", "auditpack.yaml"}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a project-local config file in the given root.
// It supports .auditpack.yml/.yaml and auditpack.yml/.yaml.
func LoadLocal(root string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range localNames {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "auditpack", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// Load reads the local config for root and the global config. A config that
// is absent is not an error; one that exists but does not parse is.
func Load(root string) (local, global FileConfig, err error) {
	for _, name := range localNames {
		p := filepath.Join(root, name)
		if _, statErr := os.Stat(p); statErr == nil {
			if local, err = LoadFile(p); err != nil {
				return local, global, err
			}
			break
		}
	}
	if g, gerr := LoadGlobal(); gerr == nil {
		global = g
	}
	return local, global, nil
}
