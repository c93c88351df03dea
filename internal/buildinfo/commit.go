// Package buildinfo gathers the metadata stamped into every bundle banner:
// the commit the project is built from and the package descriptor's name and
// version.
package buildinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"

	"github.com/auditpack/auditpack/internal/builderr"
)

// validateRoot validates and normalizes a repository root path.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

// CommitID returns the hash HEAD points at in the repository containing
// root. There is no fallback: a tree outside git, or one without commits,
// is an environment error.
func CommitID(root string) (string, error) {
	validRoot, err := validateRoot(root)
	if err != nil {
		return "", builderr.Environment("resolve commit", err)
	}
	repo, err := git.PlainOpenWithOptions(validRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", builderr.Environment("open repository "+validRoot, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", builderr.Environment("resolve HEAD", err)
	}
	return head.Hash().String(), nil
}
