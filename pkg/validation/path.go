package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveTriggerPath resolves userPath against baseDir and confirms the
// result cannot escape baseDir, the way cmd/etactl confines every
// trigger-file, event-log, and --schema path it's handed on the command
// line to the directory it was invoked from.
//
// userPath must be a relative, local path: no leading "/", no ".."
// component that would walk above baseDir. Beyond that lexical check,
// ResolveTriggerPath also resolves symlinks along the joined path and
// rejects the result if it lands outside baseDir after resolution — a
// symlink planted inside baseDir that points elsewhere doesn't get a free
// pass just because the lexical form looked contained.
//
// The target named by userPath need not exist yet: `etactl init` writes a
// brand new trigger file, so ResolveTriggerPath walks up to the nearest
// existing ancestor directory to resolve symlinks there instead.
func ResolveTriggerPath(baseDir, userPath string) (string, error) {
	if userPath == "" {
		return "", fmt.Errorf("validation: path cannot be empty")
	}
	if !filepath.IsLocal(userPath) {
		return "", fmt.Errorf("validation: %q escapes %s", userPath, baseDir)
	}

	resolvedBase, err := filepath.EvalSymlinks(baseDir)
	if err != nil {
		return "", fmt.Errorf("validation: cannot resolve base directory %s: %w", baseDir, err)
	}

	candidate := filepath.Join(baseDir, filepath.Clean(userPath))
	resolved, err := resolveNearestAncestor(candidate)
	if err != nil {
		return "", fmt.Errorf("validation: %q: %w", userPath, err)
	}

	rel, err := filepath.Rel(resolvedBase, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("validation: %q resolves outside %s", userPath, baseDir)
	}

	return resolved, nil
}

// resolveNearestAncestor resolves symlinks in path. If path doesn't exist,
// it recurses on path's parent and rejoins path's base name onto the
// resolved parent, so a not-yet-created file still resolves through any
// symlinked ancestor directory.
func resolveNearestAncestor(path string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(path)
	if parent == path {
		return "", fmt.Errorf("no existing ancestor directory")
	}
	resolvedParent, err := resolveNearestAncestor(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(path)), nil
}
