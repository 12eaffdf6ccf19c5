package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"essaylens/internal/vcs"
)

// isIgnored is a test seam for git check-ignore.
var isIgnored = vcs.IsIgnored

// pendingIgnoreEntries returns the .gitignore lines still needed so that
// paths (relative to baseDir) stay out of the repository. Paths git already
// ignores, that .gitignore already lists, or that fall outside repoRoot are
// skipped.
func pendingIgnoreEntries(ctx context.Context, repoRoot, baseDir string, paths ...string) ([]string, error) {
	listed, err := gitignoreLines(repoRoot)
	if err != nil {
		return nil, err
	}
	var entries []string
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		entry, err := ignoreEntry(repoRoot, path)
		if err != nil {
			continue
		}
		if listed[entry] || contains(entries, entry) {
			continue
		}
		if ignored, err := isIgnored(ctx, repoRoot, path); err == nil && ignored {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// appendGitignore adds entries to repoRoot/.gitignore under an essaylens
// marker comment.
func appendGitignore(repoRoot string, entries []string) error {
	if len(entries) == 0 {
		return nil
	}
	path := filepath.Join(repoRoot, ".gitignore")
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read .gitignore: %w", err)
	}
	var b strings.Builder
	b.Write(existing)
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteString("\n")
	}
	b.WriteString("# essaylens\n")
	for _, entry := range entries {
		b.WriteString(entry + "\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write .gitignore: %w", err)
	}
	return nil
}

func gitignoreLines(repoRoot string) (map[string]bool, error) {
	data, err := os.ReadFile(filepath.Join(repoRoot, ".gitignore"))
	if os.IsNotExist(err) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read .gitignore: %w", err)
	}
	lines := map[string]bool{}
	for _, line := range strings.Split(string(data), "\n") {
		lines[strings.TrimSuffix(strings.TrimSpace(line), "/")] = true
	}
	return lines, nil
}

// ignoreEntry converts an absolute path to a slash separated entry relative
// to repoRoot.
func ignoreEntry(repoRoot, path string) (string, error) {
	rel, err := filepath.Rel(repoRoot, filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q is outside the repo root", path)
	}
	return filepath.ToSlash(rel), nil
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
