// Package discover finds git repos on the local filesystem and
// reconciles them with the repos a host reports.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScannedRepo is a repo found on the local filesystem.
type ScannedRepo struct {
	Path    string
	Remotes []ScannedRemote
}

// ScannedRemote is a git remote parsed from a local repo's config.
type ScannedRemote struct {
	Name string
	URL  string
}

// skipDirs are never descended into during scanning.
var skipDirs = map[string]bool{
	"node_modules": true,
	"target":       true,
	"vendor":       true,
	".git":         true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
}

// ScanDirectory walks root for git repos, descending at most maxDepth
// levels below it. Symlinks are not followed, and unreadable entries
// are skipped. A directory counts as a repo when it holds a .git
// directory with a config file.
func ScanDirectory(root string, maxDepth int) []ScannedRepo {
	var repos []ScannedRepo

	root = filepath.Clean(root)
	filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if skipDirs[entry.Name()] {
			return fs.SkipDir
		}
		if repo, ok := repoAt(path); ok {
			repos = append(repos, repo)
		}
		if depth(root, path) >= maxDepth {
			return fs.SkipDir
		}
		return nil
	})

	return repos
}

// depth returns how many levels path sits below root.
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// repoAt reports whether path is a git checkout: a .git directory with
// a readable config file. A missing or unreadable config disqualifies
// the directory entirely.
func repoAt(path string) (ScannedRepo, bool) {
	gitDir := filepath.Join(path, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return ScannedRepo{}, false
	}
	content, err := os.ReadFile(filepath.Join(gitDir, "config"))
	if err != nil {
		return ScannedRepo{}, false
	}
	return ScannedRepo{Path: path, Remotes: parseRemotes(string(content))}, true
}

// parseRemotes extracts remote names and URLs from git config text.
func parseRemotes(content string) []ScannedRemote {
	var remotes []ScannedRemote
	current := ""
	inRemote := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, `[remote "`) && strings.HasSuffix(trimmed, `"]`):
			current = strings.TrimSuffix(strings.TrimPrefix(trimmed, `[remote "`), `"]`)
			inRemote = true
		case strings.HasPrefix(trimmed, "["):
			inRemote = false
		case inRemote:
			if url, ok := strings.CutPrefix(trimmed, "url = "); ok {
				remotes = append(remotes, ScannedRemote{Name: current, URL: strings.TrimSpace(url)})
			}
		}
	}
	return remotes
}
