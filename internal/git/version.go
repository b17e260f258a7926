package git

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// minVersion is the oldest git release forkmate supports. fetch
// --prune and merge --ff-only behave consistently from here on.
const minVersion = "2.20.0"

// Version reports the installed git version, e.g. "2.39.0".
func (r *Runner) Version(ctx context.Context) (string, error) {
	out, err := r.runOK(ctx, "", "--version")
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(out.Stdout)
	v = strings.TrimPrefix(v, "git version ")
	return v, nil
}

// CheckVersion verifies a usable git binary is on PATH and is at least
// the minimum supported release.
func (r *Runner) CheckVersion(ctx context.Context) error {
	v, err := r.Version(ctx)
	if err != nil {
		return fmt.Errorf("git not available: %w", err)
	}
	canon := canonicalVersion(v)
	if canon == "" {
		// Unparseable vendor strings pass; the commands themselves
		// will surface real incompatibilities.
		return nil
	}
	if semver.Compare(canon, "v"+minVersion) < 0 {
		return fmt.Errorf("git %s is too old, need %s or newer", v, minVersion)
	}
	return nil
}

// canonicalVersion extracts a semver-comparable "vX.Y.Z" from version
// strings like "2.39.2 (Apple Git-143)" or "2.39.0.windows.1".
func canonicalVersion(v string) string {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return ""
	}
	parts := strings.Split(fields[0], ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	canon := "v" + strings.Join(parts, ".")
	if !semver.IsValid(canon) {
		return ""
	}
	return canon
}
