package discover

import (
	"strings"

	"github.com/forkmate/forkmate/internal/host"
)

// Match classifies one repo during reconciliation. The set is closed:
// Matched, LocalOnly, or RemoteOnly.
type Match interface {
	match()
}

// Matched pairs a local checkout with the remote repo it tracks.
type Matched struct {
	Local  ScannedRepo
	Remote host.RemoteRepo
}

// LocalOnly is a local checkout with no counterpart on the host.
type LocalOnly struct {
	Local ScannedRepo
}

// RemoteOnly is a host repo with no local checkout.
type RemoteOnly struct {
	Remote host.RemoteRepo
}

func (Matched) match()    {}
func (LocalOnly) match()  {}
func (RemoteOnly) match() {}

// Result is the outcome of reconciling local and remote repos for one
// host.
type Result struct {
	HostLabel string
	Matches   []Match
}

// MatchedCount counts repos found both locally and remotely.
func (r *Result) MatchedCount() int {
	n := 0
	for _, m := range r.Matches {
		if _, ok := m.(Matched); ok {
			n++
		}
	}
	return n
}

// LocalOnlyCount counts repos found only locally.
func (r *Result) LocalOnlyCount() int {
	n := 0
	for _, m := range r.Matches {
		if _, ok := m.(LocalOnly); ok {
			n++
		}
	}
	return n
}

// RemoteOnlyCount counts repos found only on the host.
func (r *Result) RemoteOnlyCount() int {
	n := 0
	for _, m := range r.Matches {
		if _, ok := m.(RemoteOnly); ok {
			n++
		}
	}
	return n
}

// Reconcile pairs scanned local repos with remote repos by comparing
// normalized URLs. Each local repo takes the first remote it matches.
// A remote claimed by one local repo can still match another, but only
// unclaimed remotes are reported as RemoteOnly.
func Reconcile(local []ScannedRepo, remote []host.RemoteRepo, hostLabel string) *Result {
	matches := make([]Match, 0, len(local)+len(remote))
	claimed := make(map[int]bool)

	for _, l := range local {
		found := false
		for i, r := range remote {
			if urlsMatch(l, r) {
				matches = append(matches, Matched{Local: l, Remote: r})
				claimed[i] = true
				found = true
				break
			}
		}
		if !found {
			matches = append(matches, LocalOnly{Local: l})
		}
	}

	for i, r := range remote {
		if !claimed[i] {
			matches = append(matches, RemoteOnly{Remote: r})
		}
	}

	return &Result{HostLabel: hostLabel, Matches: matches}
}

// urlsMatch reports whether any of the local repo's remotes point at
// the remote repo's clone or SSH URL.
func urlsMatch(local ScannedRepo, remote host.RemoteRepo) bool {
	for _, sr := range local.Remotes {
		n := normalizeURL(sr.URL)
		if n == normalizeURL(remote.CloneURL) || n == normalizeURL(remote.SSHURL) {
			return true
		}
	}
	return false
}

// normalizeURL reduces a git remote URL to a comparable host/path
// form: lowercased, scheme and user stripped, scp-style colons
// converted to slashes, trailing ".git" and slashes dropped.
func normalizeURL(url string) string {
	s := strings.ToLower(url)

	for _, prefix := range []string{"https://", "http://", "ssh://", "git://"} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			s = rest
			break
		}
	}

	// Strip user@, but only when the @ sits in the authority part.
	if at := strings.Index(s, "@"); at >= 0 {
		slash := strings.Index(s, "/")
		if slash < 0 {
			slash = len(s)
		}
		if at < slash {
			s = s[at+1:]
		}
	}

	// scp-style host:path becomes host/path.
	if colon := strings.Index(s, ":"); colon >= 0 {
		if !strings.Contains(s[:colon], "/") {
			s = s[:colon] + "/" + s[colon+1:]
		}
	}

	s = strings.TrimSuffix(s, ".git")
	s = strings.TrimRight(s, "/")

	return s
}
